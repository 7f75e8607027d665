// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jinterlante1206/FairshareLocal/services/allocator/engine"
	"github.com/jinterlante1206/FairshareLocal/services/allocator/feedback"
)

// ============================================================================
// Test Setup
// ============================================================================

func init() {
	// Set Gin to test mode to reduce noise in test output
	gin.SetMode(gin.TestMode)
}

type mockScorer struct{}

func (mockScorer) Score(_ context.Context, _ []float64) (float64, error) {
	return 0.5, nil
}

type mockSuggester struct{}

func (mockSuggester) Suggest(_ context.Context, _ []float64, minAlloc, _ float64) (float64, error) {
	return minAlloc, nil
}

type mockTrainer struct{}

func (mockTrainer) Train(_ context.Context) (string, error) {
	return "mock training complete", nil
}

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New()
	if err != nil {
		t.Fatalf("engine.New() failed: %v", err)
	}
	return eng
}

func newTestStore(t *testing.T) *feedback.Store {
	t.Helper()
	store, err := feedback.Open(feedback.InMemoryConfig())
	if err != nil {
		t.Fatalf("feedback.Open() failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// ============================================================================
// SetupRoutes Tests
// ============================================================================

func TestSetupRoutes_CoreRoutes(t *testing.T) {
	router := gin.New()
	SetupRoutes(router, newTestEngine(t), mockScorer{}, mockSuggester{}, mockTrainer{}, newTestStore(t))

	coreRoutes := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/metrics"},
		{"POST", "/v1/allocations"},
		{"POST", "/v1/feedback"},
		{"POST", "/v1/models/train"},
	}

	routes := router.Routes()
	for _, expected := range coreRoutes {
		found := false
		for _, r := range routes {
			if r.Method == expected.method && r.Path == expected.path {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected route %s %s not found", expected.method, expected.path)
		}
	}
}

func TestSetupRoutes_JournalRoutesNotRegisteredWithoutStore(t *testing.T) {
	router := gin.New()
	SetupRoutes(router, newTestEngine(t), mockScorer{}, mockSuggester{}, mockTrainer{}, nil)

	journalRoutes := []struct {
		method string
		path   string
	}{
		{"POST", "/v1/feedback"},
		{"POST", "/v1/models/train"},
	}

	routes := router.Routes()
	for _, notExpected := range journalRoutes {
		for _, r := range routes {
			if r.Method == notExpected.method && r.Path == notExpected.path {
				t.Errorf("Route %s %s should NOT be registered without a feedback store", notExpected.method, notExpected.path)
			}
		}
	}

	// Allocation path must survive a disabled journal
	found := false
	for _, r := range routes {
		if r.Method == "POST" && r.Path == "/v1/allocations" {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected route POST /v1/allocations to be registered without a feedback store")
	}
}

func TestSetupRoutes_HealthEndpoint(t *testing.T) {
	router := gin.New()
	SetupRoutes(router, newTestEngine(t), mockScorer{}, mockSuggester{}, mockTrainer{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Health endpoint returned %d, want %d", w.Code, http.StatusOK)
	}
}

func TestSetupRoutes_MetricsEndpoint(t *testing.T) {
	router := gin.New()
	SetupRoutes(router, newTestEngine(t), mockScorer{}, mockSuggester{}, mockTrainer{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	router.ServeHTTP(w, req)

	// Prometheus metrics endpoint should return 200
	if w.Code != http.StatusOK {
		t.Errorf("Metrics endpoint returned %d, want %d", w.Code, http.StatusOK)
	}

	contentType := w.Header().Get("Content-Type")
	if contentType == "" {
		t.Error("Metrics endpoint should return Content-Type header")
	}
}

func TestSetupRoutes_V1GroupExists(t *testing.T) {
	router := gin.New()
	SetupRoutes(router, newTestEngine(t), mockScorer{}, mockSuggester{}, mockTrainer{}, newTestStore(t))

	routes := router.Routes()
	v1Routes := 0
	for _, r := range routes {
		if len(r.Path) > 3 && r.Path[:3] == "/v1" {
			v1Routes++
		}
	}

	if v1Routes == 0 {
		t.Error("Expected at least one /v1 route")
	}
}
