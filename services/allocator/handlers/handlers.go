// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers contains the HTTP handlers for the allocator service.
//
// Handlers are constructed as closures over their dependencies (the
// engine, model clients, feedback journal) so tests can wire in stubs
// without any global state.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/jinterlante1206/FairshareLocal/services/allocator/observability"
)

// tracer is the handler-level tracer; spans nest under the otelgin
// request span when the middleware is installed.
var tracer trace.Tracer = otel.Tracer("fairshare/allocator/handlers")

// recordRequest and recordError tolerate uninitialized metrics so handler
// tests don't need the Prometheus registry.
func recordRequest(op observability.Operation, success bool) {
	if m := observability.DefaultMetrics; m != nil {
		m.RecordRequest(op, success)
	}
}

func recordError(op observability.Operation, code observability.ErrorCode) {
	if m := observability.DefaultMetrics; m != nil {
		m.RecordError(op, code)
	}
}

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "allocator",
	})
}
