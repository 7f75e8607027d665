// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// PolicyServiceClient calls the PPO policy sidecar over HTTP. It serves
// both the per-recipient suggestion path and the train trigger.
type PolicyServiceClient struct {
	httpClient *http.Client
	baseURL    string
}

type policyPayload struct {
	Observation   []float64 `json:"observation"`
	Deterministic bool      `json:"deterministic"`
}

type policyResp struct {
	Action float64 `json:"action"`
}

type trainResp struct {
	Message string `json:"message"`
}

// NewPolicyServiceClient builds a client from POLICY_SERVICE_URL, falling
// back to the default sidecar address used in the compose file.
func NewPolicyServiceClient() (*PolicyServiceClient, error) {
	baseURL := os.Getenv("POLICY_SERVICE_URL")
	if baseURL == "" {
		baseURL = "http://policy-service:8000"
	}
	baseURL = strings.TrimSuffix(strings.Trim(baseURL, "\"' "), "/")
	return &PolicyServiceClient{
		// Training runs block until the sidecar finishes, so the train
		// trigger shares a generous timeout.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    baseURL,
	}, nil
}

// Suggest implements the Suggester interface. The sidecar predicts a
// deterministic action in [-1, 1]; the rescale into [minAlloc, maxAlloc]
// happens here so callers always see currency units.
func (p *PolicyServiceClient) Suggest(ctx context.Context, observation []float64, minAlloc, maxAlloc float64) (float64, error) {
	reqBody, err := json.Marshal(policyPayload{Observation: observation, Deterministic: true})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal the policy payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/predict", bytes.NewBuffer(reqBody))
	if err != nil {
		return 0, fmt.Errorf("failed to build the policy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to make a request to the policy: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read the policy's response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("policy returned status %d: %s", resp.StatusCode, string(body))
	}

	var out policyResp
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("failed to parse the policy response: %w", err)
	}
	return RescaleAction(out.Action, minAlloc, maxAlloc), nil
}

// Train implements the Trainer interface by forwarding to the sidecar's
// train endpoint and returning its status message.
func (p *PolicyServiceClient) Train(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/train", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build the train request: %w", err)
	}

	slog.Info("Triggering policy training", "url", p.baseURL+"/train")
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make a train request to the policy: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read the train response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("policy train returned status %d: %s", resp.StatusCode, string(body))
	}

	var out trainResp
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse the train response: %w", err)
	}
	if out.Message == "" {
		out.Message = "Model training completed successfully"
	}
	return out.Message, nil
}

// FloorSuggester suggests the floor amount for every recipient. It is the
// configured fallback when the policy sidecar is unavailable: a floor
// suggestion keeps every recipient fundable without ever inflating the
// initial pass beyond the minimum.
type FloorSuggester struct{}

// Suggest implements the Suggester interface.
func (FloorSuggester) Suggest(_ context.Context, _ []float64, minAlloc, _ float64) (float64, error) {
	return minAlloc, nil
}
