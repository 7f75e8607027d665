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
	"net/http"
	"os"
	"strings"
	"time"
)

// ScorerServiceClient calls the XGBoost scorer sidecar over HTTP.
type ScorerServiceClient struct {
	httpClient *http.Client
	baseURL    string
}

type scorerPayload struct {
	Features []float64 `json:"features"`
}

type scorerResp struct {
	Score float64 `json:"score"`
}

// NewScorerServiceClient builds a client from SCORER_SERVICE_URL, falling
// back to the default sidecar address used in the compose file.
func NewScorerServiceClient() (*ScorerServiceClient, error) {
	baseURL := os.Getenv("SCORER_SERVICE_URL")
	if baseURL == "" {
		baseURL = "http://scorer-service:8000"
	}
	baseURL = strings.TrimSuffix(strings.Trim(baseURL, "\"' "), "/")
	return &ScorerServiceClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}, nil
}

// Score implements the Scorer interface.
//
// The sidecar returns the raw booster output; it is divided by 10 here to
// land in the reference score range the policy was trained against. The
// suggestion slot (the vector's last element) is stripped before sending:
// the scorer consumes the 19 case features only.
func (s *ScorerServiceClient) Score(ctx context.Context, features []float64) (float64, error) {
	caseFeatures := features
	if len(caseFeatures) > 0 {
		caseFeatures = caseFeatures[:len(caseFeatures)-1]
	}

	reqBody, err := json.Marshal(scorerPayload{Features: caseFeatures})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal the scorer payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/score", bytes.NewBuffer(reqBody))
	if err != nil {
		return 0, fmt.Errorf("failed to build the scorer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to make a request to the scorer: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read the scorer's response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("scorer returned status %d: %s", resp.StatusCode, string(body))
	}

	var out scorerResp
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("failed to parse the scorer response: %w", err)
	}
	return out.Score / 10, nil
}

// NullScorer scores every recipient at zero. It is the configured fallback
// when no scorer sidecar is reachable: ranking degenerates to input order
// and the redistribution loop terminates immediately on non-positive need.
type NullScorer struct{}

// Score implements the Scorer interface.
func (NullScorer) Score(_ context.Context, _ []float64) (float64, error) {
	return 0, nil
}
