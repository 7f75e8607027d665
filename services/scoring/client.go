// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scoring provides clients for the external scoring and policy
// model sidecars.
//
// The allocation engine never calls a model itself; it consumes a priority
// score and a suggested allocation per recipient. These two capabilities
// are expressed as interfaces so the request path can be wired with HTTP
// sidecar clients in production and deterministic stubs in tests, without
// loading any model.
package scoring

import "context"

// Scorer produces a recipient's priority score from their feature vector.
// Higher means more vulnerable/urgent. The score is opaque to the engine.
type Scorer interface {
	Score(ctx context.Context, features []float64) (float64, error)
}

// Suggester produces a recipient's suggested allocation from the policy
// observation (feature vector plus the constraint scalars). The suggestion
// is returned in currency units, already rescaled from the policy's
// normalized action range into [minAlloc, maxAlloc].
type Suggester interface {
	Suggest(ctx context.Context, observation []float64, minAlloc, maxAlloc float64) (float64, error)
}

// Trainer triggers a training run on the policy sidecar.
type Trainer interface {
	Train(ctx context.Context) (string, error)
}

// RescaleAction maps a normalized policy action in [-1, 1] onto the
// [minAlloc, maxAlloc] allocation range, the inverse of the normalization
// applied during training.
func RescaleAction(action, minAlloc, maxAlloc float64) float64 {
	return minAlloc + (action+1)*0.5*(maxAlloc-minAlloc)
}
