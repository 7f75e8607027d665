// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// embeddedTunables holds the raw bytes of tunables.yaml.
//
// The defaults are baked into the binary so that the convergence behavior
// of the redistribution loop cannot drift between deployments without a
// rebuild. Parse them with LoadTunables.
//
//go:embed tunables.yaml
var embeddedTunables []byte

// Tunables are the convergence parameters of the redistribution loop.
type Tunables struct {
	// MinIncrement is the minimum meaningful transfer, in currency units.
	MinIncrement float64 `yaml:"min_increment"`

	// MaxRounds caps the redistribution loop.
	MaxRounds int `yaml:"max_rounds"`
}

// Validate rejects tunables that would make the loop non-terminating or
// degenerate.
func (t Tunables) Validate() error {
	if t.MinIncrement <= 0 {
		return fmt.Errorf("min_increment must be > 0, got %v", t.MinIncrement)
	}
	if t.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be >= 1, got %d", t.MaxRounds)
	}
	return nil
}

// LoadTunables parses and validates the embedded tunables file.
func LoadTunables() (Tunables, error) {
	var t Tunables
	if err := yaml.Unmarshal(embeddedTunables, &t); err != nil {
		return Tunables{}, fmt.Errorf("failed to unmarshal the embedded tunables file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tunables{}, err
	}
	return t, nil
}
