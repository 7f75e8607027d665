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

import "fmt"

// Engine runs the allocation pipeline. It holds only the loop tunables, so
// a single Engine is safe to share across concurrent requests: every Run
// builds its own state and touches nothing shared.
type Engine struct {
	tunables Tunables
}

// New creates an Engine with the embedded default tunables.
func New() (*Engine, error) {
	tun, err := LoadTunables()
	if err != nil {
		return nil, fmt.Errorf("failed to load engine tunables: %w", err)
	}
	return &Engine{tunables: tun}, nil
}

// NewWithTunables creates an Engine with explicit tunables. Intended for
// tests that pin convergence behavior.
func NewWithTunables(tun Tunables) (*Engine, error) {
	if err := tun.Validate(); err != nil {
		return nil, err
	}
	return &Engine{tunables: tun}, nil
}

// Run executes one allocation: validate constraints, rank, initial pass,
// surplus redistribution, summary.
//
// The recipient slice is treated as read-only; each recipient's
// SuggestedAllocation and PriorityScore must already be set by the caller
// (the engine does not invoke models). An invalid constraint set or an
// empty recipient list returns an error before any allocation work.
// Degenerate-but-valid inputs (zero budget, all-zero scores) produce a
// well-formed zero-valued result instead of failing.
func (e *Engine) Run(recipients []Recipient, cs ConstraintSet) (*Result, error) {
	if err := cs.Validate(); err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("recipient list must be non-empty")
	}

	ranked := Rank(recipients)
	st := InitialPass(ranked, cs)
	st, rounds := Redistribute(st, cs, e.tunables)

	return &Result{
		Recipients: st.Recipients,
		Summary:    Summarize(st, cs),
		Rounds:     rounds,
	}, nil
}
