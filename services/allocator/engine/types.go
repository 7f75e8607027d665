// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine implements the deterministic budget allocation engine.
//
// The engine turns a per-recipient priority score, a per-recipient suggested
// allocation (both produced by external models), and a set of budget
// constraints into a final, budget-feasible allocation. It is purely
// computational: no I/O, no retries, no shared state between runs. Each
// call to Engine.Run builds its own state, so one Engine can serve
// concurrent requests.
//
// The pipeline has four stages:
//
//	Rank → InitialPass → Redistribute → Summarize
//
// Rank orders recipients by priority score (stable, descending).
// InitialPass walks the ranking once, granting each recipient their clamped
// suggestion while budget at least covers the floor. Redistribute hands any
// leftover budget to recipients with headroom, proportional to score, for a
// bounded number of rounds. Summarize produces the externally visible
// report. Each stage is a pure function over an explicit state value, so
// runs are deterministic and trivially testable with stub model outputs.
package engine

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ConstraintSet holds the immutable per-request allocation parameters.
//
// The four values are fixed inputs to a single run; the engine never
// mutates them. MinPeopleTarget is informational only: it feeds the
// MinTargetMet boolean in the summary and is never enforced during
// allocation.
type ConstraintSet struct {
	// TotalBudget is the full amount available for this run.
	TotalBudget float64 `json:"total_budget" validate:"gte=0"`

	// MinAllocation is the floor: the smallest grant that counts as
	// helping a recipient.
	MinAllocation float64 `json:"min_allocation" validate:"gte=0"`

	// MaxAllocation is the per-recipient cap.
	MaxAllocation float64 `json:"max_allocation" validate:"gtefield=MinAllocation"`

	// MinPeopleTarget is the desired minimum count of recipients at or
	// above the floor.
	MinPeopleTarget int `json:"min_people_target" validate:"gte=0"`
}

var constraintValidator = validator.New()

// Validate checks the constraint set before any pipeline work happens.
// It returns an error naming the first violated field, or nil.
func (c ConstraintSet) Validate() error {
	if err := constraintValidator.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			v := verrs[0]
			return fmt.Errorf("invalid constraint set: field %s failed rule %q (value %v)",
				v.Field(), v.Tag(), v.Value())
		}
		return fmt.Errorf("invalid constraint set: %w", err)
	}
	return nil
}

// Recipient is one aid case being considered in a run.
//
// PriorityScore and SuggestedAllocation are opaque external model outputs;
// the engine never interprets them beyond ordering and clamping.
// FinalAllocation starts at zero and only ever grows: once in the initial
// pass, then by at most one top-up per redistribution round.
type Recipient struct {
	// ID is an opaque stable identifier, unique within a request.
	ID string `json:"id"`

	// PriorityScore orders recipients; higher means more urgent.
	PriorityScore float64 `json:"priority_score"`

	// SuggestedAllocation is the external policy's recommended grant,
	// pre-constraint. Any range is accepted.
	SuggestedAllocation float64 `json:"suggested_allocation"`

	// FinalAllocation is the engine's output for this recipient.
	// Always in [0, MaxAllocation].
	FinalAllocation float64 `json:"final_allocation"`
}

// RunState is the working state threaded through the allocation passes:
// the ranked recipients and the budget still unspent. Passes take a state
// and return a new one rather than mutating through shared references.
type RunState struct {
	Recipients []Recipient
	Remaining  float64
}

// Summary is the run-level report derived from the final recipient set.
// TotalAllocated never exceeds the budget; that holds by construction
// (Remaining only decreases from TotalBudget), not by a post-hoc check.
type Summary struct {
	TotalBudget    float64 `json:"total_budget"`
	TotalAllocated float64 `json:"total_allocated"`
	PeopleHelped   int     `json:"people_helped"`
	MinTargetMet   bool    `json:"min_target_met"`
}

// Result is the full output of one allocation run. Recipients appear in
// ranked (priority-descending) order with their final allocations set.
type Result struct {
	Recipients []Recipient
	Summary    Summary

	// Rounds is how many redistribution rounds actually ran.
	Rounds int
}
