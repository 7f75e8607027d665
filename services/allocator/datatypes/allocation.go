// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides type definitions for the allocator service.
//
// This file contains the request/response types for the allocation
// endpoint. The JSON field names match the payload contract of the
// upstream case-management system, so the Python-era casing
// (RecipientId, xgb_reference, rl_allocation) is load-bearing.
package datatypes

import (
	"github.com/jinterlante1206/FairshareLocal/services/allocator/engine"
)

// AllocationParams carries the per-request budget constraints.
//
// All four fields are required. They are pointers so that an explicit zero
// (a zero budget is a valid, well-defined request) survives the
// required-field check.
type AllocationParams struct {
	Budget          *float64 `json:"budget" binding:"required"`
	MinAllocation   *float64 `json:"min_allocation" binding:"required"`
	MaxAllocation   *float64 `json:"max_allocation" binding:"required"`
	MinPeopleToHelp *int     `json:"min_people_to_help" binding:"required"`
}

// ToConstraintSet converts validated params into the engine's immutable
// constraint set. Callers must only invoke this after binding succeeded.
func (p AllocationParams) ToConstraintSet() engine.ConstraintSet {
	return engine.ConstraintSet{
		TotalBudget:     *p.Budget,
		MinAllocation:   *p.MinAllocation,
		MaxAllocation:   *p.MaxAllocation,
		MinPeopleTarget: *p.MinPeopleToHelp,
	}
}

// AllocationRequest is the body of POST /v1/allocations.
type AllocationRequest struct {
	Params AllocationParams `json:"params" binding:"required"`
	Data   []CaseRecord     `json:"data" binding:"required,min=1,dive"`
}

// AllocationRow is one recipient's line in the allocation response.
// Monetary values are rounded to 2 decimal places for presentation.
type AllocationRow struct {
	RecipientID  string  `json:"RecipientId"`
	XGBReference float64 `json:"xgb_reference"`
	RLAllocation float64 `json:"rl_allocation"`
	MetMin       bool    `json:"met_min"`
}

// AllocationResults pairs the per-recipient rows with the run summary.
type AllocationResults struct {
	Allocations []AllocationRow `json:"allocations"`
	Summary     engine.Summary  `json:"summary"`
}

// AllocationResponse is the body returned by POST /v1/allocations.
type AllocationResponse struct {
	Operation string            `json:"operation"`
	RunID     string            `json:"run_id"`
	Count     int               `json:"count"`
	Results   AllocationResults `json:"results"`
}
