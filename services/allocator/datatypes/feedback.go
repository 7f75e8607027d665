// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// This file contains the types for the human-feedback endpoint: case
// workers submit the final values they settled on after reviewing the
// engine's allocations, and those edits become the policy model's next
// training batch.
package datatypes

import "fmt"

// FeedbackRequest is the body of POST /v1/feedback. The group-level
// constraint fields travel with every edit into the journal so that a
// training run can reconstruct the full observation for each lesson.
// The numeric fields are pointers so explicit zeros (group 0 is a real
// group) survive the required check.
type FeedbackRequest struct {
	RunID         string         `json:"run_id" binding:"required"`
	GroupID       *int           `json:"group_id" binding:"required"`
	MaxBudget     *float64       `json:"max_budget" binding:"required"`
	MinAllocation *float64       `json:"min_allocation" binding:"required"`
	MaxAllocation *float64       `json:"max_allocation" binding:"required"`
	MinCases      *int           `json:"min_cases" binding:"required"`
	Edits         []FeedbackEdit `json:"edits" binding:"required,min=1"`
}

// FeedbackEdit is one human correction. AISuggested is what the engine
// returned; HumanFinal is what the case worker settled on.
//
// The fields are validated per-edit rather than by binding tags: one
// malformed edit must not reject the whole batch (partial success is part
// of the endpoint contract).
type FeedbackEdit struct {
	RecipientID string            `json:"RecipientId"`
	HumanFinal  *float64          `json:"Human_Final_Value"`
	AISuggested *float64          `json:"AI_Suggested_Value"`
	Features    *FeedbackFeatures `json:"features"`
}

// Validate checks the per-edit required fields.
func (e FeedbackEdit) Validate() error {
	if e.RecipientID == "" {
		return fmt.Errorf("missing RecipientId")
	}
	if e.HumanFinal == nil {
		return fmt.Errorf("missing Human_Final_Value")
	}
	if e.AISuggested == nil {
		return fmt.Errorf("missing AI_Suggested_Value")
	}
	return nil
}

// FeedbackFeatures mirrors the flattened feature columns of the training
// corpus. The JSON keys are the case-worker tool's export format; the
// journal stores them as-is.
type FeedbackFeatures struct {
	CaseStatus        float64  `json:"Case_Status"`
	CaseReopened      float64  `json:"Case_Reopened"`
	CaseIsActive      *float64 `json:"Case_IsActive"`
	DemoFamilySize    *float64 `json:"Demo_FamilySize"`
	DemoDeceasedCount float64  `json:"Demo_DeceasedCount"`
	DemoEduBurden     float64  `json:"Demo_EduBurden"`
	DemoMaritalVuln   float64  `json:"Demo_MaritalVuln"`
	MedDisability     float64  `json:"Med_Disability"`
	MedChronic        float64  `json:"Med_Chronic"`
	MedUrgent         float64  `json:"Med_Urgent"`
	MedCount          float64  `json:"Med_Count"`
	HouseIsRented     float64  `json:"House_IsRented"`
	HouseRent         float64  `json:"House_Rent"`
	HouseInfra        float64  `json:"House_Infra"`
	HouseElec         *float64 `json:"House_Elec"`
	HouseRatio        *float64 `json:"House_Ratio"`
	FinBalance        float64  `json:"Fin_Balance"`
	FinStatus         float64  `json:"Fin_Status"`
	HistLastMonth     float64  `json:"Hist_LastMonth"`
	XGBoostSuggestion *float64 `json:"XGBoost_Suggestion"`
}

// FeedbackError reports one rejected edit by its index in the batch.
type FeedbackError struct {
	Index     int    `json:"index"`
	Recipient string `json:"recipient,omitempty"`
	Error     string `json:"error"`
}

// FeedbackResponse is the body returned by POST /v1/feedback.
type FeedbackResponse struct {
	Operation string          `json:"operation"`
	RunID     string          `json:"run_id"`
	Logged    int             `json:"logged"`
	Failed    int             `json:"failed"`
	Errors    []FeedbackError `json:"errors,omitempty"`
}
