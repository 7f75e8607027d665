// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jinterlante1206/FairshareLocal/pkg/validation"
	"github.com/jinterlante1206/FairshareLocal/services/allocator/datatypes"
	"github.com/jinterlante1206/FairshareLocal/services/allocator/feedback"
	"github.com/jinterlante1206/FairshareLocal/services/allocator/observability"
)

// HandleFeedback journals human corrections to an allocation run.
//
// The batch is processed edit by edit with partial success: a malformed
// edit is reported in the errors array and the rest of the batch still
// lands in the journal. Only a malformed envelope (bad JSON, missing
// group constraints) rejects the whole request.
func HandleFeedback(store *feedback.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.FeedbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.Error("Invalid feedback request", "error", err)
			recordError(observability.OperationFeedback, observability.ErrorCodeValidation)
			recordRequest(observability.OperationFeedback, false)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		if err := validation.ValidateRunID(req.RunID); err != nil {
			recordError(observability.OperationFeedback, observability.ErrorCodeValidation)
			recordRequest(observability.OperationFeedback, false)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid run id", "details": err.Error()})
			return
		}

		logged := 0
		var failures []datatypes.FeedbackError
		for i, edit := range req.Edits {
			if err := processEdit(store, req, edit); err != nil {
				failures = append(failures, datatypes.FeedbackError{
					Index:     i,
					Recipient: edit.RecipientID,
					Error:     err.Error(),
				})
				continue
			}
			logged++
		}

		if m := observability.DefaultMetrics; m != nil {
			m.RecordFeedback(logged)
		}
		recordRequest(observability.OperationFeedback, len(failures) == 0)

		slog.Info("Feedback batch journaled",
			"run_id", req.RunID,
			"logged", logged,
			"failed", len(failures))

		c.JSON(http.StatusOK, datatypes.FeedbackResponse{
			Operation: "feedback",
			RunID:     req.RunID,
			Logged:    logged,
			Failed:    len(failures),
			Errors:    failures,
		})
	}
}

// processEdit validates one edit and appends it to the journal.
func processEdit(store *feedback.Store, req datatypes.FeedbackRequest, edit datatypes.FeedbackEdit) error {
	if err := edit.Validate(); err != nil {
		return err
	}
	recipientID, err := validation.SanitizeRecipientID(edit.RecipientID)
	if err != nil {
		return err
	}

	entry := feedback.Entry{
		RunID:           req.RunID,
		RecipientID:     recipientID,
		GroupID:         *req.GroupID,
		MaxBudget:       *req.MaxBudget,
		MinAllocation:   *req.MinAllocation,
		MaxAllocation:   *req.MaxAllocation,
		MinCases:        *req.MinCases,
		AISuggested:     *edit.AISuggested,
		AmountAllocated: *edit.HumanFinal,
	}
	if edit.Features != nil {
		raw, err := json.Marshal(edit.Features)
		if err != nil {
			return err
		}
		entry.Features = raw
	}

	if _, err := store.Append(entry); err != nil {
		recordError(observability.OperationFeedback, observability.ErrorCodeStorage)
		return err
	}
	return nil
}
