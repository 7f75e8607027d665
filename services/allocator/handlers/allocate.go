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
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jinterlante1206/FairshareLocal/pkg/validation"
	"github.com/jinterlante1206/FairshareLocal/services/allocator/datatypes"
	"github.com/jinterlante1206/FairshareLocal/services/allocator/engine"
	"github.com/jinterlante1206/FairshareLocal/services/allocator/observability"
	"github.com/jinterlante1206/FairshareLocal/services/scoring"
)

// HandleAllocation orchestrates one allocation run:
//  1. Score every case via the scorer sidecar (priority + reference value)
//  2. Ask the policy sidecar for a suggested allocation per case
//  3. Run the deterministic allocation engine over the suggestions
//  4. Return per-recipient rows plus the run summary
//
// Model failures map to 502: the engine never runs on partial scores,
// because a half-scored batch would silently reorder the ranking.
func HandleAllocation(eng *engine.Engine, scorer scoring.Scorer, suggester scoring.Suggester) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		var req datatypes.AllocationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.Error("Invalid allocation request", "error", err)
			recordError(observability.OperationAllocate, observability.ErrorCodeValidation)
			recordRequest(observability.OperationAllocate, false)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		cs := req.Params.ToConstraintSet()
		if err := cs.Validate(); err != nil {
			slog.Error("Invalid allocation constraints", "error", err)
			recordError(observability.OperationAllocate, observability.ErrorCodeValidation)
			recordRequest(observability.OperationAllocate, false)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid constraints", "details": err.Error()})
			return
		}

		for _, rec := range req.Data {
			if err := validation.ValidateRecipientID(rec.RecipientID); err != nil {
				recordError(observability.OperationAllocate, observability.ErrorCodeValidation)
				recordRequest(observability.OperationAllocate, false)
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipient", "details": err.Error()})
				return
			}
		}

		runID := uuid.NewString()
		slog.Info("Processing allocation request",
			"run_id", runID,
			"cases", len(req.Data),
			"budget", cs.TotalBudget)

		// 1+2. Model calls, one pair per case. References are kept by ID so
		// the response rows can be rebuilt after the engine reorders.
		modelCtx, modelSpan := tracer.Start(ctx, "allocation.model_calls")
		modelSpan.SetAttributes(attribute.Int("cases", len(req.Data)))

		references := make(map[string]float64, len(req.Data))
		recipients := make([]engine.Recipient, 0, len(req.Data))
		for _, rec := range req.Data {
			features := rec.FeatureVector(0)
			score, err := scorer.Score(modelCtx, features)
			if err != nil {
				modelSpan.End()
				slog.Error("Scorer call failed", "run_id", runID, "recipient", rec.RecipientID, "error", err)
				recordError(observability.OperationAllocate, observability.ErrorCodeModelError)
				recordRequest(observability.OperationAllocate, false)
				c.JSON(http.StatusBadGateway, gin.H{
					"error":   "Scoring service unavailable",
					"details": fmt.Sprintf("recipient %s: %v", rec.RecipientID, err),
				})
				return
			}

			// The raw reference value is score * 10: the booster predicts a
			// reference amount, and the priority score is its scaled-down
			// form. The policy observation carries the raw reference, the
			// same value it saw during training.
			reference := score * 10
			references[rec.RecipientID] = reference

			obs := rec.PolicyObservation(reference, cs.TotalBudget, cs.MinAllocation, cs.MaxAllocation)
			suggestion, err := suggester.Suggest(modelCtx, obs, cs.MinAllocation, cs.MaxAllocation)
			if err != nil {
				modelSpan.End()
				slog.Error("Policy call failed", "run_id", runID, "recipient", rec.RecipientID, "error", err)
				recordError(observability.OperationAllocate, observability.ErrorCodeModelError)
				recordRequest(observability.OperationAllocate, false)
				c.JSON(http.StatusBadGateway, gin.H{
					"error":   "Policy service unavailable",
					"details": fmt.Sprintf("recipient %s: %v", rec.RecipientID, err),
				})
				return
			}

			recipients = append(recipients, engine.Recipient{
				ID:                  rec.RecipientID,
				PriorityScore:       score,
				SuggestedAllocation: suggestion,
			})
		}
		modelSpan.End()

		// 3. Deterministic allocation over the suggested amounts.
		_, engineSpan := tracer.Start(ctx, "allocation.engine_run")
		result, err := eng.Run(recipients, cs)
		engineSpan.End()
		if err != nil {
			slog.Error("Allocation engine failed", "run_id", runID, "error", err)
			recordError(observability.OperationAllocate, observability.ErrorCodeInternal)
			recordRequest(observability.OperationAllocate, false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Allocation failed", "details": err.Error()})
			return
		}

		// 4. Rows follow the engine's ranked order.
		rows := make([]datatypes.AllocationRow, 0, len(result.Recipients))
		for _, r := range result.Recipients {
			rows = append(rows, datatypes.AllocationRow{
				RecipientID:  r.ID,
				XGBReference: engine.Round2(references[r.ID]),
				RLAllocation: engine.Round2(r.FinalAllocation),
				MetMin:       r.FinalAllocation >= cs.MinAllocation,
			})
		}

		if m := observability.DefaultMetrics; m != nil {
			m.RecordRun(time.Since(start).Seconds(), result.Rounds, cs.TotalBudget, result.Summary.TotalAllocated)
		}
		recordRequest(observability.OperationAllocate, true)

		slog.Info("Allocation run complete",
			"run_id", runID,
			"cases", len(rows),
			"allocated", result.Summary.TotalAllocated,
			"helped", result.Summary.PeopleHelped,
			"rounds", result.Rounds,
			"duration_ms", time.Since(start).Milliseconds())

		c.JSON(http.StatusOK, datatypes.AllocationResponse{
			Operation: "allocate",
			RunID:     runID,
			Count:     len(rows),
			Results: datatypes.AllocationResults{
				Allocations: rows,
				Summary:     result.Summary,
			},
		})
	}
}
