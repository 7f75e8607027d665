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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jinterlante1206/FairshareLocal/services/allocator/feedback"
	"github.com/jinterlante1206/FairshareLocal/services/allocator/observability"
	"github.com/jinterlante1206/FairshareLocal/services/scoring"
)

// HandleTrain triggers a policy training run on the journaled feedback.
//
// An empty journal returns 409: retraining on nothing would only reload
// the previous checkpoint, so the request is refused rather than silently
// succeeding.
func HandleTrain(store *feedback.Store, trainer scoring.Trainer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		count, err := store.Count()
		if err != nil {
			slog.Error("Failed to inspect feedback journal", "error", err)
			recordError(observability.OperationTrain, observability.ErrorCodeStorage)
			recordRequest(observability.OperationTrain, false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to inspect feedback journal", "details": err.Error()})
			return
		}
		if count == 0 {
			recordRequest(observability.OperationTrain, false)
			c.JSON(http.StatusConflict, gin.H{"error": "No feedback has been logged; nothing to train on"})
			return
		}

		slog.Info("Triggering policy training", "entries", count)
		message, err := trainer.Train(ctx)
		if err != nil {
			slog.Error("Policy training failed", "error", err)
			recordError(observability.OperationTrain, observability.ErrorCodeModelError)
			recordRequest(observability.OperationTrain, false)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Policy training failed", "details": err.Error()})
			return
		}

		recordRequest(observability.OperationTrain, true)
		c.JSON(http.StatusOK, gin.H{
			"operation": "train",
			"entries":   count,
			"message":   message,
		})
	}
}
