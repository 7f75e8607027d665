// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jinterlante1206/FairshareLocal/services/allocator/engine"
	"github.com/jinterlante1206/FairshareLocal/services/allocator/feedback"
	"github.com/jinterlante1206/FairshareLocal/services/allocator/handlers"
	"github.com/jinterlante1206/FairshareLocal/services/scoring"
)

// SetupRoutes registers all allocator endpoints.
//
// The feedback and train routes require a journal; when store is nil
// (journal disabled or failed to open) they are not registered, and the
// allocation path still works.
func SetupRoutes(router *gin.Engine, eng *engine.Engine, scorer scoring.Scorer,
	suggester scoring.Suggester, trainer scoring.Trainer, store *feedback.Store) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.POST("/allocations", handlers.HandleAllocation(eng, scorer, suggester))

		if store != nil {
			v1.POST("/feedback", handlers.HandleFeedback(store))
			v1.POST("/models/train", handlers.HandleTrain(store, trainer))
		}
	}
}
