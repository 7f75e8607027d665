// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinterlante1206/FairshareLocal/pkg/logging"
	"github.com/jinterlante1206/FairshareLocal/services/allocator/engine"
	"github.com/jinterlante1206/FairshareLocal/services/allocator/feedback"
	"github.com/jinterlante1206/FairshareLocal/services/allocator/observability"
	"github.com/jinterlante1206/FairshareLocal/services/allocator/routes"
	"github.com/jinterlante1206/FairshareLocal/services/scoring"
	"google.golang.org/grpc/credentials/insecure"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	// Get the collector URL from the env var we set in podman-compose.yml
	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "fairshare-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("allocator-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	port := os.Getenv("ALLOCATOR_PORT")
	if port == "" {
		port = "12310"
	}

	logger := logging.New(logging.Config{
		Service: "allocator",
		JSON:    true,
		LogDir:  os.Getenv("ALLOCATOR_LOG_DIR"),
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	// --- Init the tracer ---
	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	observability.InitMetrics()

	eng, err := engine.New()
	if err != nil {
		log.Fatalf("FATAL: Could not initialize the allocation engine: %v", err)
	}

	// Model backends: HTTP sidecars by default, deterministic fallbacks
	// when running without them (smoke tests, early development).
	var scorer scoring.Scorer
	var suggester scoring.Suggester
	var trainer scoring.Trainer

	modelBackend := os.Getenv("MODEL_BACKEND_TYPE")
	switch modelBackend {
	case "none":
		slog.Info("Using fallback model backends (null scorer, floor suggester)")
		scorer = scoring.NullScorer{}
		suggester = scoring.FloorSuggester{}
	default:
		scorerClient, err := scoring.NewScorerServiceClient()
		if err != nil {
			log.Fatalf("Failed to initialize scorer client: %v", err)
		}
		policyClient, err := scoring.NewPolicyServiceClient()
		if err != nil {
			log.Fatalf("Failed to initialize policy client: %v", err)
		}
		scorer = scorerClient
		suggester = policyClient
		trainer = policyClient
		slog.Info("Using HTTP model sidecars")
	}

	// Feedback journal. A failed open degrades to allocation-only mode
	// rather than taking the whole service down.
	var store *feedback.Store
	dbPath := os.Getenv("FEEDBACK_DB_PATH")
	if dbPath == "" {
		dbPath = "/data/feedback"
	}
	if trainer == nil {
		slog.Warn("No trainer backend configured; feedback and train routes disabled")
	} else {
		cfg := feedback.DefaultConfig(dbPath)
		cfg.Logger = logger.Slog()
		store, err = feedback.Open(cfg)
		if err != nil {
			slog.Error("Failed to open the feedback journal; feedback and train routes disabled",
				"path", dbPath, "error", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("allocator-service"))

	routes.SetupRoutes(router, eng, scorer, suggester, trainer, store)
	log.Println("started up the container")

	log.Println("Starting the allocator server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
