// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides metrics and instrumentation for the allocator.
//
// # Description
//
// This package implements Prometheus metrics for monitoring allocation
// operations. Metrics include:
//   - Request counters (by operation, status, error type)
//   - Engine latency histograms
//   - Redistribution round histograms
//   - Budget utilization gauges
//   - Feedback journal counters
//
// # Integration
//
// Metrics are exposed via /metrics endpoint. Use with Prometheus + Grafana
// for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "fairshare"

// Subsystem for allocator metrics
const allocatorSubsystem = "allocator"

// AllocatorMetrics holds all Prometheus metrics for allocation operations.
//
// # Description
//
// Provides counters, histograms, and gauges for monitoring the allocation
// pipeline and the feedback journal. Initialize once at startup via
// InitMetrics().
//
// # Fields
//
//   - RequestsTotal: Counter of requests by operation and status
//   - EngineDurationSeconds: Histogram of end-to-end engine run duration
//   - RedistributionRounds: Histogram of surplus redistribution rounds per run
//   - BudgetUtilization: Gauge of allocated/budget ratio for the last run
//   - FeedbackEntriesTotal: Counter of journaled human edits
//   - ErrorsTotal: Counter of errors by operation and error type
//
// # Thread Safety
//
// All operations are thread-safe.
type AllocatorMetrics struct {
	// RequestsTotal counts requests by operation and status.
	// Labels: operation (allocate, feedback, train), status (success, error)
	RequestsTotal *prometheus.CounterVec

	// EngineDurationSeconds measures the full allocation pipeline duration,
	// model calls included.
	EngineDurationSeconds prometheus.Histogram

	// RedistributionRounds measures surplus redistribution rounds per run.
	// The loop is capped at 10, so the buckets cover the full range.
	RedistributionRounds prometheus.Histogram

	// BudgetUtilization tracks the allocated/budget ratio of the most
	// recent run, in [0, 1].
	BudgetUtilization prometheus.Gauge

	// FeedbackEntriesTotal counts human edits journaled for training.
	FeedbackEntriesTotal prometheus.Counter

	// ErrorsTotal counts errors by operation and error type.
	// Labels: operation, error_code (validation, model_error, storage, internal)
	ErrorsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance of AllocatorMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *AllocatorMetrics

// InitMetrics initializes the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics. Should be called once
// at application startup, after Prometheus registry is available.
//
// # Outputs
//
//   - *AllocatorMetrics: The initialized metrics instance.
//
// # Limitations
//
//   - Panics if called twice (duplicate registration).
//
// # Assumptions
//
//   - Prometheus default registry is available.
func InitMetrics() *AllocatorMetrics {
	DefaultMetrics = &AllocatorMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: allocatorSubsystem,
				Name:      "requests_total",
				Help:      "Total number of requests by operation and status",
			},
			[]string{"operation", "status"},
		),

		EngineDurationSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: allocatorSubsystem,
				Name:      "engine_duration_seconds",
				Help:      "End-to-end allocation run duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
		),

		RedistributionRounds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: allocatorSubsystem,
				Name:      "redistribution_rounds",
				Help:      "Surplus redistribution rounds per allocation run",
				Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			},
		),

		BudgetUtilization: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: allocatorSubsystem,
				Name:      "budget_utilization",
				Help:      "Allocated/budget ratio of the most recent run",
			},
		),

		FeedbackEntriesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: allocatorSubsystem,
				Name:      "feedback_entries_total",
				Help:      "Total human edits journaled for training",
			},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: allocatorSubsystem,
				Name:      "errors_total",
				Help:      "Total errors by operation and error type",
			},
			[]string{"operation", "error_code"},
		),
	}

	return DefaultMetrics
}

// =============================================================================
// Error Codes
// =============================================================================

// ErrorCode represents a categorized error type for metrics.
type ErrorCode string

const (
	// ErrorCodeValidation indicates request validation failure.
	ErrorCodeValidation ErrorCode = "validation"

	// ErrorCodeModelError indicates a scorer or policy sidecar failure.
	ErrorCodeModelError ErrorCode = "model_error"

	// ErrorCodeStorage indicates a feedback journal failure.
	ErrorCodeStorage ErrorCode = "storage"

	// ErrorCodeInternal indicates internal server error.
	ErrorCodeInternal ErrorCode = "internal"
)

// =============================================================================
// Operation Names
// =============================================================================

// Operation represents an allocator operation for metrics labeling.
type Operation string

const (
	// OperationAllocate is the budget allocation endpoint.
	OperationAllocate Operation = "allocate"

	// OperationFeedback is the human feedback endpoint.
	OperationFeedback Operation = "feedback"

	// OperationTrain is the policy training trigger.
	OperationTrain Operation = "train"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RecordRequest records a completed request.
//
// # Inputs
//
//   - op: The operation that handled the request.
//   - success: Whether the request completed successfully.
func (m *AllocatorMetrics) RecordRequest(op Operation, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(string(op), status).Inc()
}

// RecordError records a categorized error.
//
// # Inputs
//
//   - op: The operation where the error occurred.
//   - code: The error type code.
func (m *AllocatorMetrics) RecordError(op Operation, code ErrorCode) {
	m.ErrorsTotal.WithLabelValues(string(op), string(code)).Inc()
}

// RecordRun records the outcome of one allocation run.
//
// # Inputs
//
//   - seconds: End-to-end run duration in seconds.
//   - rounds: Redistribution rounds the run used.
//   - budget: The run's total budget.
//   - allocated: The total amount allocated.
func (m *AllocatorMetrics) RecordRun(seconds float64, rounds int, budget, allocated float64) {
	m.EngineDurationSeconds.Observe(seconds)
	m.RedistributionRounds.Observe(float64(rounds))
	if budget > 0 {
		m.BudgetUtilization.Set(allocated / budget)
	} else {
		m.BudgetUtilization.Set(0)
	}
}

// RecordFeedback records journaled human edits.
//
// # Inputs
//
//   - logged: Number of edits successfully journaled.
func (m *AllocatorMetrics) RecordFeedback(logged int) {
	m.FeedbackEntriesTotal.Add(float64(logged))
}
