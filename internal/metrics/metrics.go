// Package metrics defines the Prometheus collectors and the HTTP
// instrumentation middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tandem"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
)

// Feature gating metrics
var (
	// FeatureChecksTotal counts access guard decisions by feature and
	// outcome (allowed, denied, error).
	FeatureChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feature_checks_total",
			Help:      "Total number of feature access checks",
		},
		[]string{"feature", "outcome"},
	)
)

// Business metrics
var (
	TenantsRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenants_registered_total",
			Help:      "Total number of tenants registered",
		},
	)

	FeedbackRequestsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_requests_created_total",
			Help:      "Total number of feedback requests created",
		},
	)

	FeedbackResponsesSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_responses_submitted_total",
			Help:      "Total number of anonymous feedback responses submitted",
		},
	)

	ReviewsFinalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_finalized_total",
			Help:      "Total number of reviews finalized",
		},
	)
)

// Background worker metrics
var (
	WorkerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_runs_total",
			Help:      "Total number of worker maintenance runs",
		},
		[]string{"task", "status"},
	)

	WorkerItemsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_items_processed_total",
			Help:      "Total number of rows touched by worker tasks",
		},
		[]string{"task"},
	)
)

// Outcome labels for FeatureChecksTotal.
const (
	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
	OutcomeError   = "error"
)
