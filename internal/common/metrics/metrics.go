// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// ProviderRequests counts outbound places-provider calls by outcome
	// (ok, error, timeout, rejected, breaker_open).
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "places_provider_requests_total",
			Help: "Outbound places provider requests by provider, operation and outcome",
		},
		[]string{"provider", "operation", "outcome"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "places_provider_request_duration_seconds",
			Help:    "Latency of outbound places provider requests",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"provider", "operation"},
	)

	ProviderBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "places_provider_breaker_state",
			Help: "Circuit breaker state per provider (0 closed, 1 half-open, 2 open)",
		},
		[]string{"provider"},
	)

	CandidatesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_candidates_dropped_total",
			Help: "Candidates removed from the pipeline by reason",
		},
		[]string{"reason"},
	)

	MatchCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_match_cache_lookups_total",
			Help: "Cross-source match cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	RecommendationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendations_returned",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_store_errors_total",
			Help: "Degraded storage operations by store and operation",
		},
		[]string{"store", "operation"},
	)

	FeedbackRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_feedback_recorded_total",
			Help: "Stored user feedback by source (quick, form)",
		},
		[]string{"source"},
	)
)
