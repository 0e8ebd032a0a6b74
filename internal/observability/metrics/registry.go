// Package metrics provides centralized Prometheus metrics for the GitHub access layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// GitHub API metrics track outbound request patterns and quota consumption
var (
	// APIRequestsTotal counts outbound GitHub API requests by resource and status
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "github_api_requests_total",
			Help: "Total number of outbound GitHub API requests",
		},
		[]string{"resource", "status"},
	)

	// APIRequestDuration measures outbound request duration in seconds
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "github_api_request_duration_seconds",
			Help:    "GitHub API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	// RateLimitRemaining tracks the remaining quota reported by GitHub per resource
	RateLimitRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "github_api_rate_limit_remaining",
			Help: "Remaining GitHub API quota per resource",
		},
		[]string{"resource"},
	)

	// RetryAttemptsTotal counts retry attempts by reason (rate_limit, network, upstream)
	RetryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "github_api_retry_attempts_total",
			Help: "Total number of retry attempts against the GitHub API",
		},
		[]string{"reason"},
	)
)

// Scheduler metrics track the serialized request queue
var (
	// SchedulerQueueDepth tracks the number of jobs waiting in the scheduler queue
	SchedulerQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_queue_depth",
			Help: "Number of jobs waiting in the request scheduler queue",
		},
	)

	// SchedulerJobsTotal counts drained jobs by priority and outcome
	SchedulerJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_total",
			Help: "Total number of jobs drained by the request scheduler",
		},
		[]string{"priority", "status"},
	)

	// SchedulerWaitDuration measures how long jobs wait before execution
	SchedulerWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduler_wait_duration_seconds",
			Help:    "Time jobs spend queued before the scheduler drains them",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)
)

// Cache metrics track the two cache tiers and background revalidation
var (
	// CacheRequestsTotal counts lookups by tier and outcome (hit, stale_hit, miss, error)
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Total number of cache lookups by tier and outcome",
		},
		[]string{"tier", "outcome"},
	)

	// CacheEvictionsTotal counts entries evicted from the memory tier for capacity
	CacheEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of memory cache entries evicted for capacity",
		},
	)

	// CacheRefreshTotal counts background stale-while-revalidate refreshes by status
	CacheRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_refresh_total",
			Help: "Total number of background cache refreshes",
		},
		[]string{"status"},
	)

	// CacheInvalidationsTotal counts keys removed by prefix invalidation
	CacheInvalidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_invalidations_total",
			Help: "Total number of cache keys removed by prefix invalidation",
		},
	)
)

// Circuit breaker metrics
var (
	// CircuitBreakerState reports the current breaker state per service key
	// (0 = closed, 1 = half-open, 2 = open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state per service key (0=closed, 1=half-open, 2=open)",
		},
		[]string{"service"},
	)

	// CircuitBreakerFallbacksTotal counts breaker-open fallbacks by outcome
	// (cached, empty, unavailable)
	CircuitBreakerFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_fallbacks_total",
			Help: "Total number of circuit-open fallbacks by outcome",
		},
		[]string{"outcome"},
	)
)
