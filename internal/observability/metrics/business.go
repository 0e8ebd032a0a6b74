package metrics

import (
	"strconv"
	"time"
)

// RecordAPIRequest records a completed outbound GitHub API request.
// Status is the HTTP status code, or 0 for a transport-level failure.
func RecordAPIRequest(resource string, status int, duration time.Duration) {
	label := "transport_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	APIRequestsTotal.WithLabelValues(resource, label).Inc()
	APIRequestDuration.WithLabelValues(resource).Observe(duration.Seconds())
}

// UpdateRateLimitRemaining updates the remaining-quota gauge for a resource.
// This gauge is refreshed after every response that carries rate limit headers.
func UpdateRateLimitRemaining(resource string, remaining int) {
	RateLimitRemaining.WithLabelValues(resource).Set(float64(remaining))
}

// RecordRetry records a retry attempt with its classified reason.
// Reason should be "rate_limit", "network", or "upstream".
func RecordRetry(reason string) {
	RetryAttemptsTotal.WithLabelValues(reason).Inc()
}

// RecordSchedulerJob records a drained scheduler job with its outcome.
// Status should be either "success" or "failure".
func RecordSchedulerJob(priority string, success bool, waited time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	SchedulerJobsTotal.WithLabelValues(priority, status).Inc()
	SchedulerWaitDuration.Observe(waited.Seconds())
}

// UpdateSchedulerQueueDepth updates the queue depth gauge.
func UpdateSchedulerQueueDepth(depth int) {
	SchedulerQueueDepth.Set(float64(depth))
}

// RecordCacheLookup records a cache lookup outcome for a tier.
// Tier is "memory" or "redis"; outcome is "hit", "stale_hit", "miss", or "error".
func RecordCacheLookup(tier, outcome string) {
	CacheRequestsTotal.WithLabelValues(tier, outcome).Inc()
}

// RecordCacheEviction records a capacity eviction from the memory tier.
func RecordCacheEviction() {
	CacheEvictionsTotal.Inc()
}

// RecordCacheRefresh records the outcome of a background revalidation.
func RecordCacheRefresh(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	CacheRefreshTotal.WithLabelValues(status).Inc()
}

// RecordCacheInvalidations records keys removed by a prefix invalidation.
func RecordCacheInvalidations(count int) {
	CacheInvalidationsTotal.Add(float64(count))
}

// UpdateCircuitBreakerState updates the breaker state gauge for a service key.
func UpdateCircuitBreakerState(service string, state float64) {
	CircuitBreakerState.WithLabelValues(service).Set(state)
}

// RecordBreakerFallback records a circuit-open fallback by outcome
// ("cached", "empty", "unavailable").
func RecordBreakerFallback(outcome string) {
	CircuitBreakerFallbacksTotal.WithLabelValues(outcome).Inc()
}
