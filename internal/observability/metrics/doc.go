// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all access-layer metrics including:
//   - Outbound GitHub API request metrics (duration, count, quota)
//   - Request scheduler metrics (queue depth, wait time)
//   - Cache tier metrics (hits, staleness, evictions, refreshes)
//   - Circuit breaker state and fallback metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "hubgate/internal/observability/metrics"
//
//	func fetch(resource string) {
//	    start := time.Now()
//	    // ... perform request ...
//	    metrics.RecordAPIRequest(resource, 200, time.Since(start))
//	}
package metrics
