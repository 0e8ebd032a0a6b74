// Package observability provides production-grade observability infrastructure
// including structured logging and Prometheus metrics.
//
// This package centralizes observability concerns to enable:
//   - Structured logging with context propagation
//   - Prometheus metrics for monitoring the access layer
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//
// Example usage:
//
//	import (
//	    "hubgate/internal/observability/logging"
//	    "hubgate/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("gateway started")
//
//	    metrics.RecordCacheLookup("memory", "hit")
//	}
package observability
