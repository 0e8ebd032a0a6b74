// Package retry provides retry logic with a fixed exponential backoff schedule.
// It helps handle transient failures gracefully by automatically retrying failed operations.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"

	"hubgate/internal/observability/metrics"
)

// Config holds the configuration for retry logic.
type Config struct {
	// Schedule is the backoff delay table indexed by attempt count.
	// The number of retries equals the length of the schedule; once the
	// schedule is exhausted the last error surfaces to the caller.
	Schedule []time.Duration
}

// DefaultConfig returns the standard GitHub API retry configuration:
// five retries at 1s, 2s, 4s, 8s, 16s.
func DefaultConfig() Config {
	return Config{
		Schedule: []time.Duration{
			1 * time.Second,
			2 * time.Second,
			4 * time.Second,
			8 * time.Second,
			16 * time.Second,
		},
	}
}

// Reasons used to classify retryable failures for logging and metrics.
const (
	ReasonRateLimit = "rate_limit"
	ReasonNetwork   = "network"
	ReasonUpstream  = "upstream"
)

// RateLimitError marks a 403 response carrying x-ratelimit-remaining: 0.
// It is retried on the same schedule as transport errors but logged and
// counted separately.
type RateLimitError struct {
	ResetAt time.Time
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exhausted, window resets at %s", e.ResetAt.Format(time.RFC3339))
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Do executes the given function, retrying retryable failures on the
// configured backoff schedule. It returns nil as soon as the function
// succeeds, the original error for non-retryable failures, and the last
// error once the schedule is exhausted.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error

	for attempt := 0; ; attempt++ {
		lastErr = fn()

		// Success - return immediately
		if lastErr == nil {
			if attempt > 0 {
				slog.Info("operation succeeded after retry",
					slog.Int("attempt", attempt+1))
			}
			return nil
		}

		reason, retryable := Classify(lastErr)
		if !retryable {
			return lastErr
		}

		// Schedule exhausted: surface the error upward instead of
		// retrying further.
		if attempt >= len(cfg.Schedule) {
			return fmt.Errorf("retry schedule exhausted after %d attempts: %w", attempt+1, lastErr)
		}

		delay := cfg.Schedule[attempt]
		metrics.RecordRetry(reason)
		slog.Warn("operation failed, retrying",
			slog.String("reason", reason),
			slog.Int("attempt", attempt+1),
			slog.Int("max_retries", len(cfg.Schedule)),
			slog.Duration("delay", delay),
			slog.Any("error", lastErr))

		select {
		case <-time.After(delay):
			// Continue to next attempt
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}
	}
}

// Classify reports whether an error is worth retrying and under which
// reason it should be logged.
func Classify(err error) (reason string, retryable bool) {
	if err == nil {
		return "", false
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", false
	}

	// Rate limit exhaustion (403 + zero remaining) shares the backoff
	// table with transport errors but is reported separately.
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return ReasonRateLimit, true
	}

	// Network errors (timeout)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonNetwork, true
	}

	// Syscall errors
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return ReasonNetwork, true
	}

	// Generic transport failures from net/http arrive as *url.Error
	// wrapping an op error; treat any net.OpError as retryable.
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ReasonNetwork, true
	}

	// HTTP status codes
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		// 5xx server errors are retryable
		if httpErr.StatusCode >= 500 && httpErr.StatusCode < 600 {
			return ReasonUpstream, true
		}
		// 429 Too Many Requests is retryable
		if httpErr.StatusCode == http.StatusTooManyRequests {
			return ReasonRateLimit, true
		}
		// 408 Request Timeout is retryable
		if httpErr.StatusCode == http.StatusRequestTimeout {
			return ReasonNetwork, true
		}
	}

	return "", false
}
