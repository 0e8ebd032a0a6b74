package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for the GitHub access layer.
var (
	// ErrUnauthorized indicates that no usable access token could be
	// resolved, or that GitHub rejected the one we sent.
	ErrUnauthorized = errors.New("github: unauthorized")

	// ErrNotFound indicates that the requested entity does not exist
	// upstream (HTTP 404).
	ErrNotFound = errors.New("github: not found")

	// ErrRateLimited indicates that the rate limit retry budget was
	// exhausted while GitHub kept answering 403 with zero remaining quota.
	ErrRateLimited = errors.New("github: rate limit exceeded")

	// ErrUnavailable indicates that the circuit breaker is open and no
	// cached fallback data exists for the request.
	ErrUnavailable = errors.New("github: service unavailable")
)

// UpstreamError represents a non-2xx, non-404 response from GitHub. It
// carries the original HTTP status so callers can decide how to present it.
type UpstreamError struct {
	StatusCode int
	Path       string
	Message    string
}

// Error returns a formatted message including the upstream status.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github: upstream error %d on %s: %s", e.StatusCode, e.Path, e.Message)
}

// NetworkError wraps a transport-level failure that survived the retry
// budget. Unwrap exposes the underlying error for errors.Is/As checks.
type NetworkError struct {
	Err error
}

// Error returns a formatted message for the transport failure.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("github: network error: %v", e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}
