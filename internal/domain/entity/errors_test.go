package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_Distinct(t *testing.T) {
	sentinels := []error{ErrUnauthorized, ErrNotFound, ErrRateLimited, ErrUnavailable}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestSentinelErrors_SurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("fetching /repos/acme/backend: %w", ErrNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrUnauthorized))
}

func TestUpstreamError_Message(t *testing.T) {
	err := &UpstreamError{
		StatusCode: 502,
		Path:       "/repos/acme/backend",
		Message:    "Bad Gateway",
	}

	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "/repos/acme/backend")
	assert.Contains(t, err.Error(), "Bad Gateway")
}

func TestUpstreamError_As(t *testing.T) {
	var upstream *UpstreamError
	err := fmt.Errorf("request failed: %w", &UpstreamError{StatusCode: 500, Path: "/rate_limit"})

	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, 500, upstream.StatusCode)
	assert.Equal(t, "/rate_limit", upstream.Path)
}

func TestNetworkError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NetworkError{Err: cause}

	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, errors.Is(err, cause))

	var netErr *NetworkError
	wrapped := fmt.Errorf("listing commits: %w", err)
	require.True(t, errors.As(wrapped, &netErr))
	assert.Equal(t, cause, netErr.Err)
}
