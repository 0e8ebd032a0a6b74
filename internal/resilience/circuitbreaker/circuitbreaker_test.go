package circuitbreaker

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubgate/internal/domain/entity"
)

func testBreakerConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 3,
		CoolDown:         50 * time.Millisecond,
		MaxRequests:      1,
	}
}

func TestCircuitBreaker_SuccessKeepsClosed(t *testing.T) {
	cb := New(testBreakerConfig("test-success"))

	for i := 0; i < 10; i++ {
		result, err := cb.Execute(func() (interface{}, error) {
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", result)
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := New(testBreakerConfig("test-trip"))
	failure := errors.New("upstream exploded")

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(func() (interface{}, error) {
			return nil, failure
		})
		require.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
	assert.True(t, cb.IsOpen())

	// Open circuit rejects without invoking the function.
	invoked := false
	_, err := cb.Execute(func() (interface{}, error) {
		invoked = true
		return nil, nil
	})
	assert.True(t, IsCircuitOpen(err))
	assert.False(t, invoked)
}

func TestCircuitBreaker_SuccessResetsFailureStreak(t *testing.T) {
	cb := New(testBreakerConfig("test-streak"))
	failure := errors.New("transient")

	// Two failures, a success, then two more failures: never trips at
	// a threshold of three consecutive.
	for _, fail := range []bool{true, true, false, true, true} {
		_, _ = cb.Execute(func() (interface{}, error) {
			if fail {
				return nil, failure
			}
			return nil, nil
		})
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb := New(testBreakerConfig("test-halfopen"))
	failure := errors.New("down")

	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, failure })
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	// After the cooldown a single probe is admitted; success closes the
	// circuit again.
	time.Sleep(60 * time.Millisecond)

	result, err := cb.Execute(func() (interface{}, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", result)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := New(testBreakerConfig("test-reopen"))
	failure := errors.New("still down")

	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, failure })
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	time.Sleep(60 * time.Millisecond)

	_, err := cb.Execute(func() (interface{}, error) { return nil, failure })
	require.Error(t, err)
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestCircuitBreaker_NotFoundDoesNotTrip(t *testing.T) {
	cb := New(testBreakerConfig("test-notfound"))

	// Missing entities and auth rejections are upstream answers, not
	// infrastructure failures.
	for i := 0; i < 10; i++ {
		_, err := cb.Execute(func() (interface{}, error) {
			if i%2 == 0 {
				return nil, fmt.Errorf("lookup: %w", entity.ErrNotFound)
			}
			return nil, entity.ErrUnauthorized
		})
		require.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_Defaults(t *testing.T) {
	cfg := DefaultConfig("github-api-repos")
	assert.Equal(t, "github-api-repos", cfg.Name)
	assert.Equal(t, uint32(5), cfg.FailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.CoolDown)
	assert.Equal(t, uint32(1), cfg.MaxRequests)

	// Zero values fall back to the defaults.
	cb := New(Config{Name: "zeroed"})
	assert.Equal(t, "zeroed", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestIsCircuitOpen(t *testing.T) {
	assert.True(t, IsCircuitOpen(gobreaker.ErrOpenState))
	assert.True(t, IsCircuitOpen(gobreaker.ErrTooManyRequests))
	assert.True(t, IsCircuitOpen(fmt.Errorf("call: %w", gobreaker.ErrOpenState)))
	assert.False(t, IsCircuitOpen(errors.New("some other error")))
	assert.False(t, IsCircuitOpen(nil))
}
