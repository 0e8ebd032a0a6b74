// Package circuitbreaker provides circuit breaker protection for GitHub API calls.
// It uses the github.com/sony/gobreaker library to prevent cascading failures.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"hubgate/internal/domain/entity"
	"hubgate/internal/observability/metrics"
)

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name is the circuit breaker name for logging and metrics
	Name string

	// FailureThreshold is the number of consecutive failures that trips
	// the circuit from closed to open
	FailureThreshold uint32

	// CoolDown is how long to wait in open state before allowing a probe
	// request (half-open)
	CoolDown time.Duration

	// MaxRequests is the maximum number of requests allowed in half-open state
	MaxRequests uint32
}

// DefaultConfig returns the standard configuration for GitHub API breakers:
// open after 5 consecutive failures, probe again after 30 seconds.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		CoolDown:         30 * time.Second,
		MaxRequests:      1,
	}
}

// CircuitBreaker wraps gobreaker.CircuitBreaker with additional functionality.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a new circuit breaker with the given configuration.
func New(cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = 30 * time.Second
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.CoolDown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Upstream "not found" and auth rejections are answers, not
		// infrastructure failures; they must not trip the breaker.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return errors.Is(err, entity.ErrNotFound) || errors.Is(err, entity.ErrUnauthorized)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			metrics.UpdateCircuitBreakerState(name, stateValue(to))
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Execute runs the given function through the circuit breaker.
// If the circuit is open, it returns gobreaker.ErrOpenState immediately
// without invoking the function.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the name of the circuit breaker.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen returns true if the circuit breaker is in the open state.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}

// IsCircuitOpen reports whether the error came from an open circuit rather
// than from the wrapped call itself. gobreaker also rejects surplus probes
// in half-open state; both cases route to the caller's fallback path.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
