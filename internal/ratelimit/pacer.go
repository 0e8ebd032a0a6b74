package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Pacer implements token bucket pacing for outbound requests. It keeps the
// client from burning the hourly quota in a burst even while the tracked
// window still reports remaining calls.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a Pacer with the specified sustained rate and burst
// capacity.
//
// Example:
//
//	pacer := NewPacer(2.0, 5) // 2 req/s with burst of 5
func NewPacer(requestsPerSecond float64, burst int) *Pacer {
	return &Pacer{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Allow blocks until a token is available or the context is canceled.
// It should be called before making an outbound request.
func (p *Pacer) Allow(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
