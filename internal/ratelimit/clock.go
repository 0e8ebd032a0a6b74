// Package ratelimit tracks the GitHub API quota reported by response headers
// and gates outbound requests so the hourly budget is never overrun.
package ratelimit

import "time"

// Clock provides time operations for the tracker. Test implementations can
// return fixed times and pre-resolved timers.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that fires after the given duration.
	After(d time.Duration) <-chan time.Time
}

// SystemClock is a Clock implementation that uses the system time.
type SystemClock struct{}

// Now returns the current system time.
func (c *SystemClock) Now() time.Time {
	return time.Now()
}

// After wraps time.After.
func (c *SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
