package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"hubgate/internal/domain/entity"
	"hubgate/internal/observability/metrics"
)

// GitHub rate limit resources. Every REST call consumes the core quota;
// search and graphql have their own windows.
const (
	ResourceCore    = "core"
	ResourceSearch  = "search"
	ResourceGraphQL = "graphql"
)

// resetBuffer is added on top of the reported reset time before resuming,
// so a request never races the window boundary.
const resetBuffer = 1 * time.Second

// Tracker holds the last-seen rate limit snapshot per resource. It is
// updated after every response (last-response-wins, no merging) and read by
// the scheduler's wait gate before each outbound call.
//
// All methods are safe for concurrent use.
type Tracker struct {
	mu        sync.RWMutex
	resources map[string]entity.RateQuota
	clock     Clock
}

// NewTracker creates a tracker with an empty snapshot.
func NewTracker(clock Clock) *Tracker {
	if clock == nil {
		clock = &SystemClock{}
	}
	return &Tracker{
		resources: make(map[string]entity.RateQuota),
		clock:     clock,
	}
}

// Update overwrites the stored quota for a resource.
func (t *Tracker) Update(resource string, quota entity.RateQuota) {
	t.mu.Lock()
	t.resources[resource] = quota
	t.mu.Unlock()

	metrics.UpdateRateLimitRemaining(resource, quota.Remaining)
}

// UpdateFromHeaders parses the x-ratelimit-* headers of a response and
// overwrites the stored quota for the resource. Responses without rate limit
// headers leave the snapshot untouched.
func (t *Tracker) UpdateFromHeaders(resource string, h http.Header) {
	remaining, ok := intHeader(h, "x-ratelimit-remaining")
	if !ok {
		return
	}

	limit, _ := intHeader(h, "x-ratelimit-limit")
	used, _ := intHeader(h, "x-ratelimit-used")
	reset, _ := int64Header(h, "x-ratelimit-reset")

	t.Update(resource, entity.RateQuota{
		Limit:     limit,
		Used:      used,
		Remaining: remaining,
		Reset:     reset,
	})
}

// Quota returns the last-seen quota for a resource and whether one has been
// recorded yet.
func (t *Tracker) Quota(resource string) (entity.RateQuota, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	q, ok := t.resources[resource]
	return q, ok
}

// Status assembles the full snapshot across resources. The aggregate Rate
// field mirrors core, matching how the REST /rate_limit endpoint reports it.
func (t *Tracker) Status() entity.RateLimitStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	core := t.resources[ResourceCore]
	return entity.RateLimitStatus{
		Resources: entity.RateLimitResources{
			Core:    core,
			Search:  t.resources[ResourceSearch],
			GraphQL: t.resources[ResourceGraphQL],
		},
		Rate: core,
	}
}

// Wait blocks until the tracked window for the resource allows another
// request. It returns immediately when quota remains or the recorded reset
// time has already passed; otherwise it sleeps until reset plus a small
// buffer. The context cancels the wait, not the underlying window.
func (t *Tracker) Wait(ctx context.Context, resource string) error {
	quota, ok := t.Quota(resource)
	if !ok || quota.Remaining > 0 {
		return nil
	}

	now := t.clock.Now()
	resetAt := quota.ResetTime()
	if !resetAt.After(now) {
		return nil
	}

	wait := resetAt.Sub(now) + resetBuffer
	select {
	case <-t.clock.After(wait):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("rate limit wait aborted: %w", ctx.Err())
	}
}

func intHeader(h http.Header, name string) (int, bool) {
	v := h.Get(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func int64Header(h http.Header, name string) (int64, bool) {
	v := h.Get(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
