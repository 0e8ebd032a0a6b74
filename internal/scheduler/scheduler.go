// Package scheduler serializes outbound GitHub API work through a single
// priority-ordered queue. GitHub's per-resource quotas make global throughput
// the constraint rather than request-level parallelism, so executing at most
// one unit of work at a time keeps rate-limit accounting and backoff trivial
// to reason about and avoids thundering-herd retries.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hubgate/internal/observability/metrics"
)

// Priority orders queued work. Lower values drain first; within a tier,
// jobs run in submission order. Priority is a scheduling tie-breaker only
// and never affects correctness.
type Priority int

const (
	// PriorityHigh is for user-facing single-entity lookups.
	PriorityHigh Priority = iota
	// PriorityMedium is for collection listings.
	PriorityMedium
	// PriorityLow is for background work such as quota polling.
	PriorityLow
)

// String returns a human-readable label for the priority.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// Thunk is a unit of schedulable work.
type Thunk func(ctx context.Context) (interface{}, error)

type result struct {
	value interface{}
	err   error
}

// job is a queued work item. It lives from Submit until its thunk settles.
type job struct {
	id         uuid.UUID
	priority   Priority
	enqueuedAt time.Time
	run        Thunk
	done       chan result
}

// Scheduler drains jobs one at a time in (priority, enqueue time) order.
// Submitting while a drain is in progress is safe: the new job is inserted
// and picked up by the running loop after the next sort.
type Scheduler struct {
	mu       sync.Mutex
	queue    []*job
	draining bool
	logger   *slog.Logger
	clock    func() time.Time
}

// New creates an idle scheduler. The drain loop starts with the first
// submission and parks itself again when the queue empties.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		logger: logger,
		clock:  time.Now,
	}
}

// Submit enqueues fn with the given priority and blocks until it has been
// drained and settled, returning its result. Canceling ctx abandons the
// wait, not the work: the job still runs to completion in the background
// and its result is discarded.
func (s *Scheduler) Submit(ctx context.Context, priority Priority, fn Thunk) (interface{}, error) {
	j := &job{
		id:         uuid.New(),
		priority:   priority,
		enqueuedAt: s.clock(),
		run:        fn,
		// Buffered so a settled job never blocks the drain loop when
		// its submitter has abandoned the wait.
		done: make(chan result, 1),
	}

	s.mu.Lock()
	s.queue = append(s.queue, j)
	depth := len(s.queue)
	startDrain := !s.draining
	if startDrain {
		s.draining = true
	}
	s.mu.Unlock()

	metrics.UpdateSchedulerQueueDepth(depth)
	if startDrain {
		go s.drain()
	}

	select {
	case res := <-j.done:
		return res.value, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("scheduler: wait abandoned: %w", ctx.Err())
	}
}

// Len returns the current queue depth.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// drain executes queued jobs to completion, one at a time, until the queue
// empties. Each cycle re-sorts so jobs submitted mid-drain take their proper
// place. A failing job rejects only its own waiter; the loop continues.
func (s *Scheduler) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.mu.Unlock()
			metrics.UpdateSchedulerQueueDepth(0)
			return
		}

		sort.SliceStable(s.queue, func(i, k int) bool {
			if s.queue[i].priority != s.queue[k].priority {
				return s.queue[i].priority < s.queue[k].priority
			}
			return s.queue[i].enqueuedAt.Before(s.queue[k].enqueuedAt)
		})

		j := s.queue[0]
		s.queue = s.queue[1:]
		depth := len(s.queue)
		s.mu.Unlock()

		metrics.UpdateSchedulerQueueDepth(depth)
		s.execute(j)
	}
}

// execute runs a single job. The job runs under its own background context:
// a submitter abandoning its wait must not cancel work that is already
// consuming quota.
func (s *Scheduler) execute(j *job) {
	waited := s.clock().Sub(j.enqueuedAt)

	value, err := j.run(context.Background())
	if err != nil {
		s.logger.Debug("scheduled job failed",
			slog.String("job_id", j.id.String()),
			slog.String("priority", j.priority.String()),
			slog.Duration("waited", waited),
			slog.Any("error", err))
	}

	metrics.RecordSchedulerJob(j.priority.String(), err == nil, waited)
	j.done <- result{value: value, err: err}
}
