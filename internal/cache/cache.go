// Package cache implements the two-tier response cache for the GitHub access
// layer: a process-local LRU tier in front of a shared Redis tier, composed
// behind one interface with stale-while-revalidate semantics.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a cache key does not exist in a tier.
var ErrNotFound = errors.New("cache: key not found")

// Entry is a cached value with its freshness metadata. StaleAt always
// precedes ExpiresAt: between the two the entry is still served but triggers
// an asynchronous refresh; past ExpiresAt it is unusable.
type Entry struct {
	Data           json.RawMessage `json:"data"`
	ExpiresAt      time.Time       `json:"expires_at"`
	StaleAt        time.Time       `json:"stale_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
}

// Expired reports whether the entry is past its hard expiry.
func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Stale reports whether the entry should be served but refreshed.
func (e *Entry) Stale(now time.Time) bool {
	return !now.Before(e.StaleAt) && now.Before(e.ExpiresAt)
}

// Options configures the freshness windows a tier applies when writing.
type Options struct {
	// TTL is the hard expiry applied to new entries.
	TTL time.Duration

	// StaleAfter marks the point after which an entry is served stale.
	// Must be shorter than TTL.
	StaleAfter time.Duration
}

// Store is the interface both cache tiers implement. Implementations must be
// safe for concurrent use. Get returns ErrNotFound for absent or hard-expired
// keys; freshness decisions beyond that belong to the multi-level composition.
type Store interface {
	// Get retrieves the entry stored at key.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set stores an entry at key, replacing any previous value.
	Set(ctx context.Context, key string, entry *Entry) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every key beginning with prefix and returns
	// the number of keys removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// NewEntry builds an entry for data written at now under the given options.
func NewEntry(data json.RawMessage, now time.Time, opts Options) *Entry {
	return &Entry{
		Data:           data,
		ExpiresAt:      now.Add(opts.TTL),
		StaleAt:        now.Add(opts.StaleAfter),
		LastAccessedAt: now,
	}
}

// BuildKey constructs a cache key by joining parts with ":".
// Examples:
//   - BuildKey("repo", "owner/name") -> "repo:owner/name"
//   - BuildKey("commits", "owner/name", "abc123") -> "commits:owner/name:abc123"
func BuildKey(prefix string, parts ...string) string {
	key := prefix
	for _, part := range parts {
		key += ":" + part
	}
	return key
}
