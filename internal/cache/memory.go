package cache

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"hubgate/internal/observability/metrics"
)

// DefaultMemoryCapacity bounds the memory tier; least recently used entries
// are evicted once the cap is reached.
const DefaultMemoryCapacity = 1000

// MemoryStore is the process-local cache tier. It wraps an LRU map so that
// capacity eviction follows access recency. Hard-expired entries read as
// misses but are only removed by capacity eviction or explicit deletes,
// keeping them reachable through Peek.
type MemoryStore struct {
	entries *lru.Cache[string, *Entry]
	clock   func() time.Time
}

// NewMemoryStore creates a memory tier holding at most capacity entries.
func NewMemoryStore(capacity int) (*MemoryStore, error) {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}

	entries, err := lru.NewWithEvict[string, *Entry](capacity, func(string, *Entry) {
		metrics.RecordCacheEviction()
	})
	if err != nil {
		return nil, err
	}

	return &MemoryStore{
		entries: entries,
		clock:   time.Now,
	}, nil
}

// Get returns the entry at key. Hard-expired entries report ErrNotFound but
// stay resident until capacity evicts them: Peek serves them as last-resort
// data while the circuit is open. Lookups refresh the LRU recency order.
// Entries are shared across concurrent readers, so Get never writes to them.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	entry, ok := s.entries.Get(key)
	if !ok {
		return nil, ErrNotFound
	}

	if entry.Expired(s.clock()) {
		return nil, ErrNotFound
	}

	return entry, nil
}

// Peek returns the entry at key without freshness checks and without
// touching the recency order. Used by the circuit-open fallback path, which
// prefers any data over none.
func (s *MemoryStore) Peek(key string) (*Entry, bool) {
	return s.entries.Peek(key)
}

// Set stores an entry at key.
func (s *MemoryStore) Set(_ context.Context, key string, entry *Entry) error {
	s.entries.Add(key, entry)
	return nil
}

// Delete removes a key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.entries.Remove(key)
	return nil
}

// DeletePrefix removes every key beginning with prefix and returns the
// number removed.
func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	removed := 0
	for _, key := range s.entries.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.entries.Remove(key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of live entries, counting expired ones that have
// not been touched since expiry.
func (s *MemoryStore) Len() int {
	return s.entries.Len()
}

// Purge drops every entry.
func (s *MemoryStore) Purge() {
	s.entries.Purge()
}
