package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"hubgate/internal/observability/metrics"
)

// Default freshness windows for the two tiers.
const (
	DefaultMemoryTTL        = 5 * time.Minute
	DefaultMemoryStaleAfter = 2 * time.Minute
	DefaultRedisTTL         = 15 * time.Minute
	DefaultRedisStaleAfter  = 5 * time.Minute
)

// Loader produces the origin value for a key on a miss or a refresh.
type Loader func(ctx context.Context) (json.RawMessage, error)

// MultiLevel composes the memory and persistent tiers behind one read path:
// memory, then Redis, then the loader. Fresh hits return immediately; stale
// hits return immediately and revalidate in the background; misses invoke
// the loader synchronously (deduplicated across concurrent callers) and
// write through to both tiers.
type MultiLevel struct {
	memory     *MemoryStore
	persistent Store
	memOpts    Options
	persOpts   Options
	logger     *slog.Logger
	clock      func() time.Time

	// loads collapses concurrent synchronous misses for the same key
	// into a single origin call.
	loads singleflight.Group

	// refreshing guards background revalidation: one in-flight refresh
	// per key, later staleness observations piggyback on it.
	mu         sync.Mutex
	refreshing map[string]struct{}

	// refreshDone, when set, is invoked after each background refresh
	// settles. Tests use it to synchronize with detached revalidation.
	refreshDone func(key string, err error)
}

// MultiLevelConfig configures the composition. Zero-value freshness windows
// fall back to the package defaults.
type MultiLevelConfig struct {
	Memory     Options
	Persistent Options
	Logger     *slog.Logger
}

// NewMultiLevel composes the given tiers.
func NewMultiLevel(memory *MemoryStore, persistent Store, cfg MultiLevelConfig) *MultiLevel {
	if cfg.Memory.TTL <= 0 {
		cfg.Memory.TTL = DefaultMemoryTTL
	}
	if cfg.Memory.StaleAfter <= 0 {
		cfg.Memory.StaleAfter = DefaultMemoryStaleAfter
	}
	if cfg.Persistent.TTL <= 0 {
		cfg.Persistent.TTL = DefaultRedisTTL
	}
	if cfg.Persistent.StaleAfter <= 0 {
		cfg.Persistent.StaleAfter = DefaultRedisStaleAfter
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &MultiLevel{
		memory:     memory,
		persistent: persistent,
		memOpts:    cfg.Memory,
		persOpts:   cfg.Persistent,
		logger:     cfg.Logger,
		clock:      time.Now,
		refreshing: make(map[string]struct{}),
	}
}

// Get implements the read path for key. The loader is invoked synchronously
// only when both tiers miss; its failure propagates to the caller with
// nothing cached. A stale hit in either tier answers immediately and kicks
// off a single detached refresh for the key.
func (m *MultiLevel) Get(ctx context.Context, key string, loader Loader) (json.RawMessage, error) {
	now := m.clock()

	if entry, err := m.memory.Get(ctx, key); err == nil {
		if entry.Stale(now) {
			metrics.RecordCacheLookup("memory", "stale_hit")
			m.refreshAsync(key, loader)
		} else {
			metrics.RecordCacheLookup("memory", "hit")
		}
		return entry.Data, nil
	}
	metrics.RecordCacheLookup("memory", "miss")

	entry, err := m.persistent.Get(ctx, key)
	switch {
	case err == nil:
		// Promote into memory so the next read stays local. The
		// promoted entry keeps the shorter memory freshness windows
		// but never outlives the persistent copy.
		m.promote(ctx, key, entry, now)

		if entry.Stale(now) {
			metrics.RecordCacheLookup("redis", "stale_hit")
			m.refreshAsync(key, loader)
		} else {
			metrics.RecordCacheLookup("redis", "hit")
		}
		return entry.Data, nil

	case err == ErrNotFound:
		metrics.RecordCacheLookup("redis", "miss")

	default:
		// A broken persistent tier degrades to origin reads rather
		// than failing the caller.
		metrics.RecordCacheLookup("redis", "error")
		m.logger.Warn("persistent cache read failed, falling through to origin",
			slog.String("key", key),
			slog.Any("error", err))
	}

	data, err, _ := m.loads.Do(key, func() (interface{}, error) {
		data, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		m.storeBoth(ctx, key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return data.(json.RawMessage), nil
}

// Peek returns the raw entry for key ignoring staleness, checking memory
// first (including entries past hard expiry that still sit in the LRU) and
// the persistent tier second. Used by the circuit-open fallback path.
func (m *MultiLevel) Peek(ctx context.Context, key string) (*Entry, bool) {
	if entry, ok := m.memory.Peek(key); ok {
		return entry, true
	}
	if entry, err := m.persistent.Get(ctx, key); err == nil {
		return entry, true
	}
	return nil, false
}

// Set writes data through to both tiers.
func (m *MultiLevel) Set(ctx context.Context, key string, data json.RawMessage) {
	m.storeBoth(ctx, key, data)
}

// Invalidate removes exactly key from both tiers and returns the number of
// tiers that held it. Unlike InvalidatePrefix it cannot touch sibling keys
// that merely extend key.
func (m *MultiLevel) Invalidate(ctx context.Context, key string) (int, error) {
	removed := 0
	if _, ok := m.memory.Peek(key); ok {
		removed++
	}
	memErr := m.memory.Delete(ctx, key)

	if _, err := m.persistent.Get(ctx, key); err == nil {
		removed++
	}
	persErr := m.persistent.Delete(ctx, key)

	metrics.RecordCacheInvalidations(removed)
	if memErr != nil {
		return removed, memErr
	}
	return removed, persErr
}

// InvalidatePrefix purges every key beginning with prefix from both tiers
// and returns the number of keys removed across them. Used after mutations
// to keep derived collections consistent.
func (m *MultiLevel) InvalidatePrefix(ctx context.Context, prefix string) (int, error) {
	memRemoved, _ := m.memory.DeletePrefix(ctx, prefix)

	persRemoved, err := m.persistent.DeletePrefix(ctx, prefix)
	total := memRemoved + persRemoved
	metrics.RecordCacheInvalidations(total)
	if err != nil {
		return total, err
	}
	return total, nil
}

// refreshAsync starts a detached revalidation for key unless one is already
// in flight. Refresh errors are logged and dropped; the caller that observed
// the staleness already has an answer.
func (m *MultiLevel) refreshAsync(key string, loader Loader) {
	m.mu.Lock()
	if _, inFlight := m.refreshing[key]; inFlight {
		m.mu.Unlock()
		return
	}
	m.refreshing[key] = struct{}{}
	m.mu.Unlock()

	go func() {
		// Detached from the observing caller: the refresh must not be
		// canceled when that caller returns.
		data, err := loader(context.Background())
		if err == nil {
			m.storeBoth(context.Background(), key, data)
		} else {
			m.logger.Warn("background cache refresh failed",
				slog.String("key", key),
				slog.Any("error", err))
		}
		metrics.RecordCacheRefresh(err == nil)

		m.mu.Lock()
		delete(m.refreshing, key)
		m.mu.Unlock()

		if m.refreshDone != nil {
			m.refreshDone(key, err)
		}
	}()
}

// promote writes a persistent-tier entry into memory with memory freshness
// windows, capped at the persistent entry's own expiry and staleness marks.
func (m *MultiLevel) promote(ctx context.Context, key string, entry *Entry, now time.Time) {
	promoted := NewEntry(entry.Data, now, m.memOpts)
	if promoted.ExpiresAt.After(entry.ExpiresAt) {
		promoted.ExpiresAt = entry.ExpiresAt
	}
	if promoted.StaleAt.After(entry.StaleAt) {
		promoted.StaleAt = entry.StaleAt
	}
	if err := m.memory.Set(ctx, key, promoted); err != nil {
		m.logger.Warn("memory cache promotion failed",
			slog.String("key", key),
			slog.Any("error", err))
	}
}

func (m *MultiLevel) storeBoth(ctx context.Context, key string, data json.RawMessage) {
	now := m.clock()

	if err := m.memory.Set(ctx, key, NewEntry(data, now, m.memOpts)); err != nil {
		m.logger.Warn("memory cache write failed",
			slog.String("key", key),
			slog.Any("error", err))
	}
	if err := m.persistent.Set(ctx, key, NewEntry(data, now, m.persOpts)); err != nil {
		m.logger.Warn("persistent cache write failed",
			slog.String("key", key),
			slog.Any("error", err))
	}
}
