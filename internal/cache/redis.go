package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the shared, persistent cache tier. Entries are serialized to
// JSON and stored with Redis' native per-key expiry, so hard expiry is
// enforced by the store itself; StaleAt survives inside the payload for the
// multi-level read path to inspect.
type RedisStore struct {
	client *redis.Client
	clock  func() time.Time
}

// NewRedisStore creates a Redis-backed tier on the given client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		clock:  time.Now,
	}
}

// Get retrieves and deserializes the entry at key.
// Returns ErrNotFound if the key doesn't exist (redis.Nil) or has expired.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cache: failed to get key %s: %w", key, err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, fmt.Errorf("cache: failed to unmarshal value for key %s: %w", key, err)
	}

	return &entry, nil
}

// Set serializes and stores an entry with a Redis expiry matching the
// entry's hard expiry.
func (s *RedisStore) Set(ctx context.Context, key string, entry *Entry) error {
	ttl := entry.ExpiresAt.Sub(s.clock())
	if ttl <= 0 {
		// Nothing to store; an already-expired entry would linger as a
		// key with no expiry.
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache: failed to marshal value for key %s: %w", key, err)
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache: failed to set key %s: %w", key, err)
	}

	return nil
}

// Delete removes a key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache: failed to delete key %s: %w", key, err)
	}
	return nil
}

// DeletePrefix removes every key beginning with prefix using SCAN, so large
// keyspaces are walked without blocking the server. Returns the number of
// keys removed.
func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	removed := 0
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("cache: failed to delete key %s: %w", iter.Val(), err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("cache: scan failed for prefix %s: %w", prefix, err)
	}
	return removed, nil
}
