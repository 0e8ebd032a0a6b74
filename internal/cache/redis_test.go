package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_SetGet(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	now := time.Now()
	entry := NewEntry(json.RawMessage(`{"full_name":"acme/backend"}`), now, Options{
		TTL:        15 * time.Minute,
		StaleAfter: 5 * time.Minute,
	})
	require.NoError(t, store.Set(ctx, "repo:acme/backend", entry))

	got, err := store.Get(ctx, "repo:acme/backend")
	require.NoError(t, err)
	assert.JSONEq(t, `{"full_name":"acme/backend"}`, string(got.Data))
	assert.WithinDuration(t, entry.StaleAt, got.StaleAt, time.Second,
		"staleness mark must survive the round trip")
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := newTestRedisStore(t)

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_TTLEnforcedByRedis(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	entry := NewEntry(json.RawMessage(`{}`), time.Now(), Options{
		TTL:        15 * time.Minute,
		StaleAfter: 5 * time.Minute,
	})
	require.NoError(t, store.Set(ctx, "key", entry))

	mr.FastForward(16 * time.Minute)

	_, err := store.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrNotFound, "redis expiry should drop the key")
}

func TestRedisStore_SetAlreadyExpiredIsNoop(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	entry := &Entry{
		Data:      json.RawMessage(`{}`),
		ExpiresAt: time.Now().Add(-time.Minute),
		StaleAt:   time.Now().Add(-2 * time.Minute),
	}
	require.NoError(t, store.Set(ctx, "key", entry))
	assert.False(t, mr.Exists("key"))
}

func TestRedisStore_GetCorruptPayload(t *testing.T) {
	store, mr := newTestRedisStore(t)

	require.NoError(t, mr.Set("key", "not json"))

	_, err := store.Get(context.Background(), "key")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	entry := NewEntry(json.RawMessage(`{}`), time.Now(), Options{TTL: time.Hour, StaleAfter: time.Minute})
	require.NoError(t, store.Set(ctx, "key", entry))
	require.NoError(t, store.Delete(ctx, "key"))

	_, err := store.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "key"))
}

func TestRedisStore_DeletePrefix(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	opts := Options{TTL: time.Hour, StaleAfter: time.Minute}

	keys := []string{
		"pulls:acme/backend:open",
		"pulls:acme/backend:closed",
		"pull:acme/backend:42",
		"issues:acme/backend:open",
	}
	for _, key := range keys {
		require.NoError(t, store.Set(ctx, key, NewEntry(json.RawMessage(`{}`), time.Now(), opts)))
	}

	removed, err := store.DeletePrefix(ctx, "pulls:acme/backend")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = store.Get(ctx, "pull:acme/backend:42")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "issues:acme/backend:open")
	assert.NoError(t, err)
}

func TestNoopStore(t *testing.T) {
	store := NoopStore{}
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", NewEntry(json.RawMessage(`{}`), time.Now(), Options{TTL: time.Hour})))

	_, err := store.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err := store.DeletePrefix(ctx, "key")
	require.NoError(t, err)
	assert.Zero(t, removed)
}
