package cache

import "context"

// NoopStore is a Store that holds nothing. It stands in for the persistent
// tier when Redis is not configured, leaving the memory tier as the only
// cache.
type NoopStore struct{}

var _ Store = NoopStore{}

func (NoopStore) Get(context.Context, string) (*Entry, error) { return nil, ErrNotFound }

func (NoopStore) Set(context.Context, string, *Entry) error { return nil }

func (NoopStore) Delete(context.Context, string) error { return nil }

func (NoopStore) DeletePrefix(context.Context, string) (int, error) { return 0, nil }
