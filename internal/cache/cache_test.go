package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntry_Freshness(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	entry := NewEntry(json.RawMessage(`{"id":1}`), now, Options{
		TTL:        5 * time.Minute,
		StaleAfter: 2 * time.Minute,
	})

	tests := []struct {
		name    string
		at      time.Time
		expired bool
		stale   bool
	}{
		{name: "fresh", at: now.Add(time.Minute), expired: false, stale: false},
		{name: "exactly at stale mark", at: now.Add(2 * time.Minute), expired: false, stale: true},
		{name: "stale window", at: now.Add(3 * time.Minute), expired: false, stale: true},
		{name: "exactly at expiry", at: now.Add(5 * time.Minute), expired: true, stale: false},
		{name: "past expiry", at: now.Add(10 * time.Minute), expired: true, stale: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, entry.Expired(tt.at))
			assert.Equal(t, tt.stale, entry.Stale(tt.at))
		})
	}
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "repos", BuildKey("repos"))
	assert.Equal(t, "repo:acme/backend", BuildKey("repo", "acme/backend"))
	assert.Equal(t, "commit:acme/backend:abc123", BuildKey("commit", "acme/backend", "abc123"))
	assert.Equal(t, "pulls:acme/backend:open", BuildKey("pulls", "acme/backend", "open"))
}
