package circuitbreaker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetReturnsSameInstance(t *testing.T) {
	reg := NewRegistry(DefaultConfig(""))

	a := reg.Get("github-api-repos")
	b := reg.Get("github-api-repos")
	c := reg.Get("github-api-commits")

	require.NotNil(t, a)
	assert.Same(t, a, b, "same key must yield the same breaker")
	assert.NotSame(t, a, c, "different keys get independent breakers")
	assert.Equal(t, "github-api-repos", a.Name())
	assert.Equal(t, "github-api-commits", c.Name())
}

func TestRegistry_BreakersInheritDefaults(t *testing.T) {
	defaults := Config{
		FailureThreshold: 2,
		CoolDown:         time.Minute,
		MaxRequests:      1,
	}
	reg := NewRegistry(defaults)

	cb := reg.Get("github-api-issues")

	// Two consecutive failures trip a breaker built from these defaults.
	for i := 0; i < 2; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, assert.AnError
		})
	}
	assert.True(t, cb.IsOpen())

	// The sibling breaker is unaffected.
	assert.False(t, reg.Get("github-api-pulls").IsOpen())
}

func TestRegistry_ConcurrentGet(t *testing.T) {
	reg := NewRegistry(DefaultConfig(""))

	var wg sync.WaitGroup
	results := make([]*CircuitBreaker, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = reg.Get("github-api-repos")
		}(i)
	}
	wg.Wait()

	for i := 1; i < 20; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestServiceKeyFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{path: "/user/repos", expected: "github-api-repos"},
		{path: "/repos/acme/backend", expected: "github-api-repos"},
		{path: "/repos/acme/backend/commits", expected: "github-api-commits"},
		{path: "/repos/acme/backend/commits/abc123", expected: "github-api-commits"},
		{path: "/repos/acme/backend/pulls", expected: "github-api-pulls"},
		{path: "/repos/acme/backend/pulls/42", expected: "github-api-pulls"},
		{path: "/repos/acme/backend/issues", expected: "github-api-issues"},
		{path: "/rate_limit", expected: "github-api-rate_limit"},
		{path: "/", expected: "github-api"},
		{path: "", expected: "github-api"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, ServiceKeyFromPath(tt.path))
		})
	}
}
