package circuitbreaker

import (
	"strings"
	"sync"
)

// Registry hands out circuit breakers keyed by upstream service. It enforces
// the one-breaker-per-service-key invariant without global state: construct
// one registry per process and inject it where breakers are needed.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
	defaults Config
}

// NewRegistry creates a registry whose breakers inherit the given defaults.
// The Name field of the defaults is ignored; each breaker is named after its
// service key.
func NewRegistry(defaults Config) *Registry {
	return &Registry{
		breakers: make(map[string]*CircuitBreaker),
		defaults: defaults,
	}
}

// Get returns the breaker for a service key, creating it on first use.
// Repeated calls with the same key return the same instance.
func (r *Registry) Get(serviceKey string) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[serviceKey]; ok {
		return cb
	}

	cfg := r.defaults
	cfg.Name = serviceKey
	cb := New(cfg)
	r.breakers[serviceKey] = cb
	return cb
}

// ServiceKeyFromPath derives a breaker key from an API path's resource
// segment. Sub-resources of a repository get their own key so a failing
// commits endpoint does not open the breaker for pull requests:
//
//	/user/repos                     -> github-api-repos
//	/repos/{owner}/{repo}           -> github-api-repos
//	/repos/{owner}/{repo}/commits   -> github-api-commits
//	/repos/{owner}/{repo}/pulls/42  -> github-api-pulls
//	/rate_limit                     -> github-api-rate_limit
func ServiceKeyFromPath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "github-api"
	}

	resource := segments[0]
	switch resource {
	case "user":
		if len(segments) > 1 {
			resource = segments[1]
		}
	case "repos":
		if len(segments) > 3 {
			resource = segments[3]
		}
	}

	return "github-api-" + resource
}
