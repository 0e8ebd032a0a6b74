// Package resilience provides reliability and fault tolerance patterns for the application.
// It includes implementations of circuit breakers and retry logic to keep the
// GitHub access layer dependable in the face of upstream failures.
//
// The package supports:
//   - Circuit breakers for GitHub API calls, keyed by upstream resource
//   - Retry logic with a fixed exponential backoff schedule
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.DefaultConfig("github-api-repos"))
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callGitHub()
//	})
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
//	    return performRequest()
//	})
package resilience
