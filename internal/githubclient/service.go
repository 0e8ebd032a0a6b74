// Package githubclient exposes the typed GitHub operations the rest of the
// application consumes. The real client composes the request scheduler,
// circuit breakers, rate-limit tracking, and the two-tier cache; a mock
// client with the same interface serves development mode. Callers never
// branch on which one they hold.
package githubclient

import (
	"context"
	"time"

	"hubgate/internal/domain/entity"
)

// Service is the façade interface implemented by both the real and the mock
// client.
//
// List-returning methods never fail: on irrecoverable errors they degrade to
// an empty slice and a logged warning, so UI code does not have to
// special-case "no data yet". Single-entity methods surface typed errors
// (entity.ErrNotFound, entity.ErrUnavailable, *entity.UpstreamError) the
// caller must handle.
type Service interface {
	// ListRepositories returns the repositories visible to the
	// authenticated user.
	ListRepositories(ctx context.Context) ([]entity.Repository, error)

	// GetRepository returns a single repository by "owner/name".
	GetRepository(ctx context.Context, fullName string) (*entity.Repository, error)

	// ListCommits returns commits for a repository, optionally limited to
	// those pushed after since.
	ListCommits(ctx context.Context, fullName string, since *time.Time) ([]entity.Commit, error)

	// GetCommit returns a single commit by SHA.
	GetCommit(ctx context.Context, fullName, sha string) (*entity.Commit, error)

	// ListPullRequests returns pull requests filtered by state
	// ("open", "closed", "all"). An empty state defaults to "open".
	ListPullRequests(ctx context.Context, fullName, state string) ([]entity.PullRequest, error)

	// GetPullRequest returns a single pull request by number.
	GetPullRequest(ctx context.Context, fullName string, number int) (*entity.PullRequest, error)

	// ListIssues returns issues filtered by state ("open", "closed",
	// "all"). An empty state defaults to "open".
	ListIssues(ctx context.Context, fullName, state string) ([]entity.Issue, error)

	// GetIssue returns a single issue by number.
	GetIssue(ctx context.Context, fullName string, number int) (*entity.Issue, error)

	// RateLimit returns the current rate limit status.
	RateLimit(ctx context.Context) (*entity.RateLimitStatus, error)

	// InvalidateRepository purges every cached collection derived from a
	// repository. Called after mutations so stale listings do not outlive
	// the change. Returns the number of cache keys removed.
	InvalidateRepository(ctx context.Context, fullName string) (int, error)
}
