package githubclient

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"hubgate/internal/domain/entity"
)

// MockClient is the development-mode implementation of Service. It serves
// deterministic generated data with no network, no cache, and no quota:
// the same repository name always yields the same commits, pull requests,
// and issues, which keeps dashboards and tests reproducible.
type MockClient struct {
	repos []entity.Repository
	now   func() time.Time
}

var _ Service = (*MockClient)(nil)

var mockRepoNames = []string{
	"acme/frontend",
	"acme/backend",
	"acme/infra",
	"acme/design-system",
	"acme/docs",
}

var mockLogins = []string{"alice", "bob", "carol", "dave", "erin"}

var mockLanguages = []string{"Go", "TypeScript", "Python", "Rust", "Ruby"}

// NewMockClient creates a mock client seeded with a fixed repository set.
func NewMockClient() *MockClient {
	m := &MockClient{now: time.Now}
	for i, fullName := range mockRepoNames {
		rng := seededRand(fullName)
		name := fullName[strings.IndexByte(fullName, '/')+1:]
		pushed := m.now().Add(-time.Duration(rng.Intn(72)) * time.Hour)
		m.repos = append(m.repos, entity.Repository{
			ID:              int64(1000 + i),
			Name:            name,
			FullName:        fullName,
			Private:         rng.Intn(2) == 0,
			Description:     fmt.Sprintf("Mock repository %s", name),
			DefaultBranch:   "main",
			Language:        mockLanguages[rng.Intn(len(mockLanguages))],
			StargazersCount: rng.Intn(500),
			ForksCount:      rng.Intn(80),
			OpenIssuesCount: rng.Intn(40),
			HTMLURL:         "https://github.com/" + fullName,
			Owner:           mockUser(rng),
			PushedAt:        &pushed,
		})
	}
	return m
}

// ListRepositories returns the fixed mock repository set.
func (m *MockClient) ListRepositories(_ context.Context) ([]entity.Repository, error) {
	out := make([]entity.Repository, len(m.repos))
	copy(out, m.repos)
	return out, nil
}

// GetRepository returns the mock repository with the given full name.
func (m *MockClient) GetRepository(_ context.Context, fullName string) (*entity.Repository, error) {
	for i := range m.repos {
		if m.repos[i].FullName == fullName {
			repo := m.repos[i]
			return &repo, nil
		}
	}
	return nil, fmt.Errorf("%w: /repos/%s", entity.ErrNotFound, fullName)
}

// ListCommits generates a stable commit history for the repository.
func (m *MockClient) ListCommits(_ context.Context, fullName string, since *time.Time) ([]entity.Commit, error) {
	rng := seededRand("commits:" + fullName)
	count := 5 + rng.Intn(20)
	base := m.now()

	commits := []entity.Commit{}
	for i := 0; i < count; i++ {
		authored := base.Add(-time.Duration(i*6+rng.Intn(5)) * time.Hour)
		if since != nil && authored.Before(*since) {
			continue
		}
		commits = append(commits, mockCommit(fullName, i, authored, rng))
	}
	return commits, nil
}

// GetCommit returns a stable commit for the given SHA.
func (m *MockClient) GetCommit(_ context.Context, fullName, sha string) (*entity.Commit, error) {
	commits, _ := m.ListCommits(context.Background(), fullName, nil)
	for i := range commits {
		if commits[i].SHA == sha {
			return &commits[i], nil
		}
	}
	return nil, fmt.Errorf("%w: /repos/%s/commits/%s", entity.ErrNotFound, fullName, sha)
}

// ListPullRequests generates stable pull requests filtered by state.
func (m *MockClient) ListPullRequests(_ context.Context, fullName, state string) ([]entity.PullRequest, error) {
	state = normalizeState(state)
	rng := seededRand("pulls:" + fullName)
	count := 3 + rng.Intn(10)
	base := m.now()

	pulls := []entity.PullRequest{}
	for i := 0; i < count; i++ {
		pr := mockPullRequest(fullName, i+1, base, rng)
		if state != "all" && pr.State != state {
			continue
		}
		pulls = append(pulls, pr)
	}
	return pulls, nil
}

// GetPullRequest returns a stable pull request by number.
func (m *MockClient) GetPullRequest(_ context.Context, fullName string, number int) (*entity.PullRequest, error) {
	pulls, _ := m.ListPullRequests(context.Background(), fullName, "all")
	for i := range pulls {
		if pulls[i].Number == number {
			return &pulls[i], nil
		}
	}
	return nil, fmt.Errorf("%w: /repos/%s/pulls/%d", entity.ErrNotFound, fullName, number)
}

// ListIssues generates stable issues filtered by state.
func (m *MockClient) ListIssues(_ context.Context, fullName, state string) ([]entity.Issue, error) {
	state = normalizeState(state)
	rng := seededRand("issues:" + fullName)
	count := 4 + rng.Intn(12)
	base := m.now()

	issues := []entity.Issue{}
	for i := 0; i < count; i++ {
		issue := mockIssue(fullName, i+1, base, rng)
		if state != "all" && issue.State != state {
			continue
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// GetIssue returns a stable issue by number.
func (m *MockClient) GetIssue(_ context.Context, fullName string, number int) (*entity.Issue, error) {
	issues, _ := m.ListIssues(context.Background(), fullName, "all")
	for i := range issues {
		if issues[i].Number == number {
			return &issues[i], nil
		}
	}
	return nil, fmt.Errorf("%w: /repos/%s/issues/%d", entity.ErrNotFound, fullName, number)
}

// RateLimit reports a generous synthetic quota.
func (m *MockClient) RateLimit(_ context.Context) (*entity.RateLimitStatus, error) {
	quota := entity.RateQuota{
		Limit:     5000,
		Used:      42,
		Remaining: 4958,
		Reset:     m.now().Add(time.Hour).Unix(),
	}
	return &entity.RateLimitStatus{
		Resources: entity.RateLimitResources{
			Core:    quota,
			Search:  entity.RateQuota{Limit: 30, Remaining: 30, Reset: quota.Reset},
			GraphQL: entity.RateQuota{Limit: 5000, Remaining: 5000, Reset: quota.Reset},
		},
		Rate: quota,
	}, nil
}

// InvalidateRepository is a no-op: the mock holds no cache.
func (m *MockClient) InvalidateRepository(_ context.Context, _ string) (int, error) {
	return 0, nil
}

// seededRand derives a deterministic generator from a string so mock data
// is stable across calls and processes.
func seededRand(seed string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	// #nosec G404 -- deterministic mock data, not security sensitive.
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func mockUser(rng *rand.Rand) *entity.User {
	login := mockLogins[rng.Intn(len(mockLogins))]
	return &entity.User{
		Login:     login,
		ID:        int64(100 + rng.Intn(900)),
		AvatarURL: "https://avatars.example.com/" + login,
		HTMLURL:   "https://github.com/" + login,
	}
}

func mockCommit(fullName string, index int, authored time.Time, rng *rand.Rand) entity.Commit {
	sha := fmt.Sprintf("%040x", rng.Uint64())
	user := mockUser(rng)
	author := entity.CommitAuthor{
		Name:  user.Login,
		Email: user.Login + "@example.com",
		Date:  authored,
	}
	return entity.Commit{
		SHA: sha,
		Commit: entity.CommitDetail{
			Message:   fmt.Sprintf("Mock commit %d for %s", index+1, fullName),
			Author:    author,
			Committer: author,
		},
		Author:  user,
		HTMLURL: fmt.Sprintf("https://github.com/%s/commit/%s", fullName, sha),
	}
}

func mockPullRequest(fullName string, number int, base time.Time, rng *rand.Rand) entity.PullRequest {
	created := base.Add(-time.Duration(number*24) * time.Hour)
	pr := entity.PullRequest{
		Number:    number,
		State:     "open",
		Title:     fmt.Sprintf("Mock pull request #%d", number),
		Body:      "Generated for development mode.",
		Draft:     rng.Intn(4) == 0,
		User:      mockUser(rng),
		HTMLURL:   fmt.Sprintf("https://github.com/%s/pull/%d", fullName, number),
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}
	if rng.Intn(2) == 0 {
		pr.State = "closed"
		closed := created.Add(48 * time.Hour)
		pr.ClosedAt = &closed
		if rng.Intn(3) > 0 {
			pr.MergedAt = &closed
		}
	}
	return pr
}

func mockIssue(fullName string, number int, base time.Time, rng *rand.Rand) entity.Issue {
	created := base.Add(-time.Duration(number*18) * time.Hour)
	issue := entity.Issue{
		Number:    number,
		State:     "open",
		Title:     fmt.Sprintf("Mock issue #%d", number),
		Body:      "Generated for development mode.",
		Comments:  rng.Intn(15),
		User:      mockUser(rng),
		HTMLURL:   fmt.Sprintf("https://github.com/%s/issues/%d", fullName, number),
		CreatedAt: created,
		UpdatedAt: created.Add(2 * time.Hour),
	}
	if rng.Intn(3) == 0 {
		issue.State = "closed"
		closed := created.Add(72 * time.Hour)
		issue.ClosedAt = &closed
	}
	if rng.Intn(4) == 0 {
		issue.Labels = []entity.Label{{Name: "bug", Color: "d73a4a"}}
	}
	return issue
}
