// Package entity defines the GitHub domain types consumed by the access layer.
// The structs model the subset of the REST v3 payloads the dashboards actually
// read; unknown fields are ignored during decoding.
package entity

import "time"

// User is the owner or author attached to repositories, commits, pull
// requests and issues.
type User struct {
	Login     string `json:"login"`
	ID        int64  `json:"id"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// Repository is a GitHub repository as returned by /user/repos and
// /repos/{full_name}.
type Repository struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	FullName        string     `json:"full_name"`
	Private         bool       `json:"private"`
	Description     string     `json:"description"`
	DefaultBranch   string     `json:"default_branch"`
	Language        string     `json:"language"`
	StargazersCount int        `json:"stargazers_count"`
	ForksCount      int        `json:"forks_count"`
	OpenIssuesCount int        `json:"open_issues_count"`
	HTMLURL         string     `json:"html_url"`
	Owner           *User      `json:"owner,omitempty"`
	PushedAt        *time.Time `json:"pushed_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// CommitAuthor is the git-level author/committer record nested inside a
// commit payload.
type CommitAuthor struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

// CommitDetail is the nested "commit" object of the REST commit payload.
type CommitDetail struct {
	Message   string       `json:"message"`
	Author    CommitAuthor `json:"author"`
	Committer CommitAuthor `json:"committer"`
}

// Commit is a single commit as returned by /repos/{full_name}/commits.
type Commit struct {
	SHA     string       `json:"sha"`
	Commit  CommitDetail `json:"commit"`
	Author  *User        `json:"author,omitempty"`
	HTMLURL string       `json:"html_url"`
}

// PullRequest is a pull request as returned by /repos/{full_name}/pulls.
type PullRequest struct {
	Number    int        `json:"number"`
	State     string     `json:"state"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Draft     bool       `json:"draft"`
	User      *User      `json:"user,omitempty"`
	HTMLURL   string     `json:"html_url"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// IssueLink marks an issue payload that actually represents a pull request.
// The issues endpoint returns both; callers filter on this field when they
// want issues only.
type IssueLink struct {
	URL string `json:"url"`
}

// Issue is an issue as returned by /repos/{full_name}/issues.
type Issue struct {
	Number      int        `json:"number"`
	State       string     `json:"state"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Comments    int        `json:"comments"`
	User        *User      `json:"user,omitempty"`
	Labels      []Label    `json:"labels,omitempty"`
	PullRequest *IssueLink `json:"pull_request,omitempty"`
	HTMLURL     string     `json:"html_url"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
}

// Label is an issue label.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// RateQuota is the per-resource rate limit window reported by GitHub, both in
// the /rate_limit payload and in the x-ratelimit-* response headers.
type RateQuota struct {
	Limit     int   `json:"limit"`
	Used      int   `json:"used"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}

// ResetTime returns the reset point as a time.Time.
func (q RateQuota) ResetTime() time.Time {
	return time.Unix(q.Reset, 0)
}

// RateLimitResources groups the per-resource quotas GitHub reports.
type RateLimitResources struct {
	Core    RateQuota `json:"core"`
	Search  RateQuota `json:"search"`
	GraphQL RateQuota `json:"graphql"`
}

// RateLimitStatus is the full rate limit snapshot. Rate mirrors Core, which
// is how the REST /rate_limit endpoint reports it.
type RateLimitStatus struct {
	Resources RateLimitResources `json:"resources"`
	Rate      RateQuota          `json:"rate"`
}
