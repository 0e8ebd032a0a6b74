package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommit_DecodeNestedAuthor(t *testing.T) {
	payload := `{
		"sha": "6dcb09b5b57875f334f61aebed695e2e4193db5e",
		"commit": {
			"message": "Fix all the bugs",
			"author": {
				"name": "Monalisa Octocat",
				"email": "support@github.com",
				"date": "2011-04-14T16:00:49Z"
			},
			"committer": {
				"name": "Monalisa Octocat",
				"email": "support@github.com",
				"date": "2011-04-14T16:00:49Z"
			}
		},
		"author": {
			"login": "octocat",
			"id": 1,
			"avatar_url": "https://github.com/images/error/octocat_happy.gif",
			"html_url": "https://github.com/octocat"
		},
		"html_url": "https://github.com/octocat/Hello-World/commit/6dcb09b5b57875f334f61aebed695e2e4193db5e"
	}`

	var commit Commit
	require.NoError(t, json.Unmarshal([]byte(payload), &commit))

	assert.Equal(t, "6dcb09b5b57875f334f61aebed695e2e4193db5e", commit.SHA)
	assert.Equal(t, "Fix all the bugs", commit.Commit.Message)
	assert.Equal(t, "Monalisa Octocat", commit.Commit.Author.Name)
	assert.Equal(t, time.Date(2011, 4, 14, 16, 0, 49, 0, time.UTC), commit.Commit.Author.Date)
	require.NotNil(t, commit.Author)
	assert.Equal(t, "octocat", commit.Author.Login)
}

func TestIssue_PullRequestMarker(t *testing.T) {
	payload := `{
		"number": 1347,
		"state": "open",
		"title": "Found a bug",
		"pull_request": {"url": "https://api.github.com/repos/octocat/Hello-World/pulls/1347"},
		"created_at": "2011-04-22T13:33:48Z",
		"updated_at": "2011-04-22T13:33:48Z"
	}`

	var issue Issue
	require.NoError(t, json.Unmarshal([]byte(payload), &issue))
	require.NotNil(t, issue.PullRequest, "issues endpoint marks PRs with a pull_request object")

	var plain Issue
	require.NoError(t, json.Unmarshal([]byte(`{"number": 2, "state": "open"}`), &plain))
	assert.Nil(t, plain.PullRequest)
}

func TestRateQuota_ResetTime(t *testing.T) {
	quota := RateQuota{Limit: 5000, Remaining: 4999, Reset: 1372700873}
	assert.Equal(t, time.Unix(1372700873, 0), quota.ResetTime())
}

func TestRateLimitStatus_Decode(t *testing.T) {
	payload := `{
		"resources": {
			"core": {"limit": 5000, "used": 1, "remaining": 4999, "reset": 1372700873},
			"search": {"limit": 30, "used": 12, "remaining": 18, "reset": 1372697452},
			"graphql": {"limit": 5000, "used": 7, "remaining": 4993, "reset": 1372700389}
		},
		"rate": {"limit": 5000, "used": 1, "remaining": 4999, "reset": 1372700873}
	}`

	var status RateLimitStatus
	require.NoError(t, json.Unmarshal([]byte(payload), &status))

	assert.Equal(t, 4999, status.Resources.Core.Remaining)
	assert.Equal(t, 18, status.Resources.Search.Remaining)
	assert.Equal(t, 4993, status.Resources.GraphQL.Remaining)
	assert.Equal(t, status.Resources.Core, status.Rate, "rate mirrors the core resource")
}
