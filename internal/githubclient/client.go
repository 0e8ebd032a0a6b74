package githubclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"hubgate/internal/cache"
	"hubgate/internal/domain/entity"
	"hubgate/internal/observability/metrics"
	"hubgate/internal/ratelimit"
	"hubgate/internal/resilience/circuitbreaker"
	"hubgate/internal/resilience/retry"
	"hubgate/internal/scheduler"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com"

// maxResponseBytes bounds response bodies read into memory.
const maxResponseBytes = 10 << 20

// Options wires the client's collaborators. All fields except Logger and
// HTTPClient are required.
type Options struct {
	// BaseURL overrides the GitHub endpoint (testing, GHE installs).
	BaseURL string

	// HTTPClient performs the actual requests. Defaults to a client with
	// a 30 second timeout.
	HTTPClient *http.Client

	// Tokens supplies the bearer token. The token is resolved lazily on
	// first use and kept for the life of the client; a failed resolution
	// aborts only the call that tried it.
	Tokens oauth2.TokenSource

	// Scheduler serializes outbound work.
	Scheduler *scheduler.Scheduler

	// Breakers hands out per-resource circuit breakers.
	Breakers *circuitbreaker.Registry

	// Cache is the two-tier response cache.
	Cache *cache.MultiLevel

	// Tracker records the rate limit snapshot from response headers.
	Tracker *ratelimit.Tracker

	// Pacer smooths outbound request bursts.
	Pacer *ratelimit.Pacer

	// Retry configures the backoff schedule for transient failures.
	Retry retry.Config

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client is the production implementation of Service. Every outbound call
// flows scheduler -> circuit breaker -> rate limiter -> HTTP, and every read
// goes through the multi-level cache in front of that pipeline.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	sched      *scheduler.Scheduler
	breakers   *circuitbreaker.Registry
	cache      *cache.MultiLevel
	tracker    *ratelimit.Tracker
	pacer      *ratelimit.Pacer
	retryCfg   retry.Config
	logger     *slog.Logger

	tokenMu sync.Mutex
	token   string
}

var _ Service = (*Client)(nil)

// NewClient creates the production client from its collaborators.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.Retry.Schedule) == 0 {
		opts.Retry = retry.DefaultConfig()
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		tokens:     opts.Tokens,
		sched:      opts.Scheduler,
		breakers:   opts.Breakers,
		cache:      opts.Cache,
		tracker:    opts.Tracker,
		pacer:      opts.Pacer,
		retryCfg:   opts.Retry,
		logger:     opts.Logger,
	}
}

// ListRepositories returns the repositories visible to the authenticated user.
func (c *Client) ListRepositories(ctx context.Context) ([]entity.Repository, error) {
	repos := []entity.Repository{}
	c.getList(ctx, cache.BuildKey("repos"), "/user/repos", &repos)
	return repos, nil
}

// GetRepository returns a single repository by "owner/name".
func (c *Client) GetRepository(ctx context.Context, fullName string) (*entity.Repository, error) {
	var repo entity.Repository
	key := cache.BuildKey("repo", fullName)
	if err := c.getEntity(ctx, key, "/repos/"+fullName, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// ListCommits returns commits for a repository, optionally limited to those
// pushed after since.
func (c *Client) ListCommits(ctx context.Context, fullName string, since *time.Time) ([]entity.Commit, error) {
	path := "/repos/" + fullName + "/commits"
	keyParts := []string{fullName}
	if since != nil {
		stamp := since.UTC().Format(time.RFC3339)
		path += "?since=" + stamp
		keyParts = append(keyParts, stamp)
	}

	commits := []entity.Commit{}
	c.getList(ctx, cache.BuildKey("commits", keyParts...), path, &commits)
	return commits, nil
}

// GetCommit returns a single commit by SHA.
func (c *Client) GetCommit(ctx context.Context, fullName, sha string) (*entity.Commit, error) {
	var commit entity.Commit
	key := cache.BuildKey("commit", fullName, sha)
	if err := c.getEntity(ctx, key, "/repos/"+fullName+"/commits/"+sha, &commit); err != nil {
		return nil, err
	}
	return &commit, nil
}

// ListPullRequests returns pull requests filtered by state.
func (c *Client) ListPullRequests(ctx context.Context, fullName, state string) ([]entity.PullRequest, error) {
	state = normalizeState(state)
	path := "/repos/" + fullName + "/pulls?state=" + state

	pulls := []entity.PullRequest{}
	c.getList(ctx, cache.BuildKey("pulls", fullName, state), path, &pulls)
	return pulls, nil
}

// GetPullRequest returns a single pull request by number.
func (c *Client) GetPullRequest(ctx context.Context, fullName string, number int) (*entity.PullRequest, error) {
	var pull entity.PullRequest
	key := cache.BuildKey("pull", fullName, strconv.Itoa(number))
	if err := c.getEntity(ctx, key, "/repos/"+fullName+"/pulls/"+strconv.Itoa(number), &pull); err != nil {
		return nil, err
	}
	return &pull, nil
}

// ListIssues returns issues filtered by state.
func (c *Client) ListIssues(ctx context.Context, fullName, state string) ([]entity.Issue, error) {
	state = normalizeState(state)
	path := "/repos/" + fullName + "/issues?state=" + state

	issues := []entity.Issue{}
	c.getList(ctx, cache.BuildKey("issues", fullName, state), path, &issues)
	return issues, nil
}

// GetIssue returns a single issue by number.
func (c *Client) GetIssue(ctx context.Context, fullName string, number int) (*entity.Issue, error) {
	var issue entity.Issue
	key := cache.BuildKey("issue", fullName, strconv.Itoa(number))
	if err := c.getEntity(ctx, key, "/repos/"+fullName+"/issues/"+strconv.Itoa(number), &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// RateLimit fetches the current quota from /rate_limit, updates the tracked
// snapshot, and returns it. The endpoint is not cached: its whole point is a
// live answer. When the circuit is open the last tracked snapshot is
// returned instead of an error.
func (c *Client) RateLimit(ctx context.Context) (*entity.RateLimitStatus, error) {
	data, err := c.scheduled(ctx, scheduler.PriorityLow, "/rate_limit")
	if err != nil {
		if circuitbreaker.IsCircuitOpen(err) {
			metrics.RecordBreakerFallback("cached")
			status := c.tracker.Status()
			return &status, nil
		}
		return nil, c.normalizeError(err, "/rate_limit")
	}

	var status entity.RateLimitStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("decoding rate limit payload: %w", err)
	}

	c.tracker.Update(ratelimit.ResourceCore, status.Resources.Core)
	c.tracker.Update(ratelimit.ResourceSearch, status.Resources.Search)
	c.tracker.Update(ratelimit.ResourceGraphQL, status.Resources.GraphQL)
	return &status, nil
}

// InvalidateRepository purges every cached collection derived from a
// repository from both tiers.
func (c *Client) InvalidateRepository(ctx context.Context, fullName string) (int, error) {
	total := 0
	var firstErr error
	record := func(n int, err error) {
		total += n
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// The repository entry and the unbounded commit list are stored under
	// keys that end at fullName. A prefix match on those would also purge
	// sibling repositories whose name extends fullName, such as "acme/web"
	// swallowing "acme/website", so they are removed by exact key.
	record(c.cache.Invalidate(ctx, cache.BuildKey("repo", fullName)))
	record(c.cache.Invalidate(ctx, cache.BuildKey("commits", fullName)))

	for _, kind := range []string{"commits", "commit", "pulls", "pull", "issues", "issue"} {
		record(c.cache.InvalidatePrefix(ctx, kind+":"+fullName+":"))
	}
	return total, firstErr
}

// getEntity runs the cached read path for a single-entity endpoint. Breaker
// open conditions fall back to raw cached data when present and
// entity.ErrUnavailable otherwise; every other failure surfaces typed.
func (c *Client) getEntity(ctx context.Context, key, path string, v interface{}) error {
	data, err := c.cache.Get(ctx, key, c.loader(scheduler.PriorityHigh, path))
	if err == nil {
		return json.Unmarshal(data, v)
	}

	if circuitbreaker.IsCircuitOpen(err) {
		if entry, ok := c.cache.Peek(ctx, key); ok {
			if uerr := json.Unmarshal(entry.Data, v); uerr == nil {
				metrics.RecordBreakerFallback("cached")
				c.logger.Warn("circuit open, serving cached data",
					slog.String("key", key))
				return nil
			}
		}
		metrics.RecordBreakerFallback("unavailable")
		return fmt.Errorf("%w: %s", entity.ErrUnavailable, path)
	}

	return c.normalizeError(err, path)
}

// getList runs the cached read path for a list endpoint. Irrecoverable
// failures leave v untouched (an empty slice) and log a warning: a degraded
// empty listing is a legitimate answer where an empty single entity is not.
func (c *Client) getList(ctx context.Context, key, path string, v interface{}) {
	data, err := c.cache.Get(ctx, key, c.loader(scheduler.PriorityMedium, path))
	if err == nil {
		uerr := json.Unmarshal(data, v)
		if uerr == nil {
			return
		}
		err = fmt.Errorf("decoding cached payload for %s: %w", key, uerr)
	}

	if circuitbreaker.IsCircuitOpen(err) {
		if entry, ok := c.cache.Peek(ctx, key); ok {
			if uerr := json.Unmarshal(entry.Data, v); uerr == nil {
				metrics.RecordBreakerFallback("cached")
				c.logger.Warn("circuit open, serving cached data",
					slog.String("key", key))
				return
			}
		}
		metrics.RecordBreakerFallback("empty")
		c.logger.Warn("circuit open with no cached data, degrading to empty result",
			slog.String("key", key))
		return
	}

	c.logger.Warn("list request failed, degrading to empty result",
		slog.String("key", key),
		slog.Any("error", c.normalizeError(err, path)))
}

// loader adapts a path into the cache's Loader contract: a miss or refresh
// submits the HTTP call through the scheduler.
func (c *Client) loader(priority scheduler.Priority, path string) cache.Loader {
	return func(ctx context.Context) (json.RawMessage, error) {
		return c.scheduled(ctx, priority, path)
	}
}

// scheduled submits the request pipeline for path as a single scheduler job.
func (c *Client) scheduled(ctx context.Context, priority scheduler.Priority, path string) (json.RawMessage, error) {
	v, err := c.sched.Submit(ctx, priority, func(jobCtx context.Context) (interface{}, error) {
		return c.doRequest(jobCtx, path)
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

// doRequest runs one request through its resource's circuit breaker, with
// rate-limit-aware retry inside.
func (c *Client) doRequest(ctx context.Context, path string) (json.RawMessage, error) {
	breaker := c.breakers.Get(circuitbreaker.ServiceKeyFromPath(trimQuery(path)))

	res, err := breaker.Execute(func() (interface{}, error) {
		var body json.RawMessage
		err := retry.Do(ctx, c.retryCfg, func() error {
			b, ferr := c.fetchOnce(ctx, path)
			if ferr != nil {
				return ferr
			}
			body = b
			return nil
		})
		if err != nil {
			return nil, err
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(json.RawMessage), nil
}

// fetchOnce performs a single HTTP attempt: resolve token, pace, honor the
// tracked rate limit window, call GitHub, and record the fresh window from
// the response headers.
func (c *Client) fetchOnce(ctx context.Context, path string) (json.RawMessage, error) {
	token, err := c.accessToken()
	if err != nil {
		return nil, err
	}

	if err := c.pacer.Allow(ctx); err != nil {
		return nil, fmt.Errorf("pacing outbound request: %w", err)
	}

	resource := resourceForPath(path)
	if err := c.tracker.Wait(ctx, resource); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Authorization", "token "+token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(resource, 0, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()

	c.tracker.UpdateFromHeaders(resource, resp.Header)
	metrics.RecordAPIRequest(resource, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response for %s: %w", path, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil

	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: GitHub rejected the token for %s", entity.ErrUnauthorized, path)

	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("x-ratelimit-remaining") == "0":
		quota, _ := c.tracker.Quota(resource)
		return nil, &retry.RateLimitError{ResetAt: quota.ResetTime()}

	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", entity.ErrNotFound, path)

	default:
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    truncate(string(body), 200),
		}
	}
}

// accessToken resolves the bearer token lazily and caches it on success.
// A failed resolution is not cached, so the next call retries it.
func (c *Client) accessToken() (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" {
		return c.token, nil
	}
	if c.tokens == nil {
		return "", fmt.Errorf("%w: no token source configured", entity.ErrUnauthorized)
	}

	tok, err := c.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("%w: resolving access token: %v", entity.ErrUnauthorized, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: token source returned an empty token", entity.ErrUnauthorized)
	}

	c.token = tok.AccessToken
	return c.token, nil
}

// normalizeError maps pipeline errors onto the domain taxonomy. Sentinel
// errors and context cancellation pass through untouched.
func (c *Client) normalizeError(err error, path string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, entity.ErrNotFound) ||
		errors.Is(err, entity.ErrUnauthorized) ||
		errors.Is(err, entity.ErrRateLimited) ||
		errors.Is(err, entity.ErrUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var rlErr *retry.RateLimitError
	if errors.As(err, &rlErr) {
		return fmt.Errorf("%w: window resets at %s", entity.ErrRateLimited, rlErr.ResetAt.Format(time.RFC3339))
	}

	var httpErr *retry.HTTPError
	if errors.As(err, &httpErr) {
		return &entity.UpstreamError{
			StatusCode: httpErr.StatusCode,
			Path:       path,
			Message:    httpErr.Message,
		}
	}

	return &entity.NetworkError{Err: err}
}

func normalizeState(state string) string {
	switch state {
	case "open", "closed", "all":
		return state
	default:
		return "open"
	}
}

// resourceForPath maps an API path onto the quota resource it consumes.
func resourceForPath(path string) string {
	if strings.HasPrefix(path, "/search") {
		return ratelimit.ResourceSearch
	}
	return ratelimit.ResourceCore
}

func trimQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
