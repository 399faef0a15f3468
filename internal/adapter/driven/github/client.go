// Package github implements the SearchClient port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"
	"golang.org/x/time/rate"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/starsweep/internal/domain/model"
	"github.com/ericfisherdev/starsweep/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SearchClient = (*Client)(nil)

const (
	// perPage is the search API's maximum page size.
	perPage = 100
	// lowWaterMark is the remaining-quota threshold below which the client
	// proactively waits for the rate window to reset instead of risking a
	// hard rejection.
	lowWaterMark = 5
	// defaultRemaining is assumed when the remaining-quota header is absent.
	// Failing open here means an unthrottled proxy or test server does not
	// stall the run.
	defaultRemaining = 30
	// maxThrottleWaits caps the wait-and-retry loop so a server that always
	// reports exhausted quota cannot hold a call forever.
	maxThrottleWaits = 32
)

const (
	headerRateRemaining = "X-RateLimit-Remaining"
	headerRateReset     = "X-RateLimit-Reset"
)

// Client implements the driven.SearchClient port using the go-github library.
type Client struct {
	gh             *gh.Client
	pacer          *rate.Limiter
	requestTimeout time.Duration

	// Clock hooks, replaceable in tests via WithClock.
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// Option customizes a Client.
type Option func(*Client)

// WithClock replaces the client's time source and sleep function. Tests use
// this to observe throttle waits without blocking.
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		c.now = now
		c.sleep = sleep
	}
}

// NewClient creates a new GitHub search client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
//
// searchInterval spaces consecutive search requests (the search API allows
// 30 requests per minute authenticated); requestTimeout bounds each attempt.
func NewClient(token string, searchInterval, requestTimeout time.Duration, opts ...Option) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	c := &Client{
		gh:             client,
		pacer:          rate.NewLimiter(rate.Every(searchInterval), 1),
		requestTimeout: requestTimeout,
		now:            time.Now,
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest
// server. Request pacing is disabled so tests control timing entirely through
// the clock hooks.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, opts ...Option) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	c := &Client{
		gh:    client,
		pacer: rate.NewLimiter(rate.Inf, 1),
		now:   time.Now,
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SearchRepositories fetches one page of repository search results for the
// given query, sorted by stars descending.
//
// The rate-limit protocol: after each attempt the remaining-quota header is
// inspected. Below lowWaterMark the client sleeps until one second past the
// advertised reset time and re-issues the identical request; the retried
// response is the one returned to the caller. All other failures are terminal
// for this call and are never retried here.
func (c *Client) SearchRepositories(ctx context.Context, query string, page int) (*model.SearchPage, error) {
	opts := &gh.SearchOptions{
		Sort:  "stars",
		Order: "desc",
		ListOptions: gh.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	for waits := 0; ; waits++ {
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		result, resp, err := c.search(ctx, query, opts)

		if remaining, resetAt, throttled := rateStatus(resp); throttled {
			if waits >= maxThrottleWaits {
				return nil, fmt.Errorf("searching repositories %q (page %d): quota not restored after %d waits", query, page, waits)
			}
			pause := resetAt.Sub(c.now()) + time.Second
			if pause < 0 {
				pause = 0
			}
			slog.Info("search quota low, waiting for reset",
				"remaining", remaining,
				"reset_at", resetAt,
				"pause", pause.Round(time.Second),
			)
			if sleepErr := c.sleep(ctx, pause); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}

		if err != nil {
			slog.Error("github search request failed", "query", query, "page", page, "error", err)
			return nil, fmt.Errorf("searching repositories %q (page %d): %w", query, page, err)
		}

		logRateLimit(resp, query, page, len(result.Repositories))

		repos := make([]model.Repository, 0, len(result.Repositories))
		for _, r := range result.Repositories {
			repos = append(repos, mapRepository(r))
		}

		return &model.SearchPage{
			Total:             result.GetTotal(),
			IncompleteResults: result.GetIncompleteResults(),
			Repositories:      repos,
		}, nil
	}
}

// search issues a single search attempt, bounded by the per-request timeout.
func (c *Client) search(ctx context.Context, query string, opts *gh.SearchOptions) (*gh.RepositoriesSearchResult, *gh.Response, error) {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}
	return c.gh.Search.Repositories(ctx, query, opts)
}

// rateStatus reads the primary rate-limit headers from a response. It reports
// throttled=true when the remaining quota is below lowWaterMark. Headers are
// parsed directly rather than through go-github's Rate struct, which reports
// zero when the headers are absent and would falsely trigger a wait.
func rateStatus(resp *gh.Response) (remaining int, resetAt time.Time, throttled bool) {
	if resp == nil || resp.Response == nil {
		return 0, time.Time{}, false
	}

	remaining = defaultRemaining
	if v := resp.Header.Get(headerRateRemaining); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			remaining = n
		}
	}
	if remaining >= lowWaterMark {
		return remaining, time.Time{}, false
	}

	if v := resp.Header.Get(headerRateReset); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			resetAt = time.Unix(epoch, 0)
		}
	}
	return remaining, resetAt, true
}

// mapRepository converts a go-github Repository to the domain projection.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapRepository(r *gh.Repository) model.Repository {
	return model.Repository{
		Name:            r.GetName(),
		FullName:        r.GetFullName(),
		StargazersCount: r.GetStargazersCount(),
		Language:        r.GetLanguage(),
		CreatedAt:       r.GetCreatedAt().Time,
	}
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, query string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github search call",
		"query", query,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)
}

// sleepContext blocks for d or until ctx is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
