// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/starsweep/internal/domain/model"
	"github.com/ericfisherdev/starsweep/internal/domain/port/driven"
)

const (
	// maxPageDepth is the upstream hard cap on enumerable result pages per
	// query. Combined with the page size, a single query can surface at most
	// 1000 results; windows with more matches lose the excess.
	maxPageDepth = 10
	// pageSize is the search API's maximum page size, used to decide whether
	// a window that hit the page-depth ceiling actually dropped results.
	pageSize = 100
)

// CollectStats summarizes a collection run.
type CollectStats struct {
	PagesFetched int
	// WindowsTruncated counts windows abandoned at the page-depth ceiling
	// while results likely remained, surfacing the upstream 1000-result cap.
	WindowsTruncated int
	// WindowsAborted counts windows abandoned because a page fetch failed.
	WindowsAborted int
}

// CollectService walks the repository search API across a historical range in
// fixed-width windows, paginating each window and accumulating projected rows
// up to a target count.
type CollectService struct {
	client    driven.SearchClient
	baseQuery string
	maxRepos  int
	startDate time.Time
	now       func() time.Time
}

// NewCollectService creates a CollectService. startDate is the lower bound of
// the historical range; the upper bound is the wall clock at collection time.
func NewCollectService(client driven.SearchClient, baseQuery string, maxRepos int, startDate time.Time) *CollectService {
	return &CollectService{
		client:    client,
		baseQuery: baseQuery,
		maxRepos:  maxRepos,
		startDate: startDate,
		now:       time.Now,
	}
}

// Collect runs the window/page loops until the target row count is reached or
// the historical range is exhausted. Rows are returned in fetch order: windows
// chronologically, items within a window in the upstream's stars-descending
// order. A failed page fetch abandons only its window; only cancellation of
// the run context ends the whole run. Rows accumulated before any error are
// always returned.
func (s *CollectService) Collect(ctx context.Context) ([]model.Repository, CollectStats, error) {
	var (
		rows  []model.Repository
		stats CollectStats
	)

	start := s.now()
	windows := model.PartitionRange(s.startDate, s.now())

	for _, window := range windows {
		if len(rows) >= s.maxRepos {
			break
		}

		query := s.baseQuery + " " + window.DateQualifier()
		aborted, err := s.collectWindow(ctx, query, window, &rows, &stats)
		if err != nil {
			// Only run-context cancellation propagates; anything else was
			// already absorbed as a window abort.
			return rows, stats, err
		}
		if aborted {
			stats.WindowsAborted++
		}
	}

	slog.Info("collection finished",
		"rows", len(rows),
		"pages_fetched", stats.PagesFetched,
		"windows_truncated", stats.WindowsTruncated,
		"windows_aborted", stats.WindowsAborted,
		"duration", s.now().Sub(start).Round(time.Millisecond),
	)

	return rows, stats, nil
}

// collectWindow paginates one window, appending projected rows until the
// window is exhausted, the page-depth ceiling is hit, or the target count is
// reached. It reports aborted=true when a page fetch failed while the run
// context was still live. Error values alone cannot distinguish a per-request
// timeout from run cancellation (both surface as context errors), so the run
// context itself decides which failures are fatal.
func (s *CollectService) collectWindow(ctx context.Context, query string, window model.SearchWindow, rows *[]model.Repository, stats *CollectStats) (bool, error) {
	for page := 1; page <= maxPageDepth; page++ {
		if len(*rows) >= s.maxRepos {
			return false, nil
		}

		slog.Debug("fetching page", "window", window.DateQualifier(), "page", page)

		result, err := s.client.SearchRepositories(ctx, query, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return false, ctxErr
			}
			slog.Error("abandoning window after failed page fetch",
				"window", window.DateQualifier(),
				"page", page,
				"error", err,
			)
			return true, nil
		}

		stats.PagesFetched++

		if len(result.Repositories) == 0 {
			return false, nil
		}

		for _, repo := range result.Repositories {
			*rows = append(*rows, repo)
			if len(*rows) >= s.maxRepos {
				return false, nil
			}
		}

		if page == maxPageDepth && result.Total > maxPageDepth*pageSize {
			stats.WindowsTruncated++
			slog.Warn("window hit page-depth ceiling, excess results dropped",
				"window", window.DateQualifier(),
				"total_matches", result.Total,
			)
		}
	}
	return false, nil
}
