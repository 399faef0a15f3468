package driven

import (
	"context"

	"github.com/ericfisherdev/starsweep/internal/domain/model"
)

// SearchClient defines the driven port for the GitHub repository search API.
// Implementations own the single-page fetch and the rate-limit wait protocol;
// callers own window and page iteration.
type SearchClient interface {
	// SearchRepositories fetches one page of search results for the given
	// query. Pages are 1-based and capped at the API's maximum page size.
	// Implementations block and retry internally when the remaining rate
	// quota is critically low; any error returned is terminal for the call.
	SearchRepositories(ctx context.Context, query string, page int) (*model.SearchPage, error)
}
