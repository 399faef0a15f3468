package driven

import (
	"context"

	"github.com/ericfisherdev/starsweep/internal/domain/model"
)

// RecordSink defines the driven port for the output collaborator that
// serializes a finished collection run. Row order must be preserved.
type RecordSink interface {
	WriteAll(ctx context.Context, rows []model.Repository) error
}
