// Package csv implements the RecordSink port as a flat CSV writer.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ericfisherdev/starsweep/internal/domain/model"
	"github.com/ericfisherdev/starsweep/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RecordSink = (*Sink)(nil)

// header lists the projected columns, in output order. No index column.
var header = []string{"name", "full_name", "stargazers_count", "language", "created_at"}

// Sink serializes collected rows as CSV: one header row, then one row per
// record in slice order. Output is deterministic for identical input.
type Sink struct {
	w io.Writer
}

// NewSink creates a Sink writing to w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// WriteAll writes the header followed by every row, preserving order.
func (s *Sink) WriteAll(ctx context.Context, rows []model.Repository) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cw := csv.NewWriter(s.w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for i, row := range rows {
		record := []string{
			row.Name,
			row.FullName,
			strconv.Itoa(row.StargazersCount),
			row.Language,
			row.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv output: %w", err)
	}
	return nil
}
