package interfaces

import (
	"context"

	"github.com/ternarybob/traceline/internal/models"
)

// Fetcher produces pivoted flat rows for records past the watermark.
type Fetcher interface {
	// Fetch returns up to pageSize rows with id > watermark in
	// ascending id order. An empty result is a valid non-error
	// outcome. Any query failure wraps models.ErrFetchFailed and the
	// partial batch is discarded.
	Fetch(ctx context.Context, watermark int64, catalog []models.Action, pageSize int) ([]*models.FlatRow, error)
}

// RowWriter appends flat rows to month-partitioned output files.
type RowWriter interface {
	// Append groups rows by the calendar month of their created_at
	// value and appends each group to its partition file, creating the
	// file with a header on first write. I/O failures wrap
	// models.ErrWriteFailed.
	Append(rows []*models.FlatRow) error
}
