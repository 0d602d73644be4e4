package fetcher

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/traceline/internal/interfaces"
	"github.com/ternarybob/traceline/internal/models"
)

// Service fetches records past the watermark and pivots each record's
// measurements into a flat row.
type Service struct {
	source interfaces.RecordSource
	logger arbor.ILogger
}

// NewService creates a fetcher service.
func NewService(source interfaces.RecordSource, logger arbor.ILogger) *Service {
	return &Service{
		source: source,
		logger: logger,
	}
}

// Fetch returns up to pageSize flat rows with id > watermark in
// ascending id order. The batch is all-or-nothing: any query failure
// wraps models.ErrFetchFailed and no partial rows are returned.
func (s *Service) Fetch(ctx context.Context, watermark int64, catalog []models.Action, pageSize int) ([]*models.FlatRow, error) {
	records, err := s.source.RecordsAfter(ctx, watermark, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrFetchFailed, err)
	}

	rows := make([]*models.FlatRow, 0, len(records))
	for _, record := range records {
		var measurements []models.Measurement
		if record.ProcessID != nil {
			measurements, err = s.source.MeasurementsByProcess(ctx, *record.ProcessID)
			if err != nil {
				return nil, fmt.Errorf("%w: record %d: %v", models.ErrFetchFailed, record.ID, err)
			}
		}
		rows = append(rows, flatten(record, measurements, catalog))
	}

	return rows, nil
}
