package interfaces

import (
	"context"

	"github.com/ternarybob/traceline/internal/models"
)

// RecordSource is the relational collaborator. The pipeline depends
// only on these three query shapes, not on the backing dialect.
type RecordSource interface {
	// LoadActions returns the action catalog in catalog sequence order.
	LoadActions(ctx context.Context) ([]models.Action, error)

	// RecordsAfter returns records with id greater than watermark,
	// ascending by id, capped at limit.
	RecordsAfter(ctx context.Context, watermark int64, limit int) ([]models.RawRecord, error)

	// MeasurementsByProcess returns all measurements for a process id,
	// in source return order.
	MeasurementsByProcess(ctx context.Context, processID int64) ([]models.Measurement, error)

	// Close closes the underlying connection.
	Close() error
}
