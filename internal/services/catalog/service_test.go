package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/traceline/internal/models"
)

type fakeSource struct {
	actions []models.Action
	err     error
}

func (f *fakeSource) LoadActions(ctx context.Context) ([]models.Action, error) {
	return f.actions, f.err
}

func (f *fakeSource) RecordsAfter(ctx context.Context, watermark int64, limit int) ([]models.RawRecord, error) {
	return nil, nil
}

func (f *fakeSource) MeasurementsByProcess(ctx context.Context, processID int64) ([]models.Measurement, error) {
	return nil, nil
}

func (f *fakeSource) Close() error { return nil }

func TestLoad_PreservesCatalogOrder(t *testing.T) {
	src := &fakeSource{actions: []models.Action{
		{ID: 2, Name: "Torque", IsRanged: true},
		{ID: 1, Name: "Leak Test", IsRanged: false},
	}}

	actions, err := NewService(src, arbor.NewLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "Torque", actions[0].Name)
	assert.Equal(t, "Leak Test", actions[1].Name)
}

func TestLoad_SourceFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}

	_, err := NewService(src, arbor.NewLogger()).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrCatalogUnavailable))
}
