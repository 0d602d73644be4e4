package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/traceline/internal/common"
	"github.com/ternarybob/traceline/internal/interfaces"
	"github.com/ternarybob/traceline/internal/models"
	"github.com/ternarybob/traceline/internal/services/catalog"
	"github.com/ternarybob/traceline/internal/services/fetcher"
	"github.com/ternarybob/traceline/internal/services/poller"
	"github.com/ternarybob/traceline/internal/services/writer"
	"github.com/ternarybob/traceline/internal/source"
	"github.com/ternarybob/traceline/internal/storage"
)

// App holds all application components and dependencies. Construction
// is fail-fast: an unreachable source, an unreadable checkpoint, or
// an unavailable action catalog abort startup.
type App struct {
	Config     *common.Config
	Logger     arbor.ILogger
	Source     *source.DB
	Checkpoint interfaces.CheckpointStore
	Catalog    []models.Action
	Poller     *poller.Service
}

// New wires the pipeline together.
func New(ctx context.Context, config *common.Config, logger arbor.ILogger) (*App, error) {
	db, err := source.Connect(logger, &config.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to connect data source: %w", err)
	}

	checkpoint, err := storage.NewCheckpointStore(logger, config)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize checkpoint store: %w", err)
	}

	// Validate the persisted watermark now: a corrupt checkpoint is a
	// fatal startup condition requiring operator intervention, not
	// something to discover on the first cycle.
	watermark, err := checkpoint.Read()
	if err != nil {
		checkpoint.Close()
		db.Close()
		return nil, err
	}
	logger.Info().Int64("watermark", watermark).Msg("Resuming export")

	actions, err := catalog.NewService(db, logger).Load(ctx)
	if err != nil {
		checkpoint.Close()
		db.Close()
		return nil, err
	}

	csvWriter, err := writer.NewService(&config.CSV, logger)
	if err != nil {
		checkpoint.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize CSV writer: %w", err)
	}

	pollService := poller.NewService(
		checkpoint,
		fetcher.NewService(db, logger),
		csvWriter,
		actions,
		&config.Poll,
		logger,
	)

	return &App{
		Config:     config,
		Logger:     logger,
		Source:     db,
		Checkpoint: checkpoint,
		Catalog:    actions,
		Poller:     pollService,
	}, nil
}

// Run blocks in the poll loop until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return a.Poller.Run(ctx)
}

// Close releases all resources.
func (a *App) Close() {
	if a.Checkpoint != nil {
		if err := a.Checkpoint.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close checkpoint store")
		}
	}
	if a.Source != nil {
		if err := a.Source.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close data source")
		}
	}
}
