package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/traceline/internal/common"
	"github.com/ternarybob/traceline/internal/interfaces"
	"github.com/ternarybob/traceline/internal/models"
)

// Service runs the poll loop: read watermark, fetch a batch, write
// it, advance the watermark, wait. A failed cycle is logged and the
// loop proceeds; a single bad cycle never terminates the process.
type Service struct {
	checkpoint interfaces.CheckpointStore
	fetcher    interfaces.Fetcher
	writer     interfaces.RowWriter
	catalog    []models.Action
	config     *common.PollConfig
	logger     arbor.ILogger
	cycleMu    sync.Mutex // cycles never overlap, also under cron scheduling
}

// NewService creates a poller wired to its collaborators.
func NewService(
	checkpoint interfaces.CheckpointStore,
	fetcher interfaces.Fetcher,
	writer interfaces.RowWriter,
	catalog []models.Action,
	config *common.PollConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		checkpoint: checkpoint,
		fetcher:    fetcher,
		writer:     writer,
		catalog:    catalog,
		config:     config,
		logger:     logger,
	}
}

// Run blocks until ctx is cancelled. When a cron schedule is
// configured, cycles fire on it; otherwise a fixed interval ticker
// drives the loop with one immediate cycle at startup. Cancellation
// is observed between cycles; the cycle in flight always finishes.
func (s *Service) Run(ctx context.Context) error {
	if s.config.Schedule != "" {
		return s.runScheduled(ctx)
	}
	return s.runInterval(ctx)
}

func (s *Service) runInterval(ctx context.Context) error {
	interval := time.Duration(s.config.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info().
		Str("interval", interval.String()).
		Int("page_size", s.config.PageSize).
		Msg("Poll loop started")

	s.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Poll loop stopped")
			return nil
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

func (s *Service) runScheduled(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(s.config.Schedule, func() {
		s.RunCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid poll schedule %q: %w", s.config.Schedule, err)
	}

	c.Start()
	s.logger.Info().
		Str("schedule", s.config.Schedule).
		Int("page_size", s.config.PageSize).
		Msg("Poll loop started (cron schedule)")

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info().Msg("Poll loop stopped")
	return nil
}

// RunCycle executes one fetch+write cycle. Every error is contained
// here: logged with full detail, then dropped so the next cycle runs.
func (s *Service) RunCycle(ctx context.Context) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	cycleID := uuid.New().String()[:8]
	if err := s.cycle(ctx, cycleID); err != nil {
		s.logger.Error().
			Str("cycle", cycleID).
			Err(err).
			Msg("Poll cycle failed; batch will be retried next interval")
	}
}

func (s *Service) cycle(ctx context.Context, cycleID string) error {
	watermark, err := s.checkpoint.Read()
	if err != nil {
		return fmt.Errorf("failed to read watermark: %w", err)
	}

	rows, err := s.fetcher.Fetch(ctx, watermark, s.catalog, s.config.PageSize)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		s.logger.Info().
			Str("cycle", cycleID).
			Int64("watermark", watermark).
			Msg("No new records")
		return nil
	}

	if err := s.writer.Append(rows); err != nil {
		// Watermark stays at its pre-cycle value: the same batch is
		// re-fetched and re-attempted next cycle (at-least-once).
		return err
	}

	lastID, err := batchLastID(rows)
	if err != nil {
		return err
	}
	if err := s.checkpoint.Write(lastID); err != nil {
		return fmt.Errorf("failed to persist watermark %d: %w", lastID, err)
	}

	s.logger.Info().
		Str("cycle", cycleID).
		Int("records", len(rows)).
		Int64("watermark", lastID).
		Msg("Batch exported")

	return nil
}

// batchLastID returns the id of the last row in the batch, which
// becomes the new watermark.
func batchLastID(rows []*models.FlatRow) (int64, error) {
	value, ok := rows[len(rows)-1].Get("id")
	if !ok {
		return 0, fmt.Errorf("batch row missing id column")
	}
	id, ok := value.(int64)
	if !ok {
		return 0, fmt.Errorf("batch row id has unexpected type %T", value)
	}
	return id, nil
}
