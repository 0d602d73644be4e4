package badger

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/traceline/internal/common"
	"github.com/ternarybob/traceline/internal/interfaces"
)

const watermarkKey = "export"

// watermarkRecord is the stored checkpoint document.
type watermarkRecord struct {
	Key       string `badgerhold:"key"`
	LastID    int64
	UpdatedAt time.Time
}

// Store persists the watermark in a Badger database. Used where the
// file backend's rename-into-place durability is not available (for
// example network mounts).
type Store struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// NewStore opens (creating if needed) the Badger database at the
// configured path.
func NewStore(logger arbor.ILogger, config *common.CheckpointConfig) (interfaces.CheckpointStore, error) {
	if err := os.MkdirAll(config.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = nil // arbor is the only logger

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger checkpoint store: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("Badger checkpoint store initialized")

	return &Store{
		store:  store,
		logger: logger,
	}, nil
}

// Read returns the persisted watermark, or 0 when nothing has been
// exported yet.
func (s *Store) Read() (int64, error) {
	var record watermarkRecord
	err := s.store.Get(watermarkKey, &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	return record.LastID, nil
}

// Write replaces the persisted watermark.
func (s *Store) Write(id int64) error {
	record := watermarkRecord{
		Key:       watermarkKey,
		LastID:    id,
		UpdatedAt: time.Now(),
	}
	if err := s.store.Upsert(watermarkKey, &record); err != nil {
		return fmt.Errorf("failed to persist checkpoint: %w", err)
	}

	s.logger.Debug().Int64("watermark", id).Msg("Checkpoint persisted")
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
