package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/traceline/internal/common"
	"github.com/ternarybob/traceline/internal/interfaces"
	"github.com/ternarybob/traceline/internal/models"
)

// Store persists the watermark as the decimal string form of the id
// in a single text file. A missing file is equivalent to watermark 0.
type Store struct {
	path   string
	logger arbor.ILogger
}

// NewStore creates a file-backed checkpoint store.
func NewStore(logger arbor.ILogger, config *common.CheckpointConfig) (interfaces.CheckpointStore, error) {
	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	return &Store{
		path:   config.Path,
		logger: logger,
	}, nil
}

// Read returns the persisted watermark, or 0 when no checkpoint file
// exists yet.
func (s *Store) Read() (int64, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read checkpoint file %s: %w", s.path, err)
	}

	text := strings.TrimSpace(string(data))
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s contains %q", models.ErrCheckpointCorrupt, s.path, text)
	}

	return id, nil
}

// Write replaces the persisted watermark. The new value is written to
// a temporary file, synced, and renamed into place so a crash mid-write
// never leaves a truncated checkpoint behind.
func (s *Store) Write(id int64) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create checkpoint temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(strconv.FormatInt(id, 10)); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close checkpoint temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	s.logger.Debug().Int64("watermark", id).Str("path", s.path).Msg("Checkpoint persisted")
	return nil
}

// Close is a no-op for the file backend.
func (s *Store) Close() error {
	return nil
}
