package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/traceline/internal/common"
	"github.com/ternarybob/traceline/internal/interfaces"
	"github.com/ternarybob/traceline/internal/storage/badger"
	"github.com/ternarybob/traceline/internal/storage/file"
)

// NewCheckpointStore creates a checkpoint store based on config.
// The file backend is the default.
func NewCheckpointStore(logger arbor.ILogger, config *common.Config) (interfaces.CheckpointStore, error) {
	switch config.Checkpoint.Type {
	case "", "file":
		return file.NewStore(logger, &config.Checkpoint)
	case "badger":
		return badger.NewStore(logger, &config.Checkpoint)
	default:
		return nil, fmt.Errorf("unsupported checkpoint type: %s", config.Checkpoint.Type)
	}
}
