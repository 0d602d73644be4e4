package catalog

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/traceline/internal/interfaces"
	"github.com/ternarybob/traceline/internal/models"
)

// Service loads the action catalog. The catalog is loaded once per
// process lifetime and is immutable afterwards; a changed catalog
// requires a restart.
type Service struct {
	source interfaces.RecordSource
	logger arbor.ILogger
}

// NewService creates a catalog service.
func NewService(source interfaces.RecordSource, logger arbor.ILogger) *Service {
	return &Service{
		source: source,
		logger: logger,
	}
}

// Load executes the catalog query once. Failure wraps
// models.ErrCatalogUnavailable and is fatal at startup.
func (s *Service) Load(ctx context.Context) ([]models.Action, error) {
	actions, err := s.source.LoadActions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCatalogUnavailable, err)
	}

	ranged := 0
	for _, action := range actions {
		if action.IsRanged {
			ranged++
		}
	}

	s.logger.Info().
		Int("actions", len(actions)).
		Int("ranged", ranged).
		Msg("Action catalog loaded")

	return actions, nil
}
