package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	_ "modernc.org/sqlite"

	"github.com/ternarybob/traceline/internal/common"
)

// DB wraps the read-only connection to the manufacturing-test data
// source. Connect fails explicitly when the source is unreachable;
// callers never receive a nil connection to dereference later.
type DB struct {
	db     *sql.DB
	logger arbor.ILogger
	config *common.SourceConfig
}

// Connect opens the data source connection and verifies it.
func Connect(logger arbor.ILogger, config *common.SourceConfig) (*DB, error) {
	driver := config.Driver
	if driver == "" {
		driver = "sqlite"
	}

	db, err := sql.Open(driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open data source: %w", err)
	}

	// Reconnection policy lives in the database/sql pool; the pipeline
	// only ever sees query failures.
	db.SetConnMaxIdleTime(5 * time.Minute)

	if config.PingOnConnect {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to reach data source: %w", err)
		}
	}

	logger.Info().Str("driver", driver).Msg("Data source connected")

	return &DB{
		db:     db,
		logger: logger,
		config: config,
	}, nil
}

// Close closes the underlying connection pool.
func (s *DB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
