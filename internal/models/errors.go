package models

import "errors"

// Error kinds surfaced by the pipeline. Startup errors (corrupt
// checkpoint, unavailable catalog) abort the process; fetch and write
// failures are contained at the poll-loop boundary and retried on the
// next cycle.
var (
	// ErrCheckpointCorrupt indicates the persisted watermark exists but
	// does not parse as an integer. Requires operator intervention.
	ErrCheckpointCorrupt = errors.New("checkpoint corrupt")

	// ErrCatalogUnavailable indicates the action catalog query failed.
	ErrCatalogUnavailable = errors.New("action catalog unavailable")

	// ErrFetchFailed indicates an incremental fetch cycle failed; the
	// whole batch is discarded and re-fetched on the next cycle.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrWriteFailed indicates a CSV append failed; the watermark must
	// not advance past the failed batch.
	ErrWriteFailed = errors.New("write failed")
)
