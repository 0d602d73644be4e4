package interfaces

// CheckpointStore persists the export watermark: the id of the most
// recently successfully written record. One writer, one reader, never
// concurrent.
type CheckpointStore interface {
	// Read returns the persisted watermark, or 0 when no checkpoint
	// exists yet. Returns models.ErrCheckpointCorrupt (wrapped) when
	// the persisted content is not a valid integer.
	Read() (int64, error)

	// Write durably persists id as the new watermark, replacing any
	// prior value. The caller must not advance past id before Write
	// returns.
	Write(id int64) error

	// Close releases any resources held by the store.
	Close() error
}
