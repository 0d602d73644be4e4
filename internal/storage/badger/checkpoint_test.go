package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/traceline/internal/common"
	"github.com/ternarybob/traceline/internal/interfaces"
)

func setupBadgerStore(t *testing.T) interfaces.CheckpointStore {
	t.Helper()

	store, err := NewStore(arbor.NewLogger(), &common.CheckpointConfig{
		Type: "badger",
		Path: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestBadgerStore_ReadMissingIsZero(t *testing.T) {
	store := setupBadgerStore(t)

	watermark, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, int64(0), watermark)
}

func TestBadgerStore_WriteAndRead(t *testing.T) {
	store := setupBadgerStore(t)

	require.NoError(t, store.Write(123))

	watermark, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, int64(123), watermark)
}

func TestBadgerStore_WriteReplacesPriorValue(t *testing.T) {
	store := setupBadgerStore(t)

	require.NoError(t, store.Write(1))
	require.NoError(t, store.Write(2))

	watermark, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, int64(2), watermark)
}
