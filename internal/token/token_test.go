package token

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlotRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "token")
	slot := New(path)

	require.NoError(t, slot.Set("abc123"))
	require.Equal(t, "abc123", slot.Get())

	// A fresh slot over the same path sees the persisted value.
	other := New(path)
	require.NoError(t, other.Load())
	require.Equal(t, "abc123", other.Get())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSlotLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	slot := New(filepath.Join(t.TempDir(), "never-written"))
	require.NoError(t, slot.Load())
	require.Empty(t, slot.Get())
}

func TestSlotClearRemovesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "token")
	slot := New(path)
	require.NoError(t, slot.Set("abc123"))

	require.NoError(t, slot.Clear())
	require.Empty(t, slot.Get())
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// Clearing an already-clear slot is fine.
	require.NoError(t, slot.Clear())
}
