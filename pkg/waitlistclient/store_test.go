package waitlistclient

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSubscriptionStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.toml")
	store := NewFileSubscriptionStore(path)
	store.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }

	subscribed, err := store.Load()
	require.NoError(t, err)
	assert.False(t, subscribed, "missing file means not subscribed")

	require.NoError(t, store.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "subscribed = true")
	assert.Contains(t, string(data), "2026-03-14T09:30:00Z")

	subscribed, err = NewFileSubscriptionStore(path).Load()
	require.NoError(t, err)
	assert.True(t, subscribed)

	require.NoError(t, store.Clear())
	subscribed, err = store.Load()
	require.NoError(t, err)
	assert.False(t, subscribed)

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}

func TestFileSubscriptionStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, os.WriteFile(path, []byte("subscribed = = yes"), 0o600))

	_, err := NewFileSubscriptionStore(path).Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse state file")
}

func TestMemorySubscriptionStore(t *testing.T) {
	store := &MemorySubscriptionStore{}

	subscribed, _ := store.Load()
	assert.False(t, subscribed)

	require.NoError(t, store.Save())
	subscribed, _ = store.Load()
	assert.True(t, subscribed)

	require.NoError(t, store.Clear())
	subscribed, _ = store.Load()
	assert.False(t, subscribed)
}
