package cas_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/droidnet/internal/adapters/cas"
	"go.trai.ch/droidnet/internal/core/domain"
)

func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := cas.NewStore()

	info := domain.BuildInfo{
		TaskName:   "compileDebugDotNet",
		InputHash:  "abc",
		OutputHash: "def",
		InputCount: 12,
		RunID:      "8c1f2a9e-0000-4000-8000-000000000000",
		// JSON round trips lose the monotonic clock reading.
		Timestamp: time.Now().Truncate(time.Second).UTC(),
	}

	require.NoError(t, store.Put(root, info))

	got, err := store.Get(root, "compileDebugDotNet")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, info, *got)

	entries, err := os.ReadDir(filepath.Join(root, domain.DefaultStorePath()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestStore_Overwrite(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := cas.NewStore()

	require.NoError(t, store.Put(root, domain.BuildInfo{TaskName: "cleanDotNet", InputHash: "1"}))
	require.NoError(t, store.Put(root, domain.BuildInfo{TaskName: "cleanDotNet", InputHash: "2"}))

	got, err := store.Get(root, "cleanDotNet")
	require.NoError(t, err)
	assert.Equal(t, "2", got.InputHash)
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()

	got, err := cas.NewStore().Get(t.TempDir(), "missing-task")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_GetCorrupt(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := cas.NewStore()
	require.NoError(t, store.Put(root, domain.BuildInfo{TaskName: "task-2"}))

	dir := filepath.Join(root, domain.DefaultStorePath())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("{ invalid json"), 0o600))

	_, err = store.Get(root, "task-2")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrStoreUnmarshalFailed.Error())
}
