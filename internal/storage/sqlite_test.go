package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tilebar/internal/logger"
)

func newSQLiteStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(context.Background(), path, 20*time.Millisecond, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t, filepath.Join(t.TempDir(), "tilebar.db"))

	_, err := store.Get(ctx, "tilebar.seen.notion")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "tilebar.seen.notion", []byte(`{"a":"b"}`)))
	require.NoError(t, store.Set(ctx, "tilebar.seen.notion", []byte(`{"c":"d"}`)))

	data, err := store.Get(ctx, "tilebar.seen.notion")
	require.NoError(t, err)
	assert.Equal(t, `{"c":"d"}`, string(data))

	require.NoError(t, store.Delete(ctx, "tilebar.seen.notion"))
	_, err = store.Get(ctx, "tilebar.seen.notion")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "tilebar.seen.notion", []byte(`{}`)))
	data, err = store.Get(ctx, "tilebar.seen.notion")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestSQLiteStoreWatchAcrossConnections(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tilebar.db")

	writer := newSQLiteStore(t, path)
	reader := newSQLiteStore(t, path)

	ch, cancel := reader.Watch("tilebar.layout.i3")
	defer cancel()

	require.NoError(t, writer.Set(ctx, "tilebar.layout.i3", []byte(`{"topMargin":1}`)))
	change := waitChange(t, ch)
	assert.Equal(t, `{"topMargin":1}`, string(change.Value))

	require.NoError(t, writer.Delete(ctx, "tilebar.layout.i3"))
	change = waitChange(t, ch)
	assert.True(t, change.Deleted)
}

func TestSQLiteStoreDoesNotReplayHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tilebar.db")

	first := newSQLiteStore(t, path)
	require.NoError(t, first.Set(ctx, "tilebar.cleanup.last", []byte(`"2024-01-01T00:00:00Z"`)))

	second := newSQLiteStore(t, path)
	ch, cancel := second.Watch("tilebar.cleanup.last")
	defer cancel()

	select {
	case change := <-ch:
		t.Fatalf("unexpected replay %q", change.Value)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()

	file, err := Open(ctx, Config{Backend: BackendFile, Dir: t.TempDir()}, logger.Nop())
	require.NoError(t, err)
	defer file.Close()
	assert.IsType(t, &FileStore{}, file)

	db, err := Open(ctx, Config{Backend: BackendSQLite, Dir: t.TempDir(), Poll: time.Second}, logger.Nop())
	require.NoError(t, err)
	defer db.Close()
	assert.IsType(t, &SQLiteStore{}, db)

	_, err = Open(ctx, Config{Backend: "etcd", Dir: t.TempDir()}, logger.Nop())
	assert.Error(t, err)
}
