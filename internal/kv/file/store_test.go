package file

import (
	"context"
	"testing"

	"github.com/artpar/popcorn/internal/kv"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := NewWithFs(fs, "/data")
	require.NoError(t, err)
	return store, fs
}

func TestStore_GetSet(t *testing.T) {
	store, _ := newMemStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "watched")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "watched", `[1,2]`))

	value, ok, err := store.Get(ctx, "watched")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, value)
}

func TestStore_EscapesKeys(t *testing.T) {
	store, fs := newMemStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a/b c", "v"))

	exists, err := afero.Exists(fs, "/data/a%2Fb%20c.rec")
	require.NoError(t, err)
	assert.True(t, exists)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b c"}, keys)
}

func TestStore_NoTempFileLeftBehind(t *testing.T) {
	store, fs := newMemStore(t)
	require.NoError(t, store.Set(context.Background(), "k", "v"))

	exists, err := afero.Exists(fs, "/data/k.rec.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_Remove(t *testing.T) {
	store, _ := newMemStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v"))
	require.NoError(t, store.Remove(ctx, "k"))
	assert.NoError(t, store.Remove(ctx, "k"))

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Closed(t *testing.T) {
	store, _ := newMemStore(t)
	require.NoError(t, store.Close())

	_, _, err := store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, kv.ErrStoreClosed)
	assert.ErrorIs(t, store.Set(context.Background(), "k", "v"), kv.ErrStoreClosed)
}

func TestStore_SharedFilesystem(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx := context.Background()

	first, err := NewWithFs(fs, "/data")
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "watched", "persisted"))

	second, err := NewWithFs(fs, "/data")
	require.NoError(t, err)
	value, ok, err := second.Get(ctx, "watched")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", value)
}
