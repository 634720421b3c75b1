package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/artpar/popcorn/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetSet(t *testing.T) {
	store, err := NewInMemory()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	// Missing key
	_, ok, err := store.Get(ctx, "watched")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "watched", `[{"imdbID":"a"}]`))

	value, ok, err := store.Get(ctx, "watched")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"imdbID":"a"}]`, value)

	// Overwrite
	require.NoError(t, store.Set(ctx, "watched", `[]`))
	value, _, err = store.Get(ctx, "watched")
	require.NoError(t, err)
	assert.Equal(t, `[]`, value)
}

func TestStore_Remove(t *testing.T) {
	store, err := NewInMemory()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", "v"))
	require.NoError(t, store.Remove(ctx, "k"))

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing again is fine
	assert.NoError(t, store.Remove(ctx, "k"))
}

func TestStore_Keys(t *testing.T) {
	store, err := NewInMemory()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, store.Set(ctx, "b", "2"))
	require.NoError(t, store.Set(ctx, "a", "1"))

	keys, err = store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestStore_EmptyKey(t *testing.T) {
	store, err := NewInMemory()
	require.NoError(t, err)
	defer store.Close()

	assert.ErrorIs(t, store.Set(context.Background(), "", "v"), kv.ErrEmptyKey)
}

func TestStore_Closed(t *testing.T) {
	store, err := NewInMemory()
	require.NoError(t, err)
	require.NoError(t, store.Close())

	ctx := context.Background()
	_, _, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, kv.ErrStoreClosed)
	assert.ErrorIs(t, store.Set(ctx, "k", "v"), kv.ErrStoreClosed)
	assert.ErrorIs(t, store.Remove(ctx, "k"), kv.ErrStoreClosed)

	// Double close is a no-op
	assert.NoError(t, store.Close())
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "popcorn.db")
	ctx := context.Background()

	store, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "watched", `["x"]`))
	require.NoError(t, store.Close())

	reopened, err := New(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get(ctx, "watched")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["x"]`, value)
}
