package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/artpar/popcorn/internal/config"
	"github.com/artpar/popcorn/internal/kv"
	"github.com/artpar/popcorn/internal/kv/file"
	"github.com/artpar/popcorn/internal/kv/sqlite"
	"github.com/artpar/popcorn/internal/movie"
	"github.com/artpar/popcorn/internal/omdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMovies struct {
	results []movie.Summary
	details movie.Details
}

func (f *fakeMovies) Search(ctx context.Context, term string) ([]movie.Summary, error) {
	return f.results, nil
}

func (f *fakeMovies) Details(ctx context.Context, id string) (movie.Details, error) {
	return f.details, nil
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("uses supplied collaborators", func(t *testing.T) {
		store := kv.NewMemory()
		movies := &fakeMovies{}
		a, err := New(ctx, WithStore(store), WithMovies(movies))
		require.NoError(t, err)
		defer a.Close()

		assert.Same(t, store, a.Store())
		assert.Same(t, movies, a.Movies())
		assert.NotNil(t, a.Watched())
		assert.NotNil(t, a.Keys())
		assert.NotNil(t, a.Logger())
		assert.Equal(t, 3, a.Config().Search.MinLength)
	})

	t.Run("builds an omdb client by default", func(t *testing.T) {
		a, err := New(ctx, WithStore(kv.NewMemory()))
		require.NoError(t, err)

		_, ok := a.Movies().(*omdb.Client)
		assert.True(t, ok)
	})

	t.Run("watched list reads from the store", func(t *testing.T) {
		store := kv.NewMemory()
		require.NoError(t, store.Set(ctx, "watched", `[{"imdbID":"tt1","Title":"One","userRating":7}]`))

		a, err := New(ctx, WithStore(store))
		require.NoError(t, err)

		list := a.Watched().All()
		require.Len(t, list, 1)
		assert.Equal(t, "tt1", list[0].ID)
		assert.Equal(t, 7, list[0].UserRating)
	})

	t.Run("search fetcher honors configured minimum length", func(t *testing.T) {
		cfg := config.Default()
		cfg.Search.MinLength = 5
		movies := &fakeMovies{results: []movie.Summary{{ID: "tt1"}}}

		a, err := New(ctx, WithConfig(cfg), WithStore(kv.NewMemory()), WithMovies(movies))
		require.NoError(t, err)

		search := a.NewSearch()
		assert.Nil(t, search.Observe("alie"))
		state := search.Run(ctx, "alien")
		assert.Len(t, state.Data, 1)
	})
}

func TestOpenStore(t *testing.T) {
	t.Run("sqlite driver", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.DataDir = filepath.Join(t.TempDir(), "data")

		store, err := OpenStore(cfg)
		require.NoError(t, err)
		defer store.Close()

		_, ok := store.(*sqlite.Store)
		assert.True(t, ok)
	})

	t.Run("file driver", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Driver = config.DriverFile
		cfg.Storage.DataDir = t.TempDir()

		store, err := OpenStore(cfg)
		require.NoError(t, err)
		defer store.Close()

		_, ok := store.(*file.Store)
		assert.True(t, ok)
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Driver = "redis"

		_, err := OpenStore(cfg)
		assert.Error(t, err)
	})
}
