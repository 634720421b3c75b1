package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/artpar/popcorn/internal/app"
	"github.com/artpar/popcorn/internal/config"
	"github.com/artpar/popcorn/internal/kv"
	"github.com/artpar/popcorn/internal/movie"
	"github.com/artpar/popcorn/internal/tui/views"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOMDbServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.Trim(q.Get("s"), `"`) == "matrix":
			json.NewEncoder(w).Encode(map[string]any{
				"Response": "True",
				"Search": []map[string]string{
					{"imdbID": "tt0133093", "Title": "The Matrix", "Year": "1999"},
					{"imdbID": "tt0234215", "Title": "The Matrix Reloaded", "Year": "2003"},
				},
			})
		case q.Get("i") == "tt0133093":
			json.NewEncoder(w).Encode(map[string]string{
				"Response":   "True",
				"imdbID":     "tt0133093",
				"Title":      "The Matrix",
				"Year":       "1999",
				"Runtime":    "136 min",
				"imdbRating": "8.7",
			})
		default:
			json.NewEncoder(w).Encode(map[string]string{"Response": "False", "Error": "Movie not found!"})
		}
	}))
	t.Cleanup(server.Close)
	return server
}

type harness struct {
	dir    string
	config string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessFor(t, newOMDbServer(t).URL)
}

func newHarnessFor(t *testing.T, baseURL string) *harness {
	t.Helper()
	t.Setenv(config.APIKeyEnv, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "omdb:\n  base_url: " + baseURL + "/\n  retries: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return &harness{dir: filepath.Join(dir, "data"), config: path}
}

func (h *harness) run(args ...string) (string, error) {
	return h.runContext(context.Background(), args...)
}

func (h *harness) runContext(ctx context.Context, args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd := NewRootCommand("test")
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"--config", h.config, "--data-dir", h.dir, "--api-key", "test-key"}, args...))
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestNewRootCommand(t *testing.T) {
	t.Run("creates root command", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		assert.NotNil(t, cmd)
		assert.Equal(t, "popcorn", cmd.Use)
		assert.Equal(t, "1.0.0", cmd.Version)
	})

	t.Run("has global flags", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		for _, name := range []string{"config", "data-dir", "api-key", "store"} {
			assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		for _, path := range [][]string{
			{"search"},
			{"watched", "list"},
			{"watched", "add"},
			{"watched", "rm"},
			{"watched", "stats"},
			{"watched", "clear"},
		} {
			found, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], found.Name())
		}
	})
}

func TestGlobalOptions_LoadConfig(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "")
	missing := filepath.Join(t.TempDir(), "none.yaml")

	t.Run("applies flag overrides", func(t *testing.T) {
		dir := t.TempDir()
		opts := &GlobalOptions{ConfigPath: missing, DataDir: dir, APIKey: "k", Store: "file"}

		cfg, err := opts.LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, dir, cfg.Storage.DataDir)
		assert.Equal(t, filepath.Join(dir, "popcorn.log"), cfg.Log.File)
		assert.Equal(t, "k", cfg.OMDb.APIKey)
		assert.Equal(t, config.DriverFile, cfg.Storage.Driver)
	})

	t.Run("keeps an explicit log file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log:\n  file: /tmp/popcorn-custom.log\n"), 0644))

		cfg, err := (&GlobalOptions{ConfigPath: path, DataDir: dir}).LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/popcorn-custom.log", cfg.Log.File)
	})

	t.Run("rejects unknown store", func(t *testing.T) {
		_, err := (&GlobalOptions{ConfigPath: missing, Store: "redis"}).LoadConfig()
		assert.Error(t, err)
	})
}

func TestSearchCommand(t *testing.T) {
	t.Run("prints results", func(t *testing.T) {
		h := newHarness(t)
		out, err := h.run("search", "matrix")
		require.NoError(t, err)
		assert.Contains(t, out, "tt0133093")
		assert.Contains(t, out, "The Matrix Reloaded")
		assert.Contains(t, out, "Found 2 results")
	})

	t.Run("outputs JSON format", func(t *testing.T) {
		h := newHarness(t)
		out, err := h.run("search", "--json", "matrix")
		require.NoError(t, err)

		var results []movie.Summary
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 2)
		assert.Equal(t, "The Matrix", results[0].Title)
	})

	t.Run("rejects short queries", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.run("search", "ma")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 3 characters")
	})

	t.Run("reports no results", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.run("search", "zzzzzz")
		require.Error(t, err)
		assert.Equal(t, "Could not find any movies", err.Error())
	})

	t.Run("requires an api key", func(t *testing.T) {
		h := newHarness(t)
		cmd := NewRootCommand("test")
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--config", h.config, "--data-dir", h.dir, "search", "matrix"})

		err := cmd.Execute()
		assert.ErrorIs(t, err, config.ErrMissingAPIKey)
	})
}

func TestCommands_Interrupted(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	cancelSoon := func() context.Context {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(200*time.Millisecond, cancel)
		t.Cleanup(cancel)
		return ctx
	}

	t.Run("search", func(t *testing.T) {
		h := newHarnessFor(t, server.URL)
		out, err := h.runContext(cancelSoon(), "search", "matrix")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotContains(t, out, "Found 0 results")
	})

	t.Run("search with JSON output", func(t *testing.T) {
		h := newHarnessFor(t, server.URL)
		out, err := h.runContext(cancelSoon(), "search", "--json", "matrix")
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotContains(t, out, "[]")
	})

	t.Run("watched add", func(t *testing.T) {
		h := newHarnessFor(t, server.URL)
		_, err := h.runContext(cancelSoon(), "watched", "add", "tt0133093", "--rating", "5")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotContains(t, err.Error(), "no details")

		out, err := h.run("watched", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "No watched movies yet.")
	})
}

func TestWatchedCommand(t *testing.T) {
	t.Run("add then list", func(t *testing.T) {
		h := newHarness(t)
		out, err := h.run("watched", "add", "tt0133093", "--rating", "9")
		require.NoError(t, err)
		assert.Contains(t, out, "Added The Matrix (1999) with rating 9")

		out, err = h.run("watched", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "tt0133093")
		assert.Contains(t, out, "136 min")
		assert.Contains(t, out, "The Matrix")
	})

	t.Run("list as JSON", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.run("watched", "add", "tt0133093", "-r", "7")
		require.NoError(t, err)

		out, err := h.run("watched", "list", "--json")
		require.NoError(t, err)

		var list []movie.Watched
		require.NoError(t, json.Unmarshal([]byte(out), &list))
		require.Len(t, list, 1)
		assert.Equal(t, 7, list[0].UserRating)
		assert.Equal(t, 136, list[0].Runtime)
		assert.InDelta(t, 8.7, list[0].IMDbRating, 0.001)
	})

	t.Run("duplicate add keeps the first rating", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.run("watched", "add", "tt0133093", "--rating", "9")
		require.NoError(t, err)

		out, err := h.run("watched", "add", "tt0133093", "--rating", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "already in your watched list")

		out, err = h.run("watched", "stats", "--json")
		require.NoError(t, err)
		var stats movie.Stats
		require.NoError(t, json.Unmarshal([]byte(out), &stats))
		assert.Equal(t, 1, stats.Count)
		assert.InDelta(t, 9.0, stats.AvgUserRating, 0.001)
	})

	t.Run("rejects invalid ratings", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.run("watched", "add", "tt0133093", "--rating", "11")
		assert.ErrorIs(t, err, movie.ErrInvalidRating)
	})

	t.Run("unknown id fails", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.run("watched", "add", "tt0000000", "--rating", "5")
		require.Error(t, err)
		assert.Equal(t, "Could not find this movie", err.Error())
	})

	t.Run("remove and clear", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.run("watched", "add", "tt0133093", "--rating", "6")
		require.NoError(t, err)

		out, err := h.run("watched", "rm", "tt0133093")
		require.NoError(t, err)
		assert.Contains(t, out, "Removed tt0133093")

		_, err = h.run("watched", "rm", "tt0133093")
		assert.Error(t, err)

		out, err = h.run("watched", "clear")
		require.NoError(t, err)
		assert.Contains(t, out, "cleared")

		out, err = h.run("watched", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "No watched movies yet.")
	})

	t.Run("file store persists between runs", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.run("--store", "file", "watched", "add", "tt0133093", "--rating", "8")
		require.NoError(t, err)

		entries, err := os.ReadDir(filepath.Join(h.dir, "records"))
		require.NoError(t, err)
		assert.Len(t, entries, 1)

		out, err := h.run("--store", "file", "watched", "stats")
		require.NoError(t, err)
		assert.Contains(t, out, "Movies:           1")

		out, err = h.run("watched", "stats")
		require.NoError(t, err)
		assert.Contains(t, out, "Movies:           0")
	})

	t.Run("offline commands do not need an api key", func(t *testing.T) {
		h := newHarness(t)
		cmd := NewRootCommand("test")
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetArgs([]string{"--config", h.config, "--data-dir", h.dir, "watched", "stats"})

		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "Movies:")
	})
}

func TestTuiModel(t *testing.T) {
	newView := func(t *testing.T) *views.MainView {
		a, err := app.New(context.Background(), app.WithStore(kv.NewMemory()))
		require.NoError(t, err)
		view := views.NewMainView(context.Background(), a)
		t.Cleanup(view.Close)
		return view
	}

	t.Run("Init returns view init", func(t *testing.T) {
		model := tuiModel{view: newView(t)}
		assert.NotNil(t, model.Init())
	})

	t.Run("Update handles messages", func(t *testing.T) {
		model := tuiModel{view: newView(t)}

		updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
		assert.Equal(t, 120, updated.(tuiModel).view.Width())
	})

	t.Run("View returns string", func(t *testing.T) {
		view := newView(t)
		view.SetSize(120, 40)
		model := tuiModel{view: view}

		assert.NotEmpty(t, model.View())
	})
}
