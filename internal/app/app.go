package app

import (
	"context"
	"io"
	"os"

	"github.com/artpar/popcorn/internal/config"
	"github.com/artpar/popcorn/internal/fetch"
	"github.com/artpar/popcorn/internal/keybind"
	"github.com/artpar/popcorn/internal/kv"
	"github.com/artpar/popcorn/internal/kv/file"
	"github.com/artpar/popcorn/internal/kv/sqlite"
	"github.com/artpar/popcorn/internal/logging"
	"github.com/artpar/popcorn/internal/omdb"
	"github.com/artpar/popcorn/internal/watched"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Movies is what the app needs from a movie database.
type Movies interface {
	fetch.Searcher
	fetch.Detailer
}

// App is the main application container with dependency injection.
type App struct {
	config  *config.Config
	log     logrus.FieldLogger
	movies  Movies
	store   kv.Store
	watched *watched.List
	keys    *keybind.Dispatcher
	closers []io.Closer
}

// Option is a function that configures the App.
type Option func(*App)

// WithConfig sets the application configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		a.config = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *App) {
		a.log = log
	}
}

// WithMovies replaces the OMDb client.
func WithMovies(m Movies) Option {
	return func(a *App) {
		a.movies = m
	}
}

// WithStore replaces the configured key-value store.
func WithStore(store kv.Store) Option {
	return func(a *App) {
		a.store = store
	}
}

// New creates a new App with the given options. Anything not supplied is
// built from the configuration.
func New(ctx context.Context, opts ...Option) (*App, error) {
	a := &App{
		keys: keybind.NewDispatcher(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.config == nil {
		a.config = config.Default()
	}
	if a.log == nil {
		a.log = logging.Discard()
	}
	if a.movies == nil {
		a.movies = omdb.NewClient(a.config.OMDb.APIKey,
			omdb.WithBaseURL(a.config.OMDb.BaseURL),
			omdb.WithTimeout(a.config.OMDb.Timeout),
			omdb.WithQuotedTerms(a.config.QuoteSearchTerms()),
			omdb.WithRetry(a.config.OMDb.Retries, omdb.DefaultRetryDelay),
			omdb.WithLogger(a.log.WithField("component", "omdb")),
		)
	}
	if a.store == nil {
		store, err := OpenStore(a.config)
		if err != nil {
			return nil, err
		}
		a.store = store
		a.closers = append(a.closers, store)
	}

	a.watched = watched.Open(ctx, a.store, a.log.WithField("component", "watched"))
	return a, nil
}

// OpenStore opens the key-value store selected by the storage driver.
func OpenStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverFile:
		store, err := file.New(cfg.RecordsDir())
		if err != nil {
			return nil, errors.Wrap(err, "failed to open file store")
		}
		return store, nil
	case config.DriverSQLite, "":
		if err := os.MkdirAll(cfg.Storage.DataDir, 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create data directory")
		}
		store, err := sqlite.New(cfg.DatabasePath())
		if err != nil {
			return nil, errors.Wrap(err, "failed to open sqlite store")
		}
		return store, nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Config returns the application configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() logrus.FieldLogger {
	return a.log
}

// Movies returns the movie database client.
func (a *App) Movies() Movies {
	return a.movies
}

// Store returns the key-value store.
func (a *App) Store() kv.Store {
	return a.store
}

// Watched returns the persisted watched list.
func (a *App) Watched() *watched.List {
	return a.watched
}

// Keys returns the global key dispatcher.
func (a *App) Keys() *keybind.Dispatcher {
	return a.keys
}

// NewSearch creates a search fetcher wired to the app's client and settings.
func (a *App) NewSearch() *fetch.MovieSearch {
	return fetch.NewSearch(a.movies, a.config.Search.MinLength,
		fetch.WithTimeout(a.config.OMDb.Timeout),
		fetch.WithLogger(a.log),
	)
}

// NewDetails creates a details fetcher wired to the app's client.
func (a *App) NewDetails() *fetch.MovieDetails {
	return fetch.NewDetails(a.movies,
		fetch.WithTimeout(omdb.DetailsTimeout(a.config.OMDb.Timeout, a.config.OMDb.Retries, omdb.DefaultRetryDelay)),
		fetch.WithLogger(a.log),
	)
}

// Close releases resources the app opened itself.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
