package fetch

import (
	"context"
	"unicode/utf8"

	"github.com/artpar/popcorn/internal/movie"
	"github.com/artpar/popcorn/internal/omdb"
	"github.com/pkg/errors"
)

// Fetcher names used to route results.
const (
	SearchSource  = "search"
	DetailsSource = "details"
)

// DefaultMinQueryLength is the shortest query that triggers a search.
const DefaultMinQueryLength = 3

// User-facing error messages.
const (
	MsgFetchFailed     = "Could not fetch movies"
	MsgNoMovies        = "Could not find any movies"
	MsgUnreadable      = "Could not read movie data"
	MsgMovieNotFound   = "Could not find this movie"
	MsgUnexpectedError = "Something went wrong"
)

// Searcher finds movies by title.
type Searcher interface {
	Search(ctx context.Context, term string) ([]movie.Summary, error)
}

// Detailer looks up a single movie by id.
type Detailer interface {
	Details(ctx context.Context, id string) (movie.Details, error)
}

// MovieSearch is the search-as-you-type fetcher.
type MovieSearch = Fetcher[[]movie.Summary]

// MovieDetails is the fetcher behind the details pane.
type MovieDetails = Fetcher[movie.Details]

// NewSearch creates a search fetcher that ignores queries shorter than minLen
// runes. A non-positive minLen means DefaultMinQueryLength.
func NewSearch(s Searcher, minLen int, opts ...Option) *MovieSearch {
	if minLen <= 0 {
		minLen = DefaultMinQueryLength
	}

	base := []Option{
		WithGuard(func(q string) bool { return utf8.RuneCountInString(q) >= minLen }),
		WithMessages(searchMessage),
	}
	f := New[[]movie.Summary](SearchSource, s.Search, append(base, opts...)...)
	f.empty = []movie.Summary{}
	f.state.Data = f.empty
	return f
}

// NewDetails creates a details fetcher. An empty id clears it.
func NewDetails(d Detailer, opts ...Option) *MovieDetails {
	base := []Option{
		WithGuard(func(id string) bool { return id != "" }),
		WithMessages(detailsMessage),
	}
	return New[movie.Details](DetailsSource, d.Details, append(base, opts...)...)
}

func searchMessage(err error) string {
	switch {
	case errors.Is(err, omdb.ErrNoResults):
		return MsgNoMovies
	case errors.Is(err, omdb.ErrParse):
		return MsgUnreadable
	case errors.Is(err, omdb.ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		return MsgFetchFailed
	default:
		return MsgUnexpectedError
	}
}

func detailsMessage(err error) string {
	switch {
	case errors.Is(err, omdb.ErrNoResults):
		return MsgMovieNotFound
	default:
		return searchMessage(err)
	}
}
