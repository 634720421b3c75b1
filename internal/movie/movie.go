package movie

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Rating bounds for user ratings.
const (
	MinRating = 1
	MaxRating = 10
)

// ErrInvalidRating is returned when a user rating is outside MinRating..MaxRating.
var ErrInvalidRating = errors.New("rating must be between 1 and 10")

// Summary is a single search hit as delivered by OMDb.
type Summary struct {
	ID     string `json:"imdbID"`
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	Poster string `json:"Poster"`
}

// Details is the full record returned by an id lookup.
type Details struct {
	Summary
	Runtime    string `json:"Runtime"`
	IMDbRating string `json:"imdbRating"`
	Plot       string `json:"Plot"`
	Released   string `json:"Released"`
	Actors     string `json:"Actors"`
	Director   string `json:"Director"`
	Genre      string `json:"Genre"`
}

// Watched is an entry in the user's watched list.
type Watched struct {
	Summary
	Runtime    int     `json:"runtime"`
	IMDbRating float64 `json:"imdbRating"`
	UserRating int     `json:"userRating"`
}

// NewWatched builds a watched entry from looked-up details and the user's rating.
func NewWatched(d Details, rating int) (Watched, error) {
	if rating < MinRating || rating > MaxRating {
		return Watched{}, ErrInvalidRating
	}
	return Watched{
		Summary:    d.Summary,
		Runtime:    ParseRuntime(d.Runtime),
		IMDbRating: ParseRating(d.IMDbRating),
		UserRating: rating,
	}, nil
}

// ParseRuntime extracts the minutes from values like "148 min".
// Unknown values ("N/A", "") yield 0.
func ParseRuntime(s string) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}

// ParseRating parses an IMDb rating such as "8.8". Unknown values yield 0.
func ParseRating(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
