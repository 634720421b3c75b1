package testserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/artpar/popcorn/internal/movie"
)

// Handlers provides reusable response handlers.
type Handlers struct{}

// Text returns a handler that responds with plain text.
func (Handlers) Text(code int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(code)
		w.Write([]byte(body))
	}
}

// Delayed wraps h with simulated latency.
func (Handlers) Delayed(delay time.Duration, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
			h(w, r)
		case <-r.Context().Done():
		}
	}
}

// FailFirst answers the first n requests with code and passes the rest to h.
func (Handlers) FailFirst(n int, code int, h http.HandlerFunc) http.HandlerFunc {
	var calls atomic.Int32
	return func(w http.ResponseWriter, r *http.Request) {
		if int(calls.Add(1)) <= n {
			w.WriteHeader(code)
			return
		}
		h(w, r)
	}
}

// Catalog is an in-memory OMDb. Searches match titles case-insensitively;
// lookups match IMDb ids exactly.
type Catalog struct {
	APIKey string
	Movies []movie.Details
}

// Handler serves the catalog with OMDb's query parameters and envelopes.
func (c Catalog) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if c.APIKey != "" && q.Get("apikey") != c.APIKey {
			writeOMDb(w, http.StatusUnauthorized, notFound("Invalid API key!"))
			return
		}

		switch {
		case q.Has("s"):
			term := strings.ToLower(strings.Trim(q.Get("s"), `"`))
			var hits []movie.Summary
			for _, m := range c.Movies {
				if strings.Contains(strings.ToLower(m.Title), term) {
					hits = append(hits, m.Summary)
				}
			}
			if len(hits) == 0 {
				writeOMDb(w, http.StatusOK, notFound("Movie not found!"))
				return
			}
			writeOMDb(w, http.StatusOK, map[string]any{
				"Search":       hits,
				"totalResults": strconv.Itoa(len(hits)),
				"Response":     "True",
			})
		case q.Has("i"):
			for _, m := range c.Movies {
				if m.ID == q.Get("i") {
					writeOMDb(w, http.StatusOK, struct {
						movie.Details
						Response string `json:"Response"`
					}{m, "True"})
					return
				}
			}
			writeOMDb(w, http.StatusOK, notFound("Incorrect IMDb ID."))
		default:
			writeOMDb(w, http.StatusOK, notFound("Something went wrong."))
		}
	}
}

func notFound(msg string) map[string]string {
	return map[string]string{"Response": "False", "Error": msg}
}

func writeOMDb(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
