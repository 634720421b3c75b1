// Package testserver fakes the OMDb API for end-to-end tests.
package testserver

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// Kind tells what an OMDb request asked for.
type Kind string

const (
	KindSearch Kind = "search"
	KindLookup Kind = "lookup"
	KindOther  Kind = "other"
)

// Request is one call the fake OMDb received.
type Request struct {
	Kind   Kind
	Term   string // s= as sent, quotes included
	ID     string // i=
	APIKey string
	Query  url.Values
	At     time.Time
}

// Server records OMDb calls and hands them to a handler.
type Server struct {
	*httptest.Server
	mu   sync.Mutex
	seen []Request
}

// New starts a server that records every request before passing it to h.
func New(h http.HandlerFunc) *Server {
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		h(w, r)
	}))
	return s
}

func (s *Server) record(r *http.Request) {
	q := r.URL.Query()
	req := Request{
		Kind:   KindOther,
		Term:   q.Get("s"),
		ID:     q.Get("i"),
		APIKey: q.Get("apikey"),
		Query:  q,
		At:     time.Now(),
	}
	switch {
	case q.Has("s"):
		req.Kind = KindSearch
	case q.Has("i"):
		req.Kind = KindLookup
	}

	s.mu.Lock()
	s.seen = append(s.seen, req)
	s.mu.Unlock()
}

// LastRequest returns the most recent request, or nil before the first one.
func (s *Server) LastRequest() *Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.seen) == 0 {
		return nil
	}
	last := s.seen[len(s.seen)-1]
	return &last
}

// RequestCount returns how many requests arrived.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Searches returns the search terms received, oldest first.
func (s *Server) Searches() []string {
	return s.collect(KindSearch, func(r Request) string { return r.Term })
}

// Lookups returns the IMDb ids looked up, oldest first.
func (s *Server) Lookups() []string {
	return s.collect(KindLookup, func(r Request) string { return r.ID })
}

func (s *Server) collect(kind Kind, field func(Request) string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, r := range s.seen {
		if r.Kind == kind {
			out = append(out, field(r))
		}
	}
	return out
}

// Reset forgets every recorded request.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = nil
}
