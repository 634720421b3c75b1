// Package fetch runs cancellable lookups whose results feed a single state.
//
// A Fetcher is driven by Observe: every call cancels the previous request and
// starts a new generation. Results carry the generation they were issued
// under and Apply drops anything that is not from the latest one, so a slow
// response can never overwrite a newer state. Cancellation is not an error
// and never shows up in State.Err.
package fetch

import (
	"context"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// State is what consumers render.
type State[T any] struct {
	Data    T      `json:"data"`
	Loading bool   `json:"loading"`
	Err     string `json:"error,omitempty"`
}

// Func performs a single lookup for query.
type Func[T any] func(ctx context.Context, query string) (T, error)

// Result is the message produced by the command returned from Observe.
type Result[T any] struct {
	Source     string
	Request    string
	Generation uint64
	Query      string
	Data       T
	Err        error
}

type options struct {
	accept  func(query string) bool
	message func(err error) string
	timeout time.Duration
	log     logrus.FieldLogger
}

// Option configures a Fetcher.
type Option func(*options)

// WithGuard sets the predicate a query must pass before anything is fetched.
func WithGuard(accept func(query string) bool) Option {
	return func(o *options) {
		o.accept = accept
	}
}

// WithMessages maps fetch errors to the text stored in State.Err.
func WithMessages(message func(err error) string) Option {
	return func(o *options) {
		o.message = message
	}
}

// WithTimeout bounds each request. A timeout is reported as an error.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// Fetcher owns one fetch stream.
type Fetcher[T any] struct {
	mu    sync.Mutex
	name  string
	fetch Func[T]
	opts  options
	empty T
	log   logrus.FieldLogger

	gen    uint64
	cancel context.CancelFunc
	query  string
	state  State[T]
}

// New creates a Fetcher. name identifies its results when several fetchers
// share one event loop.
func New[T any](name string, fn Func[T], opts ...Option) *Fetcher[T] {
	o := options{
		accept:  func(string) bool { return true },
		message: func(err error) string { return err.Error() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		o.log = discard
	}

	return &Fetcher[T]{
		name:  name,
		fetch: fn,
		opts:  o,
		log:   o.log.WithField("fetcher", name),
	}
}

// Name returns the fetcher name.
func (f *Fetcher[T]) Name() string {
	return f.name
}

// State returns the current state.
func (f *Fetcher[T]) State() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Query returns the most recently observed query.
func (f *Fetcher[T]) Query() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query
}

// Observe switches the fetcher to query. Any in-flight request is canceled.
// A query rejected by the guard settles immediately and returns nil; otherwise
// the state becomes loading and the returned command performs the request.
func (f *Fetcher[T]) Observe(query string) tea.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.abortLocked()
	f.query = query

	if !f.opts.accept(query) {
		f.state = State[T]{Data: f.empty}
		return nil
	}

	var ctx context.Context
	var cancel context.CancelFunc
	if f.opts.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), f.opts.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	f.cancel = cancel
	f.state.Loading = true
	f.state.Err = ""

	gen := f.gen
	name := f.name
	fetch := f.fetch
	request := uuid.NewString()
	f.log.WithFields(logrus.Fields{"query": query, "generation": gen, "request": request}).Debug("fetch started")

	return func() tea.Msg {
		defer cancel()
		data, err := fetch(ctx, query)
		return Result[T]{
			Source:     name,
			Request:    request,
			Generation: gen,
			Query:      query,
			Data:       data,
			Err:        err,
		}
	}
}

// Apply commits a result produced by an Observe command. It reports whether
// the state changed; results from other fetchers or older generations are
// ignored.
func (f *Fetcher[T]) Apply(res Result[T]) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	fields := logrus.Fields{"query": res.Query, "generation": res.Generation, "request": res.Request}
	if res.Source != f.name || res.Generation != f.gen {
		f.log.WithFields(fields).Debug("stale result dropped")
		return false
	}
	f.cancel = nil

	switch {
	case res.Err == nil:
		f.state = State[T]{Data: res.Data}
	case errors.Is(res.Err, context.Canceled):
		f.log.WithFields(fields).Debug("fetch aborted")
		f.state.Loading = false
	default:
		f.log.WithFields(fields).WithError(res.Err).Warn("fetch failed")
		f.state = State[T]{Data: f.empty, Err: f.opts.message(res.Err)}
	}
	return true
}

// Close cancels any in-flight request and stops loading. Results issued
// before Close are dropped.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.abortLocked()
	f.state.Loading = false
}

// Run observes query and blocks until the request settles or ctx is done.
func (f *Fetcher[T]) Run(ctx context.Context, query string) State[T] {
	cmd := f.Observe(query)
	if cmd == nil {
		return f.State()
	}

	done := make(chan Result[T], 1)
	go func() {
		done <- cmd().(Result[T])
	}()

	select {
	case res := <-done:
		f.Apply(res)
	case <-ctx.Done():
		f.Close()
	}
	return f.State()
}

// abortLocked cancels the current request and starts a new generation.
func (f *Fetcher[T]) abortLocked() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
}
