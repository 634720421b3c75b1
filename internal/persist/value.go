// Package persist keeps an in-memory value mirrored to a record in a kv.Store.
//
// Every write goes to the store first and is committed to memory only once
// the store accepted it, so after a successful Set or Update the store and
// memory hold the same value. Reads never fail: a missing or undecodable
// record falls back to the default value.
//
// The default value is not validated against the codec; keeping the two
// consistent is up to the caller.
package persist

import (
	"context"
	"io"
	"sync"

	"github.com/artpar/popcorn/internal/kv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Value is a durable value of type T stored under a fixed key.
type Value[T any] struct {
	mu    sync.Mutex
	store kv.Store
	key   string
	codec Codec[T]
	def   T
	value T
	log   logrus.FieldLogger
}

type options struct {
	log logrus.FieldLogger
}

// Option configures Load.
type Option func(*options)

// WithLogger sets the logger used to report fallbacks.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// Load reads key from store and returns a Value initialized from it, or from
// def when the record is missing or cannot be decoded. A nil codec means JSON.
func Load[T any](ctx context.Context, store kv.Store, key string, def T, codec Codec[T], opts ...Option) *Value[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		o.log = discard
	}
	if codec == nil {
		codec = JSON[T]()
	}

	v := &Value[T]{
		store: store,
		key:   key,
		codec: codec,
		def:   def,
		value: def,
		log:   o.log.WithField("key", key),
	}

	raw, ok, err := store.Get(ctx, key)
	switch {
	case err != nil:
		v.log.WithError(err).Warn("could not read persisted value, using default")
	case !ok:
		v.log.Debug("no persisted value, using default")
	default:
		decoded, err := codec.Decode(raw)
		if err != nil {
			v.log.WithError(err).Warn("could not decode persisted value, using default")
			break
		}
		v.value = decoded
	}

	return v
}

// Key returns the store key.
func (v *Value[T]) Key() string {
	return v.key
}

// Get returns the current value. Reference types are shared with the Value
// and must not be mutated by the caller.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Set replaces the value.
func (v *Value[T]) Set(ctx context.Context, next T) error {
	return v.Update(ctx, func(T) T { return next })
}

// Update applies fn to the current value and stores the result. fn runs
// under the Value's lock and must not call back into it.
func (v *Value[T]) Update(ctx context.Context, fn func(T) T) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	next := fn(v.value)
	encoded, err := v.codec.Encode(next)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %q", v.key)
	}
	if err := v.store.Set(ctx, v.key, encoded); err != nil {
		return errors.Wrapf(err, "failed to persist %q", v.key)
	}

	v.value = next
	return nil
}

// Reset removes the stored record and returns the value to its default.
func (v *Value[T]) Reset(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.store.Remove(ctx, v.key); err != nil {
		return errors.Wrapf(err, "failed to remove %q", v.key)
	}
	v.value = v.def
	return nil
}
