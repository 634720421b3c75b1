package kv

import (
	"context"

	"github.com/pkg/errors"
)

// Common errors.
var (
	ErrStoreClosed = errors.New("kv store is closed")
	ErrEmptyKey    = errors.New("kv key must not be empty")
)

// Store defines a durable string-keyed record store.
// Records are opaque strings; callers own their encoding.
type Store interface {
	// Get returns the record at key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes the record at key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the record at key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys returns all stored keys in ascending order.
	Keys(ctx context.Context) ([]string, error)

	// Close closes the store.
	Close() error
}
