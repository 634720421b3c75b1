package file

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/artpar/popcorn/internal/kv"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const recordExt = ".rec"

// Store implements kv.Store with one file per key under a directory.
type Store struct {
	mu     sync.RWMutex
	fs     afero.Fs
	dir    string
	closed bool
}

// New creates a file store rooted at dir on the OS filesystem.
func New(dir string) (*Store, error) {
	return NewWithFs(afero.NewOsFs(), dir)
}

// NewWithFs creates a file store on an arbitrary afero filesystem.
func NewWithFs(fs afero.Fs, dir string) (*Store, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create store directory %s", dir)
	}
	return &Store{fs: fs, dir: dir}, nil
}

// pathFor maps a key onto a file name that is safe on every platform.
func (s *Store) pathFor(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+recordExt)
}

// Get returns the record at key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", false, kv.ErrStoreClosed
	}

	data, err := afero.ReadFile(s.fs, s.pathFor(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to read record %q", key)
	}
	return string(data), true, nil
}

// Set writes the record at key. The write goes to a temp file that is then
// renamed over the record, so readers never see a partial value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return kv.ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return kv.ErrStoreClosed
	}

	path := s.pathFor(key)
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, []byte(value), 0644); err != nil {
		return errors.Wrapf(err, "failed to write record %q", key)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return errors.Wrapf(err, "failed to commit record %q", key)
	}
	return nil
}

// Remove deletes the record at key.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return kv.ErrStoreClosed
	}

	err := s.fs.Remove(s.pathFor(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove record %q", key)
	}
	return nil
}

// Keys returns all keys in ascending order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, kv.ErrStoreClosed
	}

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list records")
	}

	keys := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, recordExt))
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
