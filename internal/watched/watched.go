package watched

import (
	"context"

	"github.com/artpar/popcorn/internal/kv"
	"github.com/artpar/popcorn/internal/movie"
	"github.com/artpar/popcorn/internal/persist"
	"github.com/sirupsen/logrus"
)

// Key is the store key of the watched list.
const Key = "watched"

// List is the user's persisted watched list.
type List struct {
	value *persist.Value[[]movie.Watched]
}

// Open loads the watched list from store.
func Open(ctx context.Context, store kv.Store, log logrus.FieldLogger) *List {
	return &List{
		value: persist.Load(ctx, store, Key, []movie.Watched{}, persist.JSON[[]movie.Watched](), persist.WithLogger(log)),
	}
}

// All returns the entries in the order they were added.
func (l *List) All() []movie.Watched {
	return l.value.Get()
}

// Find looks up an entry by IMDb id.
func (l *List) Find(id string) (movie.Watched, bool) {
	return movie.Find(l.value.Get(), id)
}

// Add stores w and reports whether it was new. Adding an id that is already
// present changes nothing.
func (l *List) Add(ctx context.Context, w movie.Watched) (bool, error) {
	added := false
	err := l.value.Update(ctx, func(prev []movie.Watched) []movie.Watched {
		next := movie.Add(prev, w)
		added = len(next) != len(prev)
		return next
	})
	return added, err
}

// Remove deletes the entry with id and reports whether one was removed.
func (l *List) Remove(ctx context.Context, id string) (bool, error) {
	removed := false
	err := l.value.Update(ctx, func(prev []movie.Watched) []movie.Watched {
		next := movie.Remove(prev, id)
		removed = len(next) != len(prev)
		return next
	})
	return removed, err
}

// Clear empties the list.
func (l *List) Clear(ctx context.Context) error {
	return l.value.Reset(ctx)
}

// Stats summarizes the list.
func (l *List) Stats() movie.Stats {
	return movie.Summarize(l.value.Get())
}
