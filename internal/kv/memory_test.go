package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips records", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Set(ctx, "k", "v"))

		v, ok, err := m.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", v)
	})

	t.Run("lists keys sorted", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Set(ctx, "z", "1"))
		require.NoError(t, m.Set(ctx, "a", "2"))

		keys, err := m.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "z"}, keys)
	})

	t.Run("rejects empty key", func(t *testing.T) {
		assert.ErrorIs(t, NewMemory().Set(ctx, "", "v"), ErrEmptyKey)
	})

	t.Run("closed store errors", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Close())
		_, _, err := m.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrStoreClosed)
	})
}
