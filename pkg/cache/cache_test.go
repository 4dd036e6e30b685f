package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mourafe/radarb3/pkg/logger"
)

func TestMemoryStore_SetGet(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, store.Set(ctx, "k1", payload{Name: "abc", Count: 3}, time.Minute))

	var got payload
	found, err := store.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "abc", Count: 3}, got)

	found, err = store.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "k1", "v1", 30*time.Minute))

	var got string
	found, err := store.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.True(t, found)

	// Advance past the TTL
	now = now.Add(31 * time.Minute)
	found, err = store.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.False(t, found, "expired entry must not be served")
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_ClearPrefix(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "radar:universe:primary", "a", time.Hour))
	require.NoError(t, store.Set(ctx, "radar:universe:resolved", "b", time.Hour))
	require.NoError(t, store.Set(ctx, "radar:prices:6mo", "c", time.Hour))

	require.NoError(t, store.Clear(ctx, "radar:universe"))

	var got string
	found, _ := store.Get(ctx, "radar:universe:primary", &got)
	assert.False(t, found)
	found, _ = store.Get(ctx, "radar:universe:resolved", &got)
	assert.False(t, found)
	found, _ = store.Get(ctx, "radar:prices:6mo", &got)
	assert.True(t, found, "other prefixes must survive")
}

func TestCache_GetOrPopulate(t *testing.T) {
	store := NewMemoryStore(0)
	c := New(store, "radar", logger.NewNop())
	ctx := context.Background()

	calls := 0
	populate := func() (interface{}, error) {
		calls++
		return []string{"PETR4.SA", "VALE3.SA"}, nil
	}

	var first []string
	require.NoError(t, c.GetOrPopulate(ctx, "universe:resolved", &first, time.Hour, populate))
	assert.Equal(t, []string{"PETR4.SA", "VALE3.SA"}, first)
	assert.Equal(t, 1, calls)

	// Second read is a hit: populate must not run again
	var second []string
	require.NoError(t, c.GetOrPopulate(ctx, "universe:resolved", &second, time.Hour, populate))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCache_GetOrPopulate_Error(t *testing.T) {
	store := NewMemoryStore(0)
	c := New(store, "radar", logger.NewNop())
	ctx := context.Background()

	wantErr := errors.New("upstream down")
	var dest []string
	err := c.GetOrPopulate(ctx, "k", &dest, time.Hour, func() (interface{}, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	// A failed populate must not poison the cache
	found, err := c.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_ClearIsNamespaced(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	// Foreign entries outside the cache's namespace
	require.NoError(t, store.Set(ctx, "other:universe:resolved", "x", time.Hour))

	c := New(store, "radar", logger.NewNop())
	require.NoError(t, c.Set(ctx, "universe:resolved", "y", time.Hour))
	require.NoError(t, c.Clear(ctx, "universe"))

	var got string
	found, _ := c.Get(ctx, "universe:resolved", &got)
	assert.False(t, found)
	found, _ = store.Get(ctx, "other:universe:resolved", &got)
	assert.True(t, found)
}
