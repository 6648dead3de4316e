package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryCache(t *testing.T, opts ...MemoryOption) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := newTestMemoryCache(t)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestMemoryCache_MissingKey(t *testing.T) {
	_, err := newTestMemoryCache(t).Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCache_ExpiredKeyIsMiss(t *testing.T) {
	ctx := context.Background()
	c := newTestMemoryCache(t)

	require.NoError(t, c.Set(ctx, "k", "v", 30*time.Millisecond))
	_, err := c.Get(ctx, "k")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := c.Get(ctx, "k")
		return errors.Is(err, ErrNotFound)
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryCache_ReadDoesNotExtendTTL(t *testing.T) {
	ctx := context.Background()
	c := newTestMemoryCache(t)

	require.NoError(t, c.Set(ctx, "k", "v", 60*time.Millisecond))
	stop := time.Now().Add(150 * time.Millisecond)

	var err error
	for time.Now().Before(stop) {
		_, err = c.Get(ctx, "k")
		time.Sleep(5 * time.Millisecond)
	}
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCache_UnreadExpiredKeysAreSwept(t *testing.T) {
	ctx := context.Background()
	c := newTestMemoryCache(t)

	for i := 0; i < 100; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), "v", 20*time.Millisecond))
	}
	require.NoError(t, c.Set(ctx, "long", "v", time.Hour))

	assert.Eventually(t, func() bool {
		return c.items.Len() == 1
	}, time.Second, 10*time.Millisecond)

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c := newTestMemoryCache(t)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	time.Sleep(20 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.NoError(t, err)
}

func TestMemoryCache_CapacityEvictsOldest(t *testing.T) {
	ctx := context.Background()
	c := newTestMemoryCache(t, WithCapacity(2))

	require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, c.Set(ctx, "b", "2", time.Minute))
	require.NoError(t, c.Set(ctx, "c", "3", time.Minute))

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryCache_DelAndClear(t *testing.T) {
	ctx := context.Background()
	c := newTestMemoryCache(t)

	require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, c.Set(ctx, "b", "2", time.Minute))

	require.NoError(t, c.Del(ctx, "a"))
	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Clear(ctx))
	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
