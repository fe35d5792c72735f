// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	c := NewMemory(0)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "capacity", []byte(`{"percent":42}`), time.Hour)

	val, ok := c.Get(ctx, "capacity")
	require.True(t, ok)
	assert.JSONEq(t, `{"percent":42}`, string(val))

	_, ok = c.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestMemory_Expiration(t *testing.T) {
	c := NewMemory(0)
	defer c.Close()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	_, ok := c.Get(ctx, "k")
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)

	assert.Equal(t, 1, c.deleteExpired())
	assert.Equal(t, 0, c.Stats().CurrentSize)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestMemory_DeleteAndStats(t *testing.T) {
	c := NewMemory(0)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), time.Hour)
	c.Set(ctx, "b", []byte("2"), time.Hour)
	c.Get(ctx, "a")
	c.Get(ctx, "zzz")
	c.Delete(ctx, "b")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(2), stats.Sets)
	assert.Equal(t, 1, stats.CurrentSize)
}

func TestMemory_JanitorStopsOnClose(t *testing.T) {
	c := NewMemory(5 * time.Millisecond)
	c.Set(context.Background(), "short", []byte("x"), time.Millisecond)

	require.Eventually(t, func() bool {
		return c.Stats().CurrentSize == 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "Close is idempotent")
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set(ctx, "k", []byte{byte(j)}, time.Minute)
				c.Get(ctx, "k")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(400), c.Stats().Sets)
}
