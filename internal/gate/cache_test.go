package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePutGet(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	c := NewCache(30 * time.Minute)

	_, ok := c.Get(1, now)
	assert.False(t, ok)

	c.Put(1, now)
	got, ok := c.Get(1, now.Add(time.Minute))
	require.True(t, ok)
	assert.Equal(t, now, got)
}

func TestCacheExpiry(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	c := NewCache(30 * time.Minute)
	c.Put(1, now)

	// Exactly at the TTL the entry is still readable; past it, gone.
	_, ok := c.Get(1, now.Add(30*time.Minute))
	assert.True(t, ok)

	_, ok = c.Get(1, now.Add(30*time.Minute+time.Second))
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCacheMonotonic(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	c := NewCache(30 * time.Minute)

	c.Put(1, now)
	c.Put(1, now.Add(-time.Minute))

	got, ok := c.Get(1, now)
	require.True(t, ok)
	assert.Equal(t, now, got)
}

func TestCacheSweepBoundsGrowth(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	c := NewCache(30 * time.Minute)

	for i := int64(0); i < sweepEvery; i++ {
		c.Put(i, now)
	}
	require.Equal(t, sweepEvery, c.Len())

	// Another full round of puts an hour later triggers the sweep and
	// drops every stale entry.
	later := now.Add(time.Hour)
	for i := int64(sweepEvery); i < 2*sweepEvery; i++ {
		c.Put(i, later)
	}
	assert.Equal(t, sweepEvery, c.Len())
}
