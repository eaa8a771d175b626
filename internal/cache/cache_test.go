package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(maxEntries int) (*ResponseCache, *time.Time) {
	c := New(Config{MaxEntries: maxEntries, DefaultTTL: time.Hour}, nil, nil)
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestResponseCache_BasicOperations(t *testing.T) {
	c, _ := newTestCache(10)

	t.Run("set and get", func(t *testing.T) {
		c.Set("k1", "v1", 0)
		v, ok := c.Get("k1")
		require.True(t, ok)
		assert.Equal(t, "v1", v)
	})

	t.Run("miss", func(t *testing.T) {
		_, ok := c.Get("absent")
		assert.False(t, ok)
	})

	t.Run("has does not bump recency", func(t *testing.T) {
		c.Set("k2", "v2", 0)
		assert.True(t, c.Has("k2"))
		assert.False(t, c.Has("absent"))
	})

	t.Run("delete", func(t *testing.T) {
		c.Set("k3", "v3", 0)
		c.Delete("k3")
		_, ok := c.Get("k3")
		assert.False(t, ok)
	})

	t.Run("clear", func(t *testing.T) {
		c.Set("k4", "v4", 0)
		c.Clear()
		assert.Equal(t, 0, c.Len())
	})
}

func TestResponseCache_TTLBoundary(t *testing.T) {
	c, now := newTestCache(10)
	created := *now

	c.Set("k", "v", time.Minute)

	// One millisecond before expiry the value is still served.
	*now = created.Add(time.Minute - time.Millisecond)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	// One millisecond past expiry it is gone and removed.
	*now = created.Add(time.Minute + time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestResponseCache_CapacityInvariant(t *testing.T) {
	c, _ := newTestCache(5)

	for i := 0; i < 50; i++ {
		c.Set(fmt.Sprintf("k%d", i), "v", 0)
		assert.LessOrEqual(t, c.Len(), 5)
	}
	assert.Equal(t, 5, c.Len())
}

func TestResponseCache_LRUEviction(t *testing.T) {
	c, _ := newTestCache(3)

	c.Set("a", "1", 0)
	c.Set("b", "2", 0)
	c.Set("c", "3", 0)

	// Touch "a" so "b" becomes the LRU victim.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("d", "4", 0)

	_, ok = c.Get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	for _, key := range []string{"a", "c", "d"} {
		_, ok := c.Get(key)
		assert.True(t, ok, "entry %s should survive", key)
	}
}

func TestResponseCache_EvictsExpiredBeforeLRU(t *testing.T) {
	c, now := newTestCache(3)

	c.Set("short", "v", time.Minute)
	c.Set("a", "1", time.Hour)
	c.Set("b", "2", time.Hour)

	// "short" expires; it should be the victim even though "a" is older
	// in recency order among the fresh entries.
	*now = now.Add(2 * time.Minute)
	c.Set("c", "3", time.Hour)

	_, ok := c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("short")
	assert.False(t, ok)
}

func TestResponseCache_HitCount(t *testing.T) {
	c, _ := newTestCache(10)

	c.Set("k", "v", 0)
	for i := 0; i < 3; i++ {
		_, ok := c.Get("k")
		require.True(t, ok)
	}

	c.mu.Lock()
	entry := c.items["k"].Value.(*Entry)
	c.mu.Unlock()
	assert.Equal(t, 3, entry.HitCount)
}

func TestResponseCache_SetResetsEntry(t *testing.T) {
	c, now := newTestCache(10)

	c.Set("k", "old", time.Minute)
	_, _ = c.Get("k")

	*now = now.Add(30 * time.Second)
	c.Set("k", "new", time.Hour)

	*now = now.Add(2 * time.Minute) // past the original TTL
	v, ok := c.Get("k")
	require.True(t, ok, "replacement should carry the new TTL")
	assert.Equal(t, "new", v)
}

func TestResponseCache_PruneExpired(t *testing.T) {
	c, now := newTestCache(10)

	c.Set("fresh", "v", time.Hour)
	c.Set("stale1", "v", time.Minute)
	c.Set("stale2", "v", time.Minute)

	*now = now.Add(10 * time.Minute)
	removed := c.PruneExpired()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Has("fresh"))
}

func TestResponseCache_Stats(t *testing.T) {
	c, _ := newTestCache(10)

	c.Set("k", "v", 0)
	_, _ = c.Get("k")
	_, _ = c.Get("k")
	_, _ = c.Get("absent")

	st := c.Stats()
	assert.Equal(t, int64(2), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.Equal(t, int64(1), st.Sets)
	assert.InDelta(t, 2.0/3.0, st.HitRate, 1e-9)
}

func TestTTLFor(t *testing.T) {
	assert.Equal(t, time.Hour, TTLFor("motivation", time.Minute))
	assert.Equal(t, 30*24*time.Hour, TTLFor("form_guidance", time.Minute))
	assert.Equal(t, time.Minute, TTLFor("unknown_feature", time.Minute))
}
