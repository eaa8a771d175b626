package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftwise/coach/internal/storage"
)

func TestResponseCache_PersistRoundTrip(t *testing.T) {
	store := storage.NewMemStore()
	cfg := Config{MaxEntries: 10, DefaultTTL: time.Hour, Persist: true}

	c1 := New(cfg, store, nil)
	c1.Set("k1", "v1", 0)
	c1.Set("k2", "v2", 0)

	// A fresh cache over the same store sees the surviving entries.
	c2 := New(cfg, store, nil)
	v, ok := c2.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "v1", v)
	assert.Equal(t, 2, c2.Len())
}

func TestResponseCache_LoadFiltersExpiredEntries(t *testing.T) {
	store := storage.NewMemStore()
	cfg := Config{MaxEntries: 10, DefaultTTL: time.Hour, Persist: true}

	c1 := New(cfg, store, nil)
	c1.Set("stale", "v", time.Nanosecond)
	c1.Set("fresh", "v", 24*time.Hour)

	time.Sleep(time.Millisecond)

	c2 := New(cfg, store, nil)
	assert.False(t, c2.Has("stale"))
	assert.True(t, c2.Has("fresh"))
}

func TestResponseCache_CorruptSnapshotStartsEmpty(t *testing.T) {
	store := storage.NewMemStore()
	require.NoError(t, store.Set(snapshotKey, []byte("{not json")))

	c := New(Config{MaxEntries: 10, DefaultTTL: time.Hour, Persist: true}, store, nil)
	assert.Equal(t, 0, c.Len())
}

func TestResponseCache_EmergencyEvictionOnWriteFailure(t *testing.T) {
	store := storage.NewMemStore()
	cfg := Config{MaxEntries: 100, DefaultTTL: time.Hour, Persist: true}
	c := New(cfg, store, nil)

	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("k%d", i), "v", 0)
	}
	require.Equal(t, 10, c.Len())

	// Every write now fails: the next mutation should shed ~30% of the
	// entries, retry, fail again, and keep the in-memory cache running.
	store.FailWrites = true
	c.Set("k10", "v", 0)

	assert.Equal(t, 11-3, c.Len(), "30%% of 11 entries evicted")
	v, ok := c.Get("k10")
	require.True(t, ok, "in-memory cache remains authoritative")
	assert.Equal(t, "v", v)
}

func TestResponseCache_RecencySurvivesRestart(t *testing.T) {
	store := storage.NewMemStore()
	cfg := Config{MaxEntries: 3, DefaultTTL: time.Hour, Persist: true}

	c1 := New(cfg, store, nil)
	c1.Set("a", "1", 0)
	c1.Set("b", "2", 0)
	c1.Set("c", "3", 0)
	_, _ = c1.Get("a") // "b" is now LRU

	c2 := New(cfg, store, nil)
	c2.Set("d", "4", 0)

	assert.False(t, c2.Has("b"), "LRU order should survive the restart")
	assert.True(t, c2.Has("a"))
}
