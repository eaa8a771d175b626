package cache

import (
	"github.com/goccy/go-json"
)

// snapshotKey is the storage key holding the serialized entry set.
const snapshotKey = "cache/responses"

// emergencyEvictFraction is the share of entries dropped (LRU first)
// when a persistence write fails, before the single retry.
const emergencyEvictFraction = 0.3

// persistLocked snapshots the full entry set after a mutating call.
// Persistence is best-effort: on a write failure it evicts a fixed
// fraction of entries and retries once, then gives up for this write.
// The in-memory cache stays authoritative either way.
func (c *ResponseCache) persistLocked() {
	if c.store == nil {
		return
	}

	if err := c.writeSnapshotLocked(); err == nil {
		return
	}

	n := int(float64(len(c.items)) * emergencyEvictFraction)
	if n < 1 {
		n = 1
	}
	c.evictLocked(n)
	c.logger.Warn("cache snapshot write failed, evicted entries and retrying", "evicted", n)

	if err := c.writeSnapshotLocked(); err != nil {
		c.logger.Warn("cache snapshot retry failed, abandoning this write", "error", err)
	}
}

func (c *ResponseCache) writeSnapshotLocked() error {
	entries := make([]*Entry, 0, len(c.items))
	for el := c.recency.Front(); el != nil; el = el.Next() {
		entries = append(entries, el.Value.(*Entry))
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.store.Set(snapshotKey, data)
}

// loadSnapshot restores persisted entries, dropping any that expired
// while the process was down. Recency order is the snapshot order
// (written LRU-first), so relative recency survives restarts.
func (c *ResponseCache) loadSnapshot() {
	data, ok, err := c.store.Get(snapshotKey)
	if err != nil {
		c.logger.Warn("cache snapshot load failed", "error", err)
		return
	}
	if !ok {
		return
	}

	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("cache snapshot is corrupt, starting empty", "error", err)
		return
	}

	now := c.now()
	for _, e := range entries {
		if e == nil || e.Key == "" || e.expired(now) {
			continue
		}
		if len(c.items) >= c.cfg.MaxEntries {
			break
		}
		c.items[e.Key] = c.recency.PushBack(e)
	}
	c.logger.Debug("cache snapshot loaded", "entries", len(c.items))
}
