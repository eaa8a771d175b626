package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/liftwise/coach/internal/observability"
	"github.com/liftwise/coach/internal/storage"
)

// ResponseCache is an LRU cache with per-entry TTL. All access goes
// through its methods; the map and recency list are never handed out.
type ResponseCache struct {
	mu sync.Mutex

	cfg     Config
	items   map[string]*list.Element // key -> element holding *Entry
	recency *list.List               // front = least recently used

	store  storage.Store // nil unless cfg.Persist
	logger *observability.Logger

	hits      int64
	misses    int64
	sets      int64
	evictions int64

	// now is swapped in tests to pin the clock.
	now func() time.Time
}

// New creates a ResponseCache. When cfg.Persist is set, store must be
// non-nil and any previously persisted, still-fresh entries are loaded.
func New(cfg Config, store storage.Store, logger *observability.Logger) *ResponseCache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultConfig().MaxEntries
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultConfig().DefaultTTL
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	c := &ResponseCache{
		cfg:     cfg,
		items:   make(map[string]*list.Element),
		recency: list.New(),
		logger:  logger.WithFields("component", "response_cache"),
		now:     time.Now,
	}
	if cfg.Persist && store != nil {
		c.store = store
		c.loadSnapshot()
	}
	return c
}

// Get returns the cached value for key. Expired entries are removed and
// reported as misses. A hit bumps the entry to most recently used and
// increments its hit count.
func (c *ResponseCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return "", false
	}

	entry := el.Value.(*Entry)
	if entry.expired(c.now()) {
		c.removeElement(el)
		c.misses++
		c.persistLocked()
		return "", false
	}

	entry.HitCount++
	c.recency.MoveToBack(el)
	c.hits++
	return entry.Value, true
}

// Set stores value under key. At capacity the least recently used entry
// is evicted before insertion, so the store never exceeds MaxEntries.
// ttl <= 0 selects the configured default.
func (c *ResponseCache) Set(key, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.cfg.DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		entry := el.Value.(*Entry)
		entry.Value = value
		entry.CreatedAt = c.now()
		entry.TTL = ttl
		entry.HitCount = 0
		c.recency.MoveToBack(el)
		c.sets++
		c.persistLocked()
		return
	}

	if len(c.items) >= c.cfg.MaxEntries {
		c.evictLocked(len(c.items) - c.cfg.MaxEntries + 1)
	}

	entry := &Entry{
		Key:       key,
		Value:     value,
		CreatedAt: c.now(),
		TTL:       ttl,
	}
	c.items[key] = c.recency.PushBack(entry)
	c.sets++
	c.persistLocked()
}

// Has reports whether key holds a non-expired entry. Unlike Get it does
// not touch recency or hit counts.
func (c *ResponseCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	return !el.Value.(*Entry).expired(c.now())
}

// Delete removes key if present.
func (c *ResponseCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
		c.persistLocked()
	}
}

// Clear drops every entry.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.recency.Init()
	c.persistLocked()
}

// PruneExpired removes every expired entry and returns how many went.
func (c *ResponseCache) PruneExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var removed int
	for el := c.recency.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*Entry).expired(now) {
			c.removeElement(el)
			removed++
		}
		el = next
	}
	if removed > 0 {
		c.persistLocked()
	}
	return removed
}

// Len returns the number of entries, expired ones included.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a snapshot of the counters.
func (c *ResponseCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	var rate float64
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		Entries:   len(c.items),
		Hits:      c.hits,
		Misses:    c.misses,
		Sets:      c.sets,
		Evictions: c.evictions,
		HitRate:   rate,
	}
}

// evictLocked removes n entries, expired ones first, then strict LRU
// order from the front of the recency list.
func (c *ResponseCache) evictLocked(n int) {
	now := c.now()
	for el := c.recency.Front(); el != nil && n > 0; {
		next := el.Next()
		if el.Value.(*Entry).expired(now) {
			c.removeElement(el)
			c.evictions++
			n--
		}
		el = next
	}
	for n > 0 {
		front := c.recency.Front()
		if front == nil {
			return
		}
		c.removeElement(front)
		c.evictions++
		n--
	}
}

func (c *ResponseCache) removeElement(el *list.Element) {
	entry := el.Value.(*Entry)
	delete(c.items, entry.Key)
	c.recency.Remove(el)
}
