// Package cache provides the response cache for the coach AI layer: an
// LRU store with per-entry TTL and optional device-local persistence,
// plus a token-set semantic cache for free-text coaching queries.
package cache

import (
	"time"

	"github.com/liftwise/coach/pkg/types"
)

// Config holds immutable construction-time settings for ResponseCache.
type Config struct {
	// MaxEntries caps the store. The cache never holds more entries.
	MaxEntries int

	// DefaultTTL applies when a Set passes ttl <= 0 and the feature has
	// no entry in the TTL table.
	DefaultTTL time.Duration

	// Persist enables snapshotting to device-local storage after every
	// mutating call.
	Persist bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxEntries: 200,
		DefaultTTL: 24 * time.Hour,
		Persist:    false,
	}
}

// Entry is one cached response. Mutated only by Get (hit count, recency)
// and Set (replacement).
type Entry struct {
	Key       string        `json:"key"`
	Value     string        `json:"value"`
	CreatedAt time.Time     `json:"created_at"`
	TTL       time.Duration `json:"ttl"`
	HitCount  int           `json:"hit_count"`
}

// expired reports whether the entry is stale at the given instant.
func (e *Entry) expired(now time.Time) bool {
	return now.After(e.CreatedAt.Add(e.TTL))
}

// Stats holds counters for monitoring.
type Stats struct {
	Entries   int     `json:"entries"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Sets      int64   `json:"sets"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// featureTTLs maps feature classes to default lifetimes. Volatile content
// (motivational lines) ages out within the hour; static form guidance is
// good for a month.
var featureTTLs = map[types.Feature]time.Duration{
	types.FeatureMotivation:     time.Hour,
	types.FeatureCoaching:       6 * time.Hour,
	types.FeatureExplanation:    24 * time.Hour,
	types.FeatureWorkoutSummary: 7 * 24 * time.Hour,
	types.FeatureFormGuidance:   30 * 24 * time.Hour,
}

// TTLFor returns the default TTL for a feature, falling back to fallback
// when the feature has no table entry.
func TTLFor(feature types.Feature, fallback time.Duration) time.Duration {
	if ttl, ok := featureTTLs[feature]; ok {
		return ttl
	}
	return fallback
}
