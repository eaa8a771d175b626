package cache

import (
	"strings"
	"sync"
	"time"
	"unicode"
)

// Semantic cache defaults. The threshold is deliberately strict: a
// paraphrase should hit, a different question should not.
const (
	DefaultSimilarityThreshold = 0.8
	DefaultSemanticCap         = 50
	DefaultSemanticTTL         = 6 * time.Hour
	minTokenLen                = 3
)

// stopWords are filtered before comparison; they carry no topical signal.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "has": {}, "him": {}, "his": {},
	"how": {}, "man": {}, "new": {}, "now": {}, "old": {}, "see": {},
	"two": {}, "way": {}, "who": {}, "did": {}, "get": {}, "may": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "with": {},
	"this": {}, "that": {}, "will": {}, "your": {}, "from": {},
	"they": {}, "have": {}, "been": {}, "much": {}, "some": {},
	"should": {}, "could": {}, "would": {}, "about": {}, "there": {},
	"their": {}, "doing": {}, "does": {},
}

// SemanticEntry is one stored free-text query with its response.
type SemanticEntry struct {
	Query     string
	Response  string
	CreatedAt time.Time
	TTL       time.Duration

	tokens map[string]struct{}
}

// SemanticCache matches near-duplicate natural-language queries by
// token-set similarity. It is a bounded FIFO list, independent of the
// exact-key cache, and used only for free-text coaching queries.
type SemanticCache struct {
	mu         sync.Mutex
	entries    []*SemanticEntry // oldest first
	cap        int
	threshold  float64
	defaultTTL time.Duration

	hits   int64
	misses int64

	now func() time.Time
}

// NewSemantic creates a semantic cache. Zero values select the defaults.
func NewSemantic(capacity int, threshold float64, defaultTTL time.Duration) *SemanticCache {
	if capacity <= 0 {
		capacity = DefaultSemanticCap
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultSemanticTTL
	}
	return &SemanticCache{
		cap:        capacity,
		threshold:  threshold,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get returns the stored response for the first non-expired entry whose
// token set is similar enough to query.
func (s *SemanticCache) Get(query string) (response string, similarity float64, ok bool) {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return "", 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var best *SemanticEntry
	var bestSim float64
	for _, e := range s.entries {
		if now.After(e.CreatedAt.Add(e.TTL)) {
			continue
		}
		if sim := Jaccard(tokens, e.tokens); sim >= s.threshold && sim > bestSim {
			best = e
			bestSim = sim
		}
	}

	if best == nil {
		s.misses++
		return "", 0, false
	}
	s.hits++
	return best.Response, bestSim, true
}

// Set stores a query/response pair, dropping the oldest entry when the
// cap is reached. Queries that tokenize to nothing are not stored.
func (s *SemanticCache) Set(query, response string, ttl time.Duration) {
	tokens := Tokenize(query)
	if len(tokens) == 0 || response == "" {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.entries) >= s.cap {
		s.entries = s.entries[1:]
	}
	s.entries = append(s.entries, &SemanticEntry{
		Query:     query,
		Response:  response,
		CreatedAt: s.now(),
		TTL:       ttl,
		tokens:    tokens,
	})
}

// PruneExpired drops expired entries and returns how many went.
func (s *SemanticCache) PruneExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	kept := s.entries[:0]
	var removed int
	for _, e := range s.entries {
		if now.After(e.CreatedAt.Add(e.TTL)) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed
}

// Len returns the number of stored entries.
func (s *SemanticCache) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stats returns hit/miss counters.
func (s *SemanticCache) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.hits + s.misses
	var rate float64
	if total > 0 {
		rate = float64(s.hits) / float64(total)
	}
	return Stats{
		Entries: len(s.entries),
		Hits:    s.hits,
		Misses:  s.misses,
		HitRate: rate,
	}
}

// Tokenize lowercases text, keeps alphanumeric runs, and filters short
// and stop words. The result is a set, so word order and repetition do
// not affect similarity.
func Tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	var sb strings.Builder

	flush := func() {
		if sb.Len() >= minTokenLen {
			word := sb.String()
			if _, stop := stopWords[word]; !stop {
				tokens[word] = struct{}{}
			}
		}
		sb.Reset()
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// Jaccard returns |a∩b| / |a∪b|, zero when both sets are empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	var inter int
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
