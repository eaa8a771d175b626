package agent

import (
	"context"
	"fmt"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/liftwise/coach/internal/cache"
	"github.com/liftwise/coach/pkg/types"
)

// StaticSearcher is a built-in knowledge retriever over a small bundled
// corpus of training facts, scored by token overlap. Results are
// memoized per query since the corpus never changes at runtime.
type StaticSearcher struct {
	docs []knowledgeDoc
	memo *gocache.Cache
}

type knowledgeDoc struct {
	content string
	tokens  map[string]struct{}
}

// NewStaticSearcher builds the searcher from the bundled corpus.
func NewStaticSearcher() *StaticSearcher {
	s := &StaticSearcher{
		memo: gocache.New(10*time.Minute, 30*time.Minute),
	}
	for _, c := range knowledgeCorpus {
		s.docs = append(s.docs, knowledgeDoc{content: c, tokens: cache.Tokenize(c)})
	}
	return s
}

// Search implements types.KnowledgeSearcher. It never errors; an
// unmatched query returns an empty slice.
func (s *StaticSearcher) Search(_ context.Context, query string, topK int) ([]types.KnowledgeSnippet, error) {
	if query == "" || topK <= 0 {
		return nil, nil
	}

	memoKey := fmt.Sprintf("%d:%s", topK, query)
	if hit, ok := s.memo.Get(memoKey); ok {
		return hit.([]types.KnowledgeSnippet), nil
	}

	qTokens := cache.Tokenize(query)
	var scored []types.KnowledgeSnippet
	for _, doc := range s.docs {
		score := cache.Jaccard(qTokens, doc.tokens)
		if score > 0 {
			scored = append(scored, types.KnowledgeSnippet{Content: doc.content, Score: score})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > topK {
		scored = scored[:topK]
	}

	s.memo.Set(memoKey, scored, gocache.DefaultExpiration)
	return scored, nil
}

// knowledgeCorpus is a small set of coaching facts used to ground
// remote prompts when no external retriever is wired in.
var knowledgeCorpus = []string{
	"Progressive overload means gradually increasing weight, reps, or sets over time; increases of 2.5 to 5 percent per week are sustainable for most lifters.",
	"RPE, rating of perceived exertion, runs 1 to 10; an RPE of 8 means roughly two reps were left in reserve at the end of the set.",
	"A deload week with 40 to 60 percent of normal volume every 4 to 6 weeks helps manage accumulated fatigue and protects long-term progress.",
	"Muscle protein synthesis stays elevated for 24 to 48 hours after training, so hitting each muscle about twice per week is an effective default frequency.",
	"Sleep under 7 hours measurably reduces strength output and recovery; consistent bedtimes matter more than occasional long nights.",
	"A plateau lasting 3 or more weeks usually calls for changing one variable, such as rep range, exercise variation, or a planned deload.",
	"Compound lifts like the squat, deadlift, bench press, and overhead press give the most stimulus per set and should anchor a strength program.",
	"Soreness is a poor proxy for workout effectiveness; performance across sessions is the better signal of recovery and progress.",
	"For hypertrophy, most evidence supports 10 to 20 hard sets per muscle group per week, spread across 2 or more sessions.",
	"Heart rate variability trends matter more than single readings; a multi-day drop in HRV suggests accumulated stress and favors lighter training.",
}
