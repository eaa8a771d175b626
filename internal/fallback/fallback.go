// Package fallback produces deterministic, network-independent responses
// for every natural-language feature. Generators template real local
// statistics into their output so a fallback answer still reflects the
// user's actual numbers. Every generator returns non-empty text.
package fallback

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/liftwise/coach/internal/observability"
	"github.com/liftwise/coach/pkg/types"
)

// Generator renders fallback text. Template rotation is driven by a
// seedable RNG so tests can pin the seed and assert exact output.
type Generator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger *observability.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed pins the rotation RNG for reproducible output.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger sets the logger.
func WithLogger(l *observability.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Generator seeded from the wall clock unless overridden.
func New(opts ...Option) *Generator {
	g := &Generator{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.WithFields("component", "fallback")
	return g
}

func (g *Generator) pick(templates []string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return templates[g.rng.Intn(len(templates))]
}

// Facts carries whatever local computation has already produced by the
// time a fallback is needed. Zero values mean "unknown".
type Facts struct {
	Suggestion    *types.Suggestion
	Session       *types.WorkoutSession
	RecoveryScore float64
	HasRecovery   bool
	PRCount       int
	ExerciseName  string
	Plateau       bool // trend analysis found a stalled lift
	NewExercise   bool // no history for the exercise in question
}

// Explanation renders a rationale for a numeric suggestion. The
// suggestion's own rationale is used verbatim when present; otherwise a
// bucket template is filled from its fields.
func (g *Generator) Explanation(f Facts) string {
	s := f.Suggestion
	if s == nil {
		return g.pick(genericExplanations)
	}
	if s.Rationale != "" {
		return s.Rationale
	}
	bucket := Classify(f)
	tmpl := g.pick(bucketTemplates[bucket])
	name := f.ExerciseName
	if name == "" {
		name = "this exercise"
	}
	return fmt.Sprintf(tmpl, name, s.Value)
}

// WorkoutSummary renders a session recap from the real totals.
func (g *Generator) WorkoutSummary(f Facts) string {
	sess := f.Session
	if sess == nil || len(sess.Exercises) == 0 {
		return g.pick(emptySummaries)
	}

	names := make([]string, 0, len(sess.Exercises))
	for _, ex := range sess.Exercises {
		names = append(names, ex.Name)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Solid session: %d sets across %s for %.0f kg of total volume",
		sess.SetCount(), strings.Join(names, ", "), sess.TotalVolume())
	if d := sess.Duration(); d > 0 {
		fmt.Fprintf(&sb, " in %d minutes", int(d.Minutes()))
	}
	sb.WriteString(".")
	if rpe := sess.AvgRPE(); rpe > 0 {
		fmt.Fprintf(&sb, " Average effort came in at RPE %.1f.", rpe)
	}
	if f.PRCount > 0 {
		plural := ""
		if f.PRCount > 1 {
			plural = "s"
		}
		fmt.Fprintf(&sb, " You set %d personal record%s today.", f.PRCount, plural)
	}
	sb.WriteString(" " + g.pick(summaryClosers))
	return sb.String()
}

// MotivationalLine rotates through a fixed pool.
func (g *Generator) MotivationalLine(f Facts) string {
	if f.HasRecovery && f.RecoveryScore < lowRecoveryThreshold {
		return g.pick(lowRecoveryMotivation)
	}
	return g.pick(motivationPool)
}

// CoachingAnswer renders an answer to a free-text question from the
// facts local steps already computed. It leads with the most concrete
// number available so the answer stays personalized without a network.
func (g *Generator) CoachingAnswer(f Facts) string {
	var sb strings.Builder

	if f.HasRecovery {
		fmt.Fprintf(&sb, "Your current recovery score is %.0f/100. ", f.RecoveryScore)
		if f.RecoveryScore < lowRecoveryThreshold {
			sb.WriteString(g.pick(lowRecoveryAdvice))
		} else {
			sb.WriteString(g.pick(goodRecoveryAdvice))
		}
	}

	if s := f.Suggestion; s != nil {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		name := f.ExerciseName
		if name == "" {
			name = "your next lift"
		}
		fmt.Fprintf(&sb, "For %s, the recommendation is %.1f", name, s.Value)
		if s.Range[0] != s.Range[1] {
			fmt.Fprintf(&sb, " (range %.1f-%.1f)", s.Range[0], s.Range[1])
		}
		sb.WriteString(".")
		if s.FlagCaution {
			sb.WriteString(" Ease in; your readiness suggests a conservative approach today.")
		}
	}

	if sess := f.Session; sess != nil && sess.SetCount() > 0 {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "Your last session logged %d sets and %.0f kg of volume.",
			sess.SetCount(), sess.TotalVolume())
	}

	if sb.Len() == 0 {
		return g.pick(genericCoaching)
	}
	return sb.String()
}

// FormGuidance renders static cue text for an exercise.
func (g *Generator) FormGuidance(f Facts) string {
	name := f.ExerciseName
	if name == "" {
		return g.pick(genericFormCues)
	}
	if cues, ok := formCues[strings.ToLower(name)]; ok {
		return g.pick(cues)
	}
	return fmt.Sprintf(g.pick(unknownExerciseCues), name)
}
