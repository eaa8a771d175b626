// Package agent answers free-text coaching questions by planning and
// executing a short sequence of local analysis steps, then generating
// the final text remotely when possible and from templates when not.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liftwise/coach/internal/assemble"
	"github.com/liftwise/coach/internal/fallback"
	"github.com/liftwise/coach/internal/observability"
	"github.com/liftwise/coach/internal/policy"
	"github.com/liftwise/coach/internal/remote"
	"github.com/liftwise/coach/internal/tokenizer"
	"github.com/liftwise/coach/pkg/types"
)

// RemoteGenerator is the slice of the remote client the agent needs.
type RemoteGenerator interface {
	Available() bool
	Model(large bool) string
	Generate(ctx context.Context, prompt string, opts remote.GenOptions, feature types.Feature) (*remote.Result, error)
}

// Config tunes the agent.
type Config struct {
	// MaxContextUnits bounds the compressed context handed to the
	// remote model.
	MaxContextUnits int

	// KnowledgeTopK is how many snippets to pull per query.
	KnowledgeTopK int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{MaxContextUnits: 400, KnowledgeTopK: 3}
}

// Agent plans and executes coaching answers.
type Agent struct {
	cfg       Config
	remote    RemoteGenerator
	engine    types.SuggestionEngine
	knowledge types.KnowledgeSearcher
	assembler *assemble.Assembler
	gen       *fallback.Generator
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// New creates an Agent. remote, engine, and knowledge may each be nil;
// the corresponding steps then degrade to template output.
func New(cfg Config, rg RemoteGenerator, engine types.SuggestionEngine, knowledge types.KnowledgeSearcher, gen *fallback.Generator, logger *observability.Logger, metrics *observability.Metrics) *Agent {
	if cfg.MaxContextUnits <= 0 {
		cfg.MaxContextUnits = DefaultConfig().MaxContextUnits
	}
	if cfg.KnowledgeTopK <= 0 {
		cfg.KnowledgeTopK = DefaultConfig().KnowledgeTopK
	}
	if gen == nil {
		gen = fallback.New()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Agent{
		cfg:       cfg,
		remote:    rg,
		engine:    engine,
		knowledge: knowledge,
		assembler: assemble.New(logger),
		gen:       gen,
		logger:    logger.WithFields("component", "agent"),
		metrics:   metrics,
	}
}

// Request is one coaching question plus whatever data the host has.
type Request struct {
	Query          string
	Exercise       string // optional target exercise
	Profile        *types.UserProfile
	CurrentSession *types.WorkoutSession
	History        []types.WorkoutSession // most recent first
	Records        []types.PersonalRecord
	Biomarkers     *types.BiomarkerSnapshot
}

// TraceEntry records one executed step for debugging and cost reports.
type TraceEntry struct {
	Step      Step   `json:"step"`
	Input     string `json:"input,omitempty"`
	Output    string `json:"output"`
	Rationale string `json:"rationale"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// Result is the agent's final answer plus its execution trace.
type Result struct {
	Text      string       `json:"text"`
	Intent    Intent       `json:"intent"`
	Source    types.Source `json:"source"`
	Trace     []TraceEntry `json:"trace"`
	UnitsUsed int          `json:"units_used"`
	Elapsed   time.Duration `json:"-"`
}

// runState accumulates step output across one plan execution.
type runState struct {
	facts     fallback.Facts
	trendNote string
	snippets  []types.KnowledgeSnippet
}

// Answer classifies the query, runs the intent's plan, and returns the
// terminal step's output. Individual step failures degrade the answer
// but never abort the plan.
func (a *Agent) Answer(ctx context.Context, req Request) (*Result, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	intent := ClassifyIntent(req.Query)
	plan := PlanFor(intent)
	a.logger.Debug("plan selected", "intent", intent, "steps", len(plan))

	res := &Result{Intent: intent}
	st := &runState{}
	st.facts.Session = req.CurrentSession
	if st.facts.Session == nil && len(req.History) > 0 {
		st.facts.Session = &req.History[0]
	}
	st.facts.ExerciseName = req.Exercise

	start := time.Now()
	for _, step := range plan {
		stepStart := time.Now()
		entry := TraceEntry{Step: step}
		switch step {
		case StepAnalyzeHistory:
			a.analyzeHistory(req, st, &entry)
		case StepCheckRecovery:
			a.checkRecovery(req, st, &entry)
		case StepSuggestExercise:
			a.suggestExercise(ctx, req, st, &entry)
		case StepGenerateResponse:
			a.generateResponse(ctx, req, st, res, &entry)
		}
		entry.ElapsedMs = time.Since(stepStart).Milliseconds()
		res.Trace = append(res.Trace, entry)
	}
	res.Elapsed = time.Since(start)

	return res, nil
}

// analyzeHistory derives a volume trend over recent sessions and flags
// plateaus. Pure local computation; it cannot fail.
func (a *Agent) analyzeHistory(req Request, st *runState, entry *TraceEntry) {
	history := req.History
	if len(history) > assemble.MaxHistorySessions {
		history = history[:assemble.MaxHistorySessions]
	}
	entry.Input = fmt.Sprintf("%d sessions", len(history))

	if len(history) < 2 {
		entry.Output = "not enough history for a trend"
		entry.Rationale = "need at least two sessions"
		return
	}

	newest := history[0].TotalVolume()
	var olderSum float64
	for _, s := range history[1:] {
		olderSum += s.TotalVolume()
	}
	olderAvg := olderSum / float64(len(history)-1)

	var deltaPct float64
	if olderAvg > 0 {
		deltaPct = (newest - olderAvg) / olderAvg * 100
	}
	if len(history) >= 3 && deltaPct > -5 && deltaPct < 5 {
		st.facts.Plateau = true
	}

	st.trendNote = fmt.Sprintf("volume %+.1f%% vs recent average", deltaPct)
	entry.Output = st.trendNote
	if st.facts.Plateau {
		entry.Rationale = "volume flat across recent sessions, plateau flagged"
	} else {
		entry.Rationale = "compared newest session volume to the recent average"
	}
}

// checkRecovery scores readiness from the biomarker snapshot.
func (a *Agent) checkRecovery(req Request, st *runState, entry *TraceEntry) {
	score, ok := RecoveryScore(req.Biomarkers)
	if !ok {
		entry.Output = "no biomarker data"
		entry.Rationale = "recovery unknown without a biomarker snapshot"
		return
	}
	st.facts.HasRecovery = true
	st.facts.RecoveryScore = score
	entry.Output = fmt.Sprintf("recovery score %.0f/100", score)
	entry.Rationale = "scored from sleep, soreness, HRV, and resting HR"
}

// RecoveryScore maps a biomarker snapshot onto a 0-100 readiness score.
// Deterministic so tests and fallbacks can reproduce it.
func RecoveryScore(b *types.BiomarkerSnapshot) (float64, bool) {
	if b == nil {
		return 0, false
	}
	score := 60.0
	if b.SleepHours > 0 {
		adj := (b.SleepHours - 7) * 5
		if adj > 15 {
			adj = 15
		}
		if adj < -15 {
			adj = -15
		}
		score += adj
	}
	score -= float64(b.Soreness) * 5
	if b.HRV > 0 {
		switch {
		case b.HRV >= 70:
			score += 10
		case b.HRV < 50:
			score -= 10
		}
	}
	if b.RestingHR > 0 {
		switch {
		case b.RestingHR > 70:
			score -= 10
		case b.RestingHR < 55:
			score += 5
		}
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, true
}

// suggestExercise asks the local suggestion engine for a number. Engine
// failure is recorded and skipped, not propagated.
func (a *Agent) suggestExercise(ctx context.Context, req Request, st *runState, entry *TraceEntry) {
	exercise := req.Exercise
	if exercise == "" {
		entry.Output = "no target exercise"
		entry.Rationale = "query did not name an exercise"
		return
	}
	entry.Input = exercise

	ec := types.ExerciseContext{Exercise: exercise}
	seen := false
	for _, s := range req.History {
		for _, ex := range s.Exercises {
			if strings.EqualFold(ex.Name, exercise) {
				seen = true
				if len(ec.RecentSets) == 0 && len(ex.Sets) > 0 {
					ec.RecentSets = ex.Sets
					last := ex.Sets[len(ex.Sets)-1]
					ec.LastWeight = last.Weight
					ec.LastReps = last.Reps
				}
			}
		}
	}
	st.facts.NewExercise = !seen

	if a.engine == nil {
		entry.Output = "no suggestion engine configured"
		entry.Rationale = "skipped, answer will rely on history and recovery only"
		return
	}

	sug, err := a.engine.ComputeSuggestion(ctx, ec)
	if err != nil {
		a.logger.Warn("suggestion engine failed", "exercise", exercise, "error", err)
		entry.Output = "suggestion unavailable"
		entry.Rationale = "local engine error, continuing without a number"
		return
	}
	st.facts.Suggestion = sug
	entry.Output = fmt.Sprintf("suggested %.1f (confidence %.2f)", sug.Value, sug.Confidence)
	entry.Rationale = "local suggestion engine output, authoritative"
}

// generateResponse is the terminal step: compress context, gather
// knowledge, consult the policy, then generate remotely or fall back.
// A remote failure here falls through to the fallback generator built
// from the facts the earlier steps already computed.
func (a *Agent) generateResponse(ctx context.Context, req Request, st *runState, res *Result, entry *TraceEntry) {
	compressed := a.assembler.Compress(a.assembler.Build(assemble.Input{
		Profile:        req.Profile,
		CurrentSession: req.CurrentSession,
		History:        req.History,
		Records:        req.Records,
		Biomarkers:     req.Biomarkers,
	}), a.cfg.MaxContextUnits)

	if a.knowledge != nil {
		snippets, err := a.knowledge.Search(ctx, req.Query, a.cfg.KnowledgeTopK)
		if err != nil {
			a.logger.Debug("knowledge search failed", "error", err)
		} else {
			st.snippets = snippets
		}
	}

	online := a.remote != nil && a.remote.Available()
	decision := policy.Decide(policy.Input{
		Feature:              types.FeatureCoaching,
		NeedsNaturalLanguage: true,
		NeedsPersonalization: req.Profile != nil,
		ContextUnits:         tokenizer.EstimateUnits(compressed),
		Online:               online,
	})
	entry.Input = string(decision.Route)

	if decision.UseRemote {
		prompt := a.buildPrompt(req.Query, compressed, st)
		out, err := a.remote.Generate(ctx, prompt, remote.GenOptions{
			Model:       a.remote.Model(decision.LargeModel),
			System:      coachSystemPrompt,
			MaxTokens:   400,
			Temperature: 0.7,
		}, types.FeatureCoaching)
		if err == nil {
			res.Text = out.Text
			res.Source = types.SourceRemote
			res.UnitsUsed += out.UnitsUsed
			entry.Output = out.Text
			entry.Rationale = "remote generation with compressed context"
			return
		}
		a.logger.Info("remote generation failed, falling back", "error", err)
	}

	res.Text = a.fallbackAnswer(res.Intent, st)
	res.Source = types.SourceFallback
	entry.Output = res.Text
	entry.Rationale = decision.Reasoning + "; answered from local facts"
}

const coachSystemPrompt = "You are a concise, evidence-based strength coach. " +
	"Answer in a few sentences using the athlete context provided. " +
	"Never invent numbers that are not in the context."

func (a *Agent) buildPrompt(query, compressed string, st *runState) string {
	var sb strings.Builder
	if compressed != "" {
		sb.WriteString(compressed)
		sb.WriteString("\n")
	}
	if st.trendNote != "" {
		sb.WriteString("Trend: " + st.trendNote + "\n")
	}
	if st.facts.HasRecovery {
		fmt.Fprintf(&sb, "Recovery score: %.0f/100\n", st.facts.RecoveryScore)
	}
	if s := st.facts.Suggestion; s != nil {
		fmt.Fprintf(&sb, "Local suggestion for %s: %.1f\n", st.facts.ExerciseName, s.Value)
	}
	for _, sn := range st.snippets {
		sb.WriteString("Reference: " + sn.Content + "\n")
	}
	sb.WriteString("Question: " + query)
	return sb.String()
}

func (a *Agent) fallbackAnswer(intent Intent, st *runState) string {
	switch intent {
	case IntentMotivation:
		return a.gen.MotivationalLine(st.facts)
	case IntentForm:
		return a.gen.FormGuidance(st.facts)
	default:
		return a.gen.CoachingAnswer(st.facts)
	}
}
