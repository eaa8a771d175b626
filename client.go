package coach

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/liftwise/coach/internal/agent"
	"github.com/liftwise/coach/internal/assemble"
	"github.com/liftwise/coach/internal/budget"
	"github.com/liftwise/coach/internal/cache"
	"github.com/liftwise/coach/internal/fallback"
	"github.com/liftwise/coach/internal/observability"
	"github.com/liftwise/coach/internal/policy"
	"github.com/liftwise/coach/internal/provider"
	"github.com/liftwise/coach/internal/remote"
	"github.com/liftwise/coach/internal/storage"
	"github.com/liftwise/coach/internal/tokenizer"
	aierrors "github.com/liftwise/coach/pkg/errors"
	"github.com/liftwise/coach/pkg/types"
)

// Client is the public entry point. All five operations return the
// uniform envelope; an error return signals a contract violation by the
// caller, never an expected failure like being offline.
type Client struct {
	cfg       *ClientConfig
	logger    *observability.Logger
	metrics   *observability.Metrics
	store     storage.Store
	cache     *cache.ResponseCache
	semantic  *cache.SemanticCache
	budget    *budget.Tracker
	remote    *remote.Client
	gen       *fallback.Generator
	agent     *agent.Agent
	assembler *assemble.Assembler
}

// New creates a Client.
func New(opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}

	store := cfg.Store
	if store == nil {
		var err error
		switch cfg.StorageBackend {
		case "", "memory":
			store = storage.NewMemStore()
		case "file":
			store, err = storage.NewFileStore(cfg.StoragePath)
		case "sqlite":
			store, err = storage.NewSQLiteStore(cfg.StoragePath)
		default:
			err = fmt.Errorf("coach: unknown storage backend %q", cfg.StorageBackend)
		}
		if err != nil {
			return nil, err
		}
	}

	prov := cfg.Provider
	if prov == nil {
		provOpts := []provider.OpenAIOption{provider.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			provOpts = append(provOpts, provider.WithBaseURL(cfg.BaseURL))
		}
		prov = provider.NewOpenAI(provOpts...)
	}

	cfg.Remote.Transport = cfg.Transport
	tracker := budget.NewTracker(cfg.Limits, store, logger)
	remoteClient := remote.New(cfg.Remote, prov, tracker, logger, cfg.Metrics)

	var genOpts []fallback.Option
	if cfg.FallbackSeed != 0 {
		genOpts = append(genOpts, fallback.WithSeed(cfg.FallbackSeed))
	}
	genOpts = append(genOpts, fallback.WithLogger(logger))
	gen := fallback.New(genOpts...)

	knowledge := cfg.Knowledge
	if knowledge == nil {
		knowledge = agent.NewStaticSearcher()
	}

	var semantic *cache.SemanticCache
	if cfg.Semantic.Enabled {
		semantic = cache.NewSemantic(cfg.Semantic.MaxEntries, cfg.Semantic.Threshold, cfg.Semantic.TTL)
	}

	c := &Client{
		cfg:       cfg,
		logger:    logger.WithFields("component", "coach"),
		metrics:   cfg.Metrics,
		store:     store,
		cache:     cache.New(cfg.Cache, store, logger),
		semantic:  semantic,
		budget:    tracker,
		remote:    remoteClient,
		gen:       gen,
		agent:     agent.New(cfg.Agent, remoteClient, cfg.Engine, knowledge, gen, logger, cfg.Metrics),
		assembler: assemble.New(logger),
	}
	return c, nil
}

// SetOnline lets the host report network reachability.
func (c *Client) SetOnline(online bool) {
	c.remote.SetOnline(online)
}

// Budget exposes the usage tracker snapshot.
func (c *Client) Budget() budget.Snapshot {
	return c.budget.Snapshot()
}

// Close releases the storage backend.
func (c *Client) Close() error {
	return c.store.Close()
}

// ExplanationRequest asks why a suggestion is what it is.
type ExplanationRequest struct {
	UserID     string
	Exercise   string
	Suggestion *Suggestion // required; local engine output, authoritative
	Profile    *UserProfile
	Session    *WorkoutSession
	Biomarkers *BiomarkerSnapshot
}

// GetExplanation explains a local suggestion in natural language. The
// numeric suggestion is never altered; the remote model only phrases it.
func (c *Client) GetExplanation(ctx context.Context, req ExplanationRequest) (*Response, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("coach: user id is required")
	}
	if req.Suggestion == nil {
		return nil, fmt.Errorf("coach: suggestion is required")
	}
	start := time.Now()

	key := cache.GenerateKey(types.FeatureExplanation, map[string]any{
		"user":      req.UserID,
		"exercise":  req.Exercise,
		"value":     req.Suggestion.Value,
		"rationale": req.Suggestion.Rationale,
	})
	if hit, ok := c.cacheGet(key); ok {
		return c.respond(start, types.FeatureExplanation, types.SourceCache, hit, 0, nil), nil
	}

	facts := fallback.Facts{
		Suggestion:   req.Suggestion,
		Session:      req.Session,
		ExerciseName: req.Exercise,
	}
	if score, ok := agent.RecoveryScore(req.Biomarkers); ok {
		facts.HasRecovery = true
		facts.RecoveryScore = score
	}

	compressed := c.compress(req.Profile, req.Session, nil, nil, req.Biomarkers)
	decision := policy.Decide(policy.Input{
		Feature:              types.FeatureExplanation,
		HasLocal:             true,
		NeedsNaturalLanguage: true,
		NeedsPersonalization: req.Profile != nil,
		ContextUnits:         tokenizer.EstimateUnits(compressed),
		Online:               c.remote.Available(),
	})

	if decision.UseRemote {
		prompt := fmt.Sprintf(
			"%s\nSuggestion for %s: %.1f (range %.1f-%.1f, confidence %.2f).\n"+
				"Explain in two sentences why this load makes sense for this athlete today.",
			compressed, req.Exercise, req.Suggestion.Value,
			req.Suggestion.Range[0], req.Suggestion.Range[1], req.Suggestion.Confidence)
		res, err := c.remote.Generate(ctx, prompt, remote.GenOptions{
			Model:       c.remote.Model(decision.LargeModel),
			System:      explainSystemPrompt,
			MaxTokens:   200,
			Temperature: 0.5,
		}, types.FeatureExplanation)
		if err == nil {
			c.cacheSet(key, res.Text, types.FeatureExplanation)
			return c.respond(start, types.FeatureExplanation, types.SourceRemote, res.Text, res.UnitsUsed, nil), nil
		}
		return c.respond(start, types.FeatureExplanation, types.SourceFallback, c.gen.Explanation(facts), 0, err), nil
	}

	return c.respond(start, types.FeatureExplanation, types.SourceFallback, c.gen.Explanation(facts), 0, nil), nil
}

// SummaryRequest asks for a recap of a finished session.
type SummaryRequest struct {
	UserID  string
	Session *WorkoutSession // required
	Records []PersonalRecord // records set during this session
	Profile *UserProfile
}

// GetWorkoutSummary recaps a session. The stats quoted always come from
// the session itself, never from model output.
func (c *Client) GetWorkoutSummary(ctx context.Context, req SummaryRequest) (*Response, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("coach: user id is required")
	}
	if req.Session == nil {
		return nil, fmt.Errorf("coach: session is required")
	}
	start := time.Now()

	key := cache.GenerateKey(types.FeatureWorkoutSummary, map[string]any{
		"user":    req.UserID,
		"session": req.Session.ID,
		"sets":    req.Session.SetCount(),
		"volume":  req.Session.TotalVolume(),
	})
	if hit, ok := c.cacheGet(key); ok {
		return c.respond(start, types.FeatureWorkoutSummary, types.SourceCache, hit, 0, nil), nil
	}

	facts := fallback.Facts{Session: req.Session, PRCount: len(req.Records)}

	compressed := c.compress(req.Profile, req.Session, nil, req.Records, nil)
	decision := policy.Decide(policy.Input{
		Feature:              types.FeatureWorkoutSummary,
		HasLocal:             true,
		NeedsNaturalLanguage: true,
		NeedsPersonalization: req.Profile != nil,
		ContextUnits:         tokenizer.EstimateUnits(compressed),
		Online:               c.remote.Available(),
	})

	if decision.UseRemote {
		prompt := compressed + "\nWrite a short, encouraging recap of the current session. " +
			"Quote only numbers present above."
		res, err := c.remote.Generate(ctx, prompt, remote.GenOptions{
			Model:       c.remote.Model(decision.LargeModel),
			System:      explainSystemPrompt,
			MaxTokens:   250,
			Temperature: 0.7,
		}, types.FeatureWorkoutSummary)
		if err == nil {
			c.cacheSet(key, res.Text, types.FeatureWorkoutSummary)
			return c.respond(start, types.FeatureWorkoutSummary, types.SourceRemote, res.Text, res.UnitsUsed, nil), nil
		}
		return c.respond(start, types.FeatureWorkoutSummary, types.SourceFallback, c.gen.WorkoutSummary(facts), 0, err), nil
	}

	return c.respond(start, types.FeatureWorkoutSummary, types.SourceFallback, c.gen.WorkoutSummary(facts), 0, nil), nil
}

// MotivationRequest asks for a short motivational line.
type MotivationRequest struct {
	UserID     string
	Profile    *UserProfile
	Biomarkers *BiomarkerSnapshot
}

// GetMotivationalLine returns a one-liner. Cached per user with a short
// TTL so it rotates through the day.
func (c *Client) GetMotivationalLine(ctx context.Context, req MotivationRequest) (*Response, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("coach: user id is required")
	}
	start := time.Now()

	key := cache.GenerateKey(types.FeatureMotivation, map[string]any{"user": req.UserID})
	if hit, ok := c.cacheGet(key); ok {
		return c.respond(start, types.FeatureMotivation, types.SourceCache, hit, 0, nil), nil
	}

	facts := fallback.Facts{}
	if score, ok := agent.RecoveryScore(req.Biomarkers); ok {
		facts.HasRecovery = true
		facts.RecoveryScore = score
	}

	decision := policy.Decide(policy.Input{
		Feature:              types.FeatureMotivation,
		HasLocal:             true,
		NeedsNaturalLanguage: true,
		Online:               c.remote.Available(),
	})

	if decision.UseRemote {
		name := req.UserID
		if req.Profile != nil && req.Profile.Name != "" {
			name = req.Profile.Name
		}
		prompt := fmt.Sprintf("Write one short motivational line for %s, a lifter heading into a session. No hashtags.", name)
		res, err := c.remote.Generate(ctx, prompt, remote.GenOptions{
			Model:       c.remote.Model(false),
			MaxTokens:   60,
			Temperature: 1.0,
		}, types.FeatureMotivation)
		if err == nil {
			c.cacheSet(key, res.Text, types.FeatureMotivation)
			return c.respond(start, types.FeatureMotivation, types.SourceRemote, res.Text, res.UnitsUsed, nil), nil
		}
		return c.respond(start, types.FeatureMotivation, types.SourceFallback, c.gen.MotivationalLine(facts), 0, err), nil
	}

	return c.respond(start, types.FeatureMotivation, types.SourceFallback, c.gen.MotivationalLine(facts), 0, nil), nil
}

// CoachingRequest is a free-text question plus available user data.
type CoachingRequest struct {
	UserID     string
	Query      string // required
	Exercise   string
	Profile    *UserProfile
	Session    *WorkoutSession
	History    []WorkoutSession
	Records    []PersonalRecord
	Biomarkers *BiomarkerSnapshot
}

// GetCoachingAnswer answers a free-text question through the reasoning
// agent, consulting the exact and semantic caches first.
func (c *Client) GetCoachingAnswer(ctx context.Context, req CoachingRequest) (*Response, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("coach: user id is required")
	}
	if req.Query == "" {
		return nil, fmt.Errorf("coach: query is required")
	}
	start := time.Now()

	key := cache.GenerateKey(types.FeatureCoaching, map[string]any{
		"user":  req.UserID,
		"query": req.Query,
	})
	if hit, ok := c.cacheGet(key); ok {
		return c.respond(start, types.FeatureCoaching, types.SourceCache, hit, 0, nil), nil
	}

	if c.semantic != nil {
		if hit, sim, ok := c.semantic.Get(req.Query); ok {
			c.metrics.CacheHit("semantic")
			c.logger.Debug("semantic cache hit", "similarity", sim)
			return c.respond(start, types.FeatureCoaching, types.SourceCache, hit, 0, nil), nil
		}
		c.metrics.CacheMiss("semantic")
	}

	res, err := c.agent.Answer(ctx, agent.Request{
		Query:          req.Query,
		Exercise:       req.Exercise,
		Profile:        req.Profile,
		CurrentSession: req.Session,
		History:        req.History,
		Records:        req.Records,
		Biomarkers:     req.Biomarkers,
	})
	if err != nil {
		return nil, err
	}

	if res.Source == types.SourceRemote {
		c.cacheSet(key, res.Text, types.FeatureCoaching)
		if c.semantic != nil {
			c.semantic.Set(req.Query, res.Text, c.cfg.Semantic.TTL)
		}
	}

	resp := c.respond(start, types.FeatureCoaching, res.Source, res.Text, res.UnitsUsed, nil)
	if res.Source == types.SourceFallback && c.remote.Available() {
		resp.Notice = "answered from local data"
	}
	return resp, nil
}

// StatusReport aggregates the health of the whole layer.
type StatusReport struct {
	Remote   remote.Status `json:"remote"`
	Cache    cache.Stats   `json:"cache"`
	Semantic *cache.Stats  `json:"semantic,omitempty"`
}

// Status returns the structured status report.
func (c *Client) Status() StatusReport {
	r := StatusReport{
		Remote: c.remote.Status(),
		Cache:  c.cache.Stats(),
	}
	if c.semantic != nil {
		s := c.semantic.Stats()
		r.Semantic = &s
	}
	return r
}

// GetAIStatus returns the status report in the uniform envelope, with
// the report JSON-encoded in Data.
func (c *Client) GetAIStatus(_ context.Context) (*Response, error) {
	start := time.Now()
	data, err := json.Marshal(c.Status())
	if err != nil {
		return nil, fmt.Errorf("coach: encode status: %w", err)
	}
	return c.respond(start, "status", types.SourceLocal, string(data), 0, nil), nil
}

const explainSystemPrompt = "You are a concise strength coach. " +
	"Ground every statement in the athlete context provided and never invent numbers."

func (c *Client) cacheGet(key string) (string, bool) {
	v, ok := c.cache.Get(key)
	if ok {
		c.metrics.CacheHit("exact")
		return v, true
	}
	c.metrics.CacheMiss("exact")
	return "", false
}

func (c *Client) cacheSet(key, value string, feature types.Feature) {
	c.cache.Set(key, value, cache.TTLFor(feature, c.cfg.Cache.DefaultTTL))
}

func (c *Client) compress(p *UserProfile, s *WorkoutSession, history []WorkoutSession, records []PersonalRecord, b *BiomarkerSnapshot) string {
	return c.assembler.Compress(c.assembler.Build(assemble.Input{
		Profile:        p,
		CurrentSession: s,
		History:        history,
		Records:        records,
		Biomarkers:     b,
	}), c.cfg.Agent.MaxContextUnits)
}

// respond builds the envelope. Fallback responses stay successful; the
// error, when present, is carried as text so the UI can show a subdued
// notice instead of failing.
func (c *Client) respond(start time.Time, feature types.Feature, source types.Source, data string, units int, err error) *Response {
	resp := &Response{
		Success:   true,
		Data:      data,
		Source:    source,
		LatencyMs: time.Since(start).Milliseconds(),
		UnitsUsed: units,
		RequestID: uuid.New().String(),
	}
	if err != nil {
		resp.Error = err.Error()
		if ae, ok := aierrors.As(err); ok {
			switch ae.Type {
			case aierrors.TypeBudgetExceeded:
				resp.Notice = "usage limit reached, using saved recommendations"
			case aierrors.TypeUnavailable:
				resp.Notice = "offline, using saved recommendations"
			}
		}
	}
	c.metrics.Response(string(source))
	if source == types.SourceFallback {
		c.metrics.Fallback(string(feature))
	}
	return resp
}
