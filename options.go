package coach

import (
	"net/http"
	"time"

	"github.com/liftwise/coach/internal/agent"
	"github.com/liftwise/coach/internal/budget"
	"github.com/liftwise/coach/internal/cache"
	"github.com/liftwise/coach/internal/config"
	"github.com/liftwise/coach/internal/observability"
	"github.com/liftwise/coach/internal/provider"
	"github.com/liftwise/coach/internal/remote"
	"github.com/liftwise/coach/internal/storage"
	"github.com/liftwise/coach/pkg/types"
)

// SemanticConfig tunes the similarity cache used for coaching queries.
type SemanticConfig struct {
	Enabled    bool
	Threshold  float64
	MaxEntries int
	TTL        time.Duration
}

// ClientConfig holds all configuration for the coach client.
type ClientConfig struct {
	// Provider credentials. Ignored when a Provider instance is set.
	APIKey  string
	BaseURL string

	// Provider is a custom provider adapter (for advanced use).
	Provider provider.Provider

	// Remote client tuning.
	Remote remote.Config

	// Caching.
	Cache    cache.Config
	Semantic SemanticConfig

	// Budget quotas.
	Limits budget.Limits

	// Storage backend. Store wins over Backend/Path when set.
	Store          storage.Store
	StorageBackend string // memory, file, sqlite
	StoragePath    string

	// Collaborators.
	Engine    types.SuggestionEngine
	Knowledge types.KnowledgeSearcher

	// Agent tuning.
	Agent agent.Config

	// FallbackSeed pins the fallback template rotation. Zero seeds from
	// the wall clock.
	FallbackSeed int64

	// Observability.
	Logger  *observability.Logger
	Metrics *observability.Metrics

	// Transport overrides the HTTP transport for remote calls.
	Transport http.RoundTripper
}

// Option is a function that configures the Client.
type Option func(*ClientConfig)

// defaultClientConfig returns sensible defaults.
func defaultClientConfig() *ClientConfig {
	cacheCfg := cache.DefaultConfig()
	cacheCfg.Persist = true
	return &ClientConfig{
		Remote: remote.DefaultConfig(),
		Cache:  cacheCfg,
		Semantic: SemanticConfig{
			Enabled:    true,
			Threshold:  cache.DefaultSimilarityThreshold,
			MaxEntries: cache.DefaultSemanticCap,
			TTL:        cache.DefaultSemanticTTL,
		},
		Limits:         budget.DefaultLimits(),
		StorageBackend: "memory",
		Agent:          agent.DefaultConfig(),
	}
}

// WithAPIKey sets the remote provider API key.
func WithAPIKey(key string) Option {
	return func(c *ClientConfig) { c.APIKey = key }
}

// WithBaseURL overrides the remote provider endpoint.
func WithBaseURL(url string) Option {
	return func(c *ClientConfig) { c.BaseURL = url }
}

// WithProvider installs a custom provider adapter.
func WithProvider(p provider.Provider) Option {
	return func(c *ClientConfig) { c.Provider = p }
}

// WithRemote replaces the remote client configuration.
func WithRemote(cfg remote.Config) Option {
	return func(c *ClientConfig) { c.Remote = cfg }
}

// WithCache replaces the response cache configuration.
func WithCache(cfg cache.Config) Option {
	return func(c *ClientConfig) { c.Cache = cfg }
}

// WithSemantic replaces the semantic cache configuration.
func WithSemantic(cfg SemanticConfig) Option {
	return func(c *ClientConfig) { c.Semantic = cfg }
}

// WithLimits sets the usage quotas.
func WithLimits(limits Limits) Option {
	return func(c *ClientConfig) { c.Limits = limits }
}

// WithStorage installs a storage backend instance.
func WithStorage(s storage.Store) Option {
	return func(c *ClientConfig) { c.Store = s }
}

// WithSuggestionEngine installs the local suggestion engine.
func WithSuggestionEngine(e types.SuggestionEngine) Option {
	return func(c *ClientConfig) { c.Engine = e }
}

// WithKnowledge installs a knowledge retriever. The built-in static
// corpus is used when none is provided.
func WithKnowledge(k types.KnowledgeSearcher) Option {
	return func(c *ClientConfig) { c.Knowledge = k }
}

// WithAgent replaces the agent configuration.
func WithAgent(cfg agent.Config) Option {
	return func(c *ClientConfig) { c.Agent = cfg }
}

// WithFallbackSeed pins fallback template rotation for reproducibility.
func WithFallbackSeed(seed int64) Option {
	return func(c *ClientConfig) { c.FallbackSeed = seed }
}

// WithLogger sets the structured logger.
func WithLogger(l *observability.Logger) Option {
	return func(c *ClientConfig) { c.Logger = l }
}

// WithMetrics installs Prometheus instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *ClientConfig) { c.Metrics = m }
}

// WithTransport overrides the HTTP transport for remote calls.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *ClientConfig) { c.Transport = rt }
}

// FromConfig maps a loaded configuration file onto client options.
func FromConfig(cfg *config.Config) Option {
	return func(c *ClientConfig) {
		c.APIKey = cfg.Provider.APIKey
		c.BaseURL = cfg.Provider.BaseURL
		c.Remote = remote.Config{
			Model:             cfg.Remote.Model,
			LargeModel:        cfg.Remote.LargeModel,
			MaxRetries:        cfg.Remote.MaxRetries,
			RetryBackoff:      cfg.Remote.RetryBackoff,
			AttemptTimeout:    cfg.Remote.AttemptTimeout,
			RequestsPerMinute: cfg.Remote.RequestsPerMinute,
		}
		c.Cache = cache.Config{
			MaxEntries: cfg.Cache.MaxEntries,
			DefaultTTL: cfg.Cache.DefaultTTL,
			Persist:    cfg.Cache.Persist,
		}
		c.Semantic = SemanticConfig{
			Enabled:    cfg.Cache.Semantic.Enabled,
			Threshold:  cfg.Cache.Semantic.Threshold,
			MaxEntries: cfg.Cache.Semantic.MaxEntries,
			TTL:        cfg.Cache.Semantic.TTL,
		}
		c.Limits = budget.Limits{
			DailyUnits:   cfg.Budget.DailyUnits,
			MonthlyUnits: cfg.Budget.MonthlyUnits,
		}
		c.StorageBackend = cfg.Storage.Backend
		c.StoragePath = cfg.Storage.Path
	}
}
