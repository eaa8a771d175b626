// Package remote implements the budgeted, retried, timed-out client for
// the remote generative-text provider. Callers treat every returned
// error as a signal to fall back; nothing here is fatal.
package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/liftwise/coach/internal/budget"
	"github.com/liftwise/coach/internal/observability"
	"github.com/liftwise/coach/internal/provider"
	"github.com/liftwise/coach/internal/tokenizer"
	aierrors "github.com/liftwise/coach/pkg/errors"
	"github.com/liftwise/coach/pkg/types"
)

// Config holds the remote client settings.
type Config struct {
	// Model is the cheap/fast profile; LargeModel the higher-capability
	// one selected by the policy for big contexts or personalization.
	Model      string
	LargeModel string

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// RetryBackoff is the base delay; it doubles per attempt.
	RetryBackoff time.Duration

	// AttemptTimeout is the hard per-attempt deadline.
	AttemptTimeout time.Duration

	// RequestsPerMinute guards the provider independently of the budget.
	// Zero disables the limiter.
	RequestsPerMinute int

	// Transport overrides the HTTP transport when set.
	Transport http.RoundTripper
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Model:             "gpt-4o-mini",
		LargeModel:        "gpt-4o",
		MaxRetries:        2,
		RetryBackoff:      500 * time.Millisecond,
		AttemptTimeout:    15 * time.Second,
		RequestsPerMinute: 20,
	}
}

// GenOptions tunes a single generation.
type GenOptions struct {
	Model       string // empty selects cfg.Model
	System      string
	MaxTokens   int
	Temperature float64
}

// Result is a successful generation.
type Result struct {
	Text      string
	Model     string
	Provider  string
	UnitsUsed int
	Latency   time.Duration
	Attempts  int
}

// Client coordinates budget, rate limit, dispatch, and retries.
type Client struct {
	cfg      Config
	prov     provider.Provider
	http     *http.Client
	budget   *budget.Tracker
	limiter  *rate.Limiter
	logger   *observability.Logger
	metrics  *observability.Metrics
	online   atomic.Bool

	// sleep is swapped in tests to capture backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a remote client. budgetTracker is required; metrics may be
// nil.
func New(cfg Config, prov provider.Provider, budgetTracker *budget.Tracker, logger *observability.Logger, metrics *observability.Metrics) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultConfig().Model
	}
	if cfg.LargeModel == "" {
		cfg.LargeModel = cfg.Model
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultConfig().AttemptTimeout
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultConfig().RetryBackoff
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute)
	}

	c := &Client{
		cfg:     cfg,
		prov:    prov,
		http:    &http.Client{Timeout: cfg.AttemptTimeout, Transport: cfg.Transport},
		budget:  budgetTracker,
		limiter: limiter,
		logger:  logger.WithFields("component", "remote"),
		metrics: metrics,
		sleep:   sleepCtx,
	}
	c.online.Store(true)
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// SetOnline lets the host app report network reachability. The client
// never probes the network itself.
func (c *Client) SetOnline(online bool) {
	c.online.Store(online)
}

// Available reports whether a remote call could plausibly succeed. It is
// deliberately independent of budget state so the UI can distinguish
// "offline" from "out of quota".
func (c *Client) Available() bool {
	return c.online.Load() && c.prov != nil && c.prov.Configured()
}

// Status is a point-in-time view for GetAIStatus.
type Status struct {
	Available bool            `json:"available"`
	Online    bool            `json:"online"`
	Provider  string          `json:"provider"`
	Model     string          `json:"model"`
	Budget    budget.Snapshot `json:"budget"`
}

// Status returns the current availability and budget snapshot.
func (c *Client) Status() Status {
	name := ""
	if c.prov != nil {
		name = c.prov.Name()
	}
	return Status{
		Available: c.Available(),
		Online:    c.online.Load(),
		Provider:  name,
		Model:     c.cfg.Model,
		Budget:    c.budget.Snapshot(),
	}
}

// Model returns the configured profile for the given tier.
func (c *Client) Model(large bool) string {
	if large {
		return c.cfg.LargeModel
	}
	return c.cfg.Model
}

// Generate runs one budgeted, retried generation. On failure the error
// is always an *AIError the caller can map straight to a fallback.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenOptions, feature types.Feature) (*Result, error) {
	if prompt == "" {
		return nil, aierrors.NewInvalidRequest("prompt is required")
	}
	if !c.Available() {
		return nil, aierrors.NewUnavailable(c.providerName(), "remote provider unavailable")
	}

	// Budget gate. No network traffic past this point if exhausted.
	if err := c.budget.Allow(); err != nil {
		c.metrics.BudgetRejection()
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, aierrors.NewTimeout(c.providerName(), "rate limiter wait canceled: "+err.Error())
		}
	}

	model := opts.Model
	if model == "" {
		model = c.cfg.Model
	}
	req := &provider.GenRequest{
		Model:       model,
		System:      opts.System,
		Prompt:      prompt,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.RetryBackoff * time.Duration(1<<(attempt-1))
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, aierrors.NewTimeout(c.providerName(), "canceled during backoff: "+err.Error())
			}
		}

		res, err := c.executeOnce(ctx, req)
		if err == nil {
			elapsed := time.Since(start)
			units := c.recordUsage(res, req, feature, model)
			c.metrics.RemoteLatency(elapsed.Seconds())
			c.logger.Debug("remote generation succeeded",
				"feature", feature, "model", model, "units", units, "attempts", attempt+1)
			return &Result{
				Text:      res.Text,
				Model:     model,
				Provider:  c.providerName(),
				UnitsUsed: units,
				Latency:   elapsed,
				Attempts:  attempt + 1,
			}, nil
		}

		lastErr = err
		if ae, ok := aierrors.As(err); ok {
			c.metrics.RemoteFailure(ae.Type)
			if !ae.Retryable {
				break
			}
		} else {
			c.metrics.RemoteFailure(aierrors.TypeTransport)
		}
		c.logger.Debug("remote attempt failed", "attempt", attempt+1, "error", err)
	}

	return nil, c.asAIError(lastErr)
}

// executeOnce performs a single dispatch under the per-attempt timeout.
func (c *Client) executeOnce(ctx context.Context, req *provider.GenRequest) (*provider.GenResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	c.metrics.RemoteAttempt()

	httpReq, err := c.prov.BuildRequest(attemptCtx, req)
	if err != nil {
		return nil, aierrors.NewProvider(c.providerName(), "build request: "+err.Error())
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() != nil {
			return nil, aierrors.NewTimeout(c.providerName(), "attempt timed out")
		}
		return nil, aierrors.NewTransport(c.providerName(), err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, c.prov.MapError(resp.StatusCode, body)
	}

	return c.prov.ParseResponse(resp)
}

// recordUsage charges the call to the budget, preferring the provider's
// own accounting over the local estimate.
func (c *Client) recordUsage(res *provider.GenResult, req *provider.GenRequest, feature types.Feature, model string) int {
	in := res.InputUnits
	if in == 0 {
		in = tokenizer.CountTextTokens(model, req.System) + tokenizer.CountTextTokens(model, req.Prompt)
	}
	out := res.OutputUnits
	if out == 0 {
		out = tokenizer.CountTextTokens(model, res.Text)
	}
	rec := c.budget.Record(c.providerName(), string(feature), in, out, model)
	return rec.Units()
}

func (c *Client) providerName() string {
	if c.prov == nil {
		return ""
	}
	return c.prov.Name()
}

func (c *Client) asAIError(err error) error {
	if err == nil {
		return aierrors.NewUnavailable(c.providerName(), "remote call failed")
	}
	if _, ok := aierrors.As(err); ok {
		return err
	}
	return aierrors.NewTransport(c.providerName(), err.Error())
}
