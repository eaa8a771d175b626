package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftwise/coach/internal/budget"
	"github.com/liftwise/coach/internal/provider"
	aierrors "github.com/liftwise/coach/pkg/errors"
	"github.com/liftwise/coach/pkg/types"
)

// fakeProvider builds requests against a stub transport.
type fakeProvider struct {
	configured bool
}

func (f *fakeProvider) Name() string     { return "fake" }
func (f *fakeProvider) Configured() bool { return f.configured }

func (f *fakeProvider) BuildRequest(ctx context.Context, req *provider.GenRequest) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodPost, "http://fake.local/generate", strings.NewReader(req.Prompt))
}

func (f *fakeProvider) ParseResponse(resp *http.Response) (*provider.GenResult, error) {
	body, _ := io.ReadAll(resp.Body)
	return &provider.GenResult{Text: string(body), InputUnits: 100, OutputUnits: 20}, nil
}

func (f *fakeProvider) MapError(statusCode int, body []byte) error {
	if statusCode >= 500 {
		return aierrors.NewTransport("fake", fmt.Sprintf("status %d", statusCode))
	}
	return aierrors.NewProvider("fake", fmt.Sprintf("status %d", statusCode))
}

// scriptedTransport returns canned status codes in order, repeating the
// last one, and counts round trips.
type scriptedTransport struct {
	statuses []int
	body     string
	calls    int
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	idx := s.calls
	if idx >= len(s.statuses) {
		idx = len(s.statuses) - 1
	}
	s.calls++
	status := s.statuses[idx]
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Header:     make(http.Header),
	}, nil
}

func newTestClient(t *testing.T, cfg Config, limits budget.Limits, rt http.RoundTripper) (*Client, *budget.Tracker) {
	t.Helper()
	tracker := budget.NewTracker(limits, nil, nil)
	c := New(cfg, &fakeProvider{configured: true}, tracker, nil, nil)
	c.http = &http.Client{Transport: rt}
	return c, tracker
}

func openLimits() budget.Limits {
	return budget.Limits{DailyUnits: budget.Unlimited, MonthlyUnits: budget.Unlimited}
}

func TestClient_GenerateSuccess(t *testing.T) {
	rt := &scriptedTransport{statuses: []int{200}, body: "Nice squat session."}
	c, tracker := newTestClient(t, Config{MaxRetries: 2, RetryBackoff: time.Millisecond}, openLimits(), rt)

	res, err := c.Generate(context.Background(), "summarize", GenOptions{}, types.FeatureWorkoutSummary)
	require.NoError(t, err)
	assert.Equal(t, "Nice squat session.", res.Text)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 120, res.UnitsUsed, "provider-reported usage")
	assert.Equal(t, "fake", res.Provider)

	snap := tracker.Snapshot()
	assert.Equal(t, 120, snap.DailyUsed)
}

func TestClient_BudgetShortCircuit(t *testing.T) {
	rt := &scriptedTransport{statuses: []int{200}, body: "x"}
	c, _ := newTestClient(t, Config{}, budget.Limits{DailyUnits: 0, MonthlyUnits: 100}, rt)

	_, err := c.Generate(context.Background(), "hello", GenOptions{}, types.FeatureCoaching)
	require.Error(t, err)
	assert.True(t, aierrors.IsBudgetExceeded(err))
	assert.Contains(t, err.Error(), "budget")
	assert.Zero(t, rt.calls, "no network call may be attempted")
}

func TestClient_OfflineShortCircuit(t *testing.T) {
	rt := &scriptedTransport{statuses: []int{200}, body: "x"}
	c, _ := newTestClient(t, Config{}, openLimits(), rt)
	c.SetOnline(false)

	_, err := c.Generate(context.Background(), "hello", GenOptions{}, types.FeatureCoaching)
	require.Error(t, err)
	assert.True(t, aierrors.IsType(err, aierrors.TypeUnavailable))
	assert.Zero(t, rt.calls)
	assert.False(t, c.Available())
}

func TestClient_RetryThenFail(t *testing.T) {
	rt := &scriptedTransport{statuses: []int{503}, body: "down"}
	cfg := Config{MaxRetries: 2, RetryBackoff: 10 * time.Millisecond}
	c, _ := newTestClient(t, cfg, openLimits(), rt)

	var delays []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	_, err := c.Generate(context.Background(), "hello", GenOptions{}, types.FeatureCoaching)
	require.Error(t, err)
	assert.True(t, aierrors.IsType(err, aierrors.TypeTransport))

	assert.Equal(t, 3, rt.calls, "retries+1 attempts")
	require.Len(t, delays, 2)
	assert.Less(t, delays[0], delays[1], "backoff must strictly increase")
	assert.Equal(t, 10*time.Millisecond, delays[0])
	assert.Equal(t, 20*time.Millisecond, delays[1])
}

func TestClient_NonRetryableStopsImmediately(t *testing.T) {
	rt := &scriptedTransport{statuses: []int{401}, body: "bad key"}
	c, _ := newTestClient(t, Config{MaxRetries: 3, RetryBackoff: time.Millisecond}, openLimits(), rt)

	_, err := c.Generate(context.Background(), "hello", GenOptions{}, types.FeatureCoaching)
	require.Error(t, err)
	assert.Equal(t, 1, rt.calls, "non-retryable errors must not be retried")
}

func TestClient_RecoversAfterTransientFailure(t *testing.T) {
	rt := &scriptedTransport{statuses: []int{503, 200}, body: "ok"}
	c, _ := newTestClient(t, Config{MaxRetries: 2, RetryBackoff: time.Millisecond}, openLimits(), rt)
	c.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	res, err := c.Generate(context.Background(), "hello", GenOptions{}, types.FeatureCoaching)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
}

func TestClient_EmptyPromptIsContractError(t *testing.T) {
	rt := &scriptedTransport{statuses: []int{200}, body: "x"}
	c, _ := newTestClient(t, Config{}, openLimits(), rt)

	_, err := c.Generate(context.Background(), "", GenOptions{}, types.FeatureCoaching)
	require.Error(t, err)
	assert.True(t, aierrors.IsType(err, aierrors.TypeInvalidRequest))
}

func TestClient_Status(t *testing.T) {
	rt := &scriptedTransport{statuses: []int{200}, body: "x"}
	c, _ := newTestClient(t, Config{Model: "gpt-4o-mini"}, budget.Limits{DailyUnits: 500, MonthlyUnits: 1000}, rt)

	st := c.Status()
	assert.True(t, st.Available)
	assert.Equal(t, "fake", st.Provider)
	assert.Equal(t, "gpt-4o-mini", st.Model)
	assert.Equal(t, 500, st.Budget.DailyLimit)

	c.SetOnline(false)
	st = c.Status()
	assert.False(t, st.Available)
	assert.False(t, st.Online)
}

func TestClient_ModelSelection(t *testing.T) {
	c, _ := newTestClient(t, Config{Model: "small", LargeModel: "large"}, openLimits(),
		&scriptedTransport{statuses: []int{200}})
	assert.Equal(t, "small", c.Model(false))
	assert.Equal(t, "large", c.Model(true))
}
