package coach

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftwise/coach/internal/remote"
)

// cannedTransport serves a fixed chat-completions response and counts
// how often the network is touched.
type cannedTransport struct {
	calls  atomic.Int32
	status int
	body   string
}

func (t *cannedTransport) RoundTrip(*http.Request) (*http.Response, error) {
	t.calls.Add(1)
	return &http.Response{
		StatusCode: t.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(t.body)),
	}, nil
}

func chatBody(text string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"role":"assistant","content":%q}}],"usage":{"prompt_tokens":80,"completion_tokens":40}}`, text)
}

func onlineClient(t *testing.T, transport http.RoundTripper, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithAPIKey("sk-test"),
		WithTransport(transport),
		WithFallbackSeed(7),
		WithRemote(remote.Config{
			MaxRetries:   1,
			RetryBackoff: time.Millisecond,
			Transport:    transport,
		}),
	}
	c, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func offlineClient(t *testing.T) *Client {
	t.Helper()
	// No API key: the provider is never configured, so the remote path
	// is unavailable without any network simulation.
	c, err := New(WithFallbackSeed(7))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func testSuggestion() *Suggestion {
	return &Suggestion{Value: 102.5, Range: [2]float64{100, 105}, Confidence: 0.85}
}

func testSession() *WorkoutSession {
	start := time.Date(2025, 6, 10, 17, 0, 0, 0, time.UTC)
	return &WorkoutSession{
		ID:          "s1",
		StartedAt:   start,
		CompletedAt: start.Add(50 * time.Minute),
		Exercises: []ExerciseLog{
			{Name: "Squat", Sets: []SetLog{
				{Reps: 5, Weight: 100, RPE: 7},
				{Reps: 5, Weight: 100, RPE: 7.5},
			}},
		},
	}
}

func TestOfflineGuarantee(t *testing.T) {
	// Every public operation must succeed with a fallback payload when
	// the remote path is unavailable.
	c := offlineClient(t)
	ctx := context.Background()

	ops := map[string]func() (*Response, error){
		"explanation": func() (*Response, error) {
			return c.GetExplanation(ctx, ExplanationRequest{UserID: "u1", Exercise: "Squat", Suggestion: testSuggestion()})
		},
		"workout summary": func() (*Response, error) {
			return c.GetWorkoutSummary(ctx, SummaryRequest{UserID: "u1", Session: testSession()})
		},
		"motivational line": func() (*Response, error) {
			return c.GetMotivationalLine(ctx, MotivationRequest{UserID: "u1"})
		},
		"coaching answer": func() (*Response, error) {
			return c.GetCoachingAnswer(ctx, CoachingRequest{UserID: "u1", Query: "Should I deload?"})
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			resp, err := op()
			require.NoError(t, err)
			assert.True(t, resp.Success, "offline must not fail the operation")
			assert.Equal(t, SourceFallback, resp.Source)
			assert.NotEmpty(t, resp.Data)
		})
	}
}

func TestValidation(t *testing.T) {
	c := offlineClient(t)
	ctx := context.Background()

	_, err := c.GetExplanation(ctx, ExplanationRequest{Suggestion: testSuggestion()})
	assert.Error(t, err, "missing user id")

	_, err = c.GetExplanation(ctx, ExplanationRequest{UserID: "u1"})
	assert.Error(t, err, "missing suggestion")

	_, err = c.GetWorkoutSummary(ctx, SummaryRequest{UserID: "u1"})
	assert.Error(t, err, "missing session")

	_, err = c.GetMotivationalLine(ctx, MotivationRequest{})
	assert.Error(t, err, "missing user id")

	_, err = c.GetCoachingAnswer(ctx, CoachingRequest{UserID: "u1"})
	assert.Error(t, err, "missing query")
}

func TestCacheHitScenario(t *testing.T) {
	transport := &cannedTransport{status: http.StatusOK, body: chatBody("Because your effort trend supports a small jump.")}
	c := onlineClient(t, transport)
	ctx := context.Background()

	req := ExplanationRequest{UserID: "u1", Exercise: "Squat", Suggestion: testSuggestion()}

	first, err := c.GetExplanation(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, first.Source)
	assert.Equal(t, int32(1), transport.calls.Load())

	second, err := c.GetExplanation(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, int32(1), transport.calls.Load(), "no second network call")
	assert.LessOrEqual(t, second.LatencyMs, int64(5), "cache hits are near-instant")
}

func TestBudgetExhaustion(t *testing.T) {
	transport := &cannedTransport{status: http.StatusOK, body: chatBody("never served")}
	c := onlineClient(t, transport, WithLimits(Limits{DailyUnits: 0, MonthlyUnits: Unlimited}))
	ctx := context.Background()

	resp, err := c.GetExplanation(ctx, ExplanationRequest{UserID: "u1", Exercise: "Squat", Suggestion: testSuggestion()})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, SourceFallback, resp.Source)
	assert.Contains(t, strings.ToLower(resp.Error), "budget")
	assert.NotEmpty(t, resp.Notice)
	assert.Equal(t, int32(0), transport.calls.Load(), "no network call once the budget is exhausted")
}

func TestRemoteFailureFallsBack(t *testing.T) {
	transport := &cannedTransport{status: http.StatusInternalServerError, body: `{"error":{"message":"boom"}}`}
	c := onlineClient(t, transport)
	ctx := context.Background()

	resp, err := c.GetWorkoutSummary(ctx, SummaryRequest{UserID: "u1", Session: testSession(), Records: []PersonalRecord{{Exercise: "Squat", Weight: 140, Reps: 1}}})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, SourceFallback, resp.Source)
	assert.NotEmpty(t, resp.Error)
	// The fallback still quotes real session numbers.
	assert.Contains(t, resp.Data, "2 sets")
	assert.Contains(t, resp.Data, "1000")
	assert.Equal(t, int32(2), transport.calls.Load(), "one attempt plus one retry")
}

func TestCoachingSemanticCacheHit(t *testing.T) {
	transport := &cannedTransport{status: http.StatusOK, body: chatBody("Deload when your performance drops for a week.")}
	c := onlineClient(t, transport)
	ctx := context.Background()

	first, err := c.GetCoachingAnswer(ctx, CoachingRequest{UserID: "u1", Query: "when should i deload my training program"})
	require.NoError(t, err)
	require.Equal(t, SourceRemote, first.Source)
	calls := transport.calls.Load()

	// A close paraphrase should hit the semantic cache, not the network.
	second, err := c.GetCoachingAnswer(ctx, CoachingRequest{UserID: "u1", Query: "when should i deload my training program?"})
	require.NoError(t, err)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, calls, transport.calls.Load())
}

func TestCachePersistsAcrossRestart(t *testing.T) {
	store := NewMemStore()
	transport := &cannedTransport{status: http.StatusOK, body: chatBody("cached across restart")}

	c1 := onlineClient(t, transport, WithStorage(store))
	req := ExplanationRequest{UserID: "u1", Exercise: "Bench Press", Suggestion: testSuggestion()}
	first, err := c1.GetExplanation(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, SourceRemote, first.Source)

	// Same store, fresh client: the snapshot must serve the hit.
	c2 := onlineClient(t, transport, WithStorage(store))
	second, err := c2.GetExplanation(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, int32(1), transport.calls.Load())
}

func TestGetAIStatus(t *testing.T) {
	c := offlineClient(t)

	resp, err := c.GetAIStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, SourceLocal, resp.Source)

	var report StatusReport
	require.NoError(t, json.Unmarshal([]byte(resp.Data), &report))
	assert.False(t, report.Remote.Available, "no API key means unavailable")
	assert.True(t, report.Remote.Online, "online until the host says otherwise")
}

func TestSetOnline(t *testing.T) {
	transport := &cannedTransport{status: http.StatusOK, body: chatBody("hello")}
	c := onlineClient(t, transport)
	ctx := context.Background()

	c.SetOnline(false)
	resp, err := c.GetMotivationalLine(ctx, MotivationRequest{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, resp.Source)
	assert.Equal(t, int32(0), transport.calls.Load())

	c.SetOnline(true)
	resp, err = c.GetMotivationalLine(ctx, MotivationRequest{UserID: "u2"})
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, resp.Source)
}

func TestBudgetAccumulates(t *testing.T) {
	transport := &cannedTransport{status: http.StatusOK, body: chatBody("ok")}
	c := onlineClient(t, transport)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		req := ExplanationRequest{
			UserID:     fmt.Sprintf("u%d", i),
			Exercise:   "Squat",
			Suggestion: &Suggestion{Value: float64(100 + i)},
		}
		resp, err := c.GetExplanation(ctx, req)
		require.NoError(t, err)
		require.Equal(t, SourceRemote, resp.Source)
		assert.Equal(t, 120, resp.UnitsUsed, "80 in + 40 out per canned response")
	}

	snap := c.Budget()
	assert.Equal(t, 360, snap.DailyUsed)
}
