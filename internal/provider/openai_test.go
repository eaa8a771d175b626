package provider

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aierrors "github.com/liftwise/coach/pkg/errors"
)

func TestOpenAI_BuildRequest(t *testing.T) {
	p := NewOpenAI(WithAPIKey("sk-test"), WithBaseURL("http://localhost:9999/v1/"))

	req, err := p.BuildRequest(context.Background(), &GenRequest{
		Model:       "gpt-4o-mini",
		System:      "You are a strength coach.",
		Prompt:      "Explain this suggestion.",
		MaxTokens:   200,
		Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/v1/chat/completions", req.URL.String())
	assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"role":"system"`)
	assert.Contains(t, string(body), "Explain this suggestion.")
	assert.Contains(t, string(body), `"model":"gpt-4o-mini"`)
}

func TestOpenAI_Configured(t *testing.T) {
	assert.False(t, NewOpenAI().Configured())
	assert.True(t, NewOpenAI(WithAPIKey("sk")).Configured())
}

func TestOpenAI_ParseResponse(t *testing.T) {
	p := NewOpenAI()

	t.Run("well formed", func(t *testing.T) {
		resp := &http.Response{Body: io.NopCloser(strings.NewReader(
			`{"choices":[{"message":{"role":"assistant","content":" Keep the bar tight. "}}],
			  "usage":{"prompt_tokens":42,"completion_tokens":7}}`))}
		res, err := p.ParseResponse(resp)
		require.NoError(t, err)
		assert.Equal(t, "Keep the bar tight.", res.Text)
		assert.Equal(t, 42, res.InputUnits)
		assert.Equal(t, 7, res.OutputUnits)
	})

	t.Run("no choices", func(t *testing.T) {
		resp := &http.Response{Body: io.NopCloser(strings.NewReader(`{"choices":[]}`))}
		_, err := p.ParseResponse(resp)
		require.Error(t, err)
		assert.True(t, aierrors.IsType(err, aierrors.TypeMalformed))
	})

	t.Run("invalid json", func(t *testing.T) {
		resp := &http.Response{Body: io.NopCloser(strings.NewReader(`{oops`))}
		_, err := p.ParseResponse(resp)
		require.Error(t, err)
		assert.True(t, aierrors.IsType(err, aierrors.TypeMalformed))
	})
}

func TestOpenAI_MapError(t *testing.T) {
	p := NewOpenAI()

	tests := []struct {
		name      string
		status    int
		body      string
		wantType  string
		retryable bool
	}{
		{"auth", 401, `{"error":{"message":"bad key"}}`, aierrors.TypeProvider, false},
		{"rate limit", 429, `{"error":{"message":"slow down"}}`, aierrors.TypeRateLimited, true},
		{"server error", 503, `upstream down`, aierrors.TypeTransport, true},
		{"bad request", 400, `{"error":{"message":"invalid"}}`, aierrors.TypeProvider, false},
		{"timeout", 408, `{"error":{"message":"timed out"}}`, aierrors.TypeTimeout, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.MapError(tt.status, []byte(tt.body))
			ae, ok := aierrors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, ae.Type)
			assert.Equal(t, tt.retryable, ae.Retryable)
		})
	}
}
