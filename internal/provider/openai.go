package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	aierrors "github.com/liftwise/coach/pkg/errors"
)

const (
	// OpenAIName is the identifier for this adapter.
	OpenAIName = "openai"

	// DefaultBaseURL is the stock endpoint; any OpenAI-compatible server
	// works via WithBaseURL.
	DefaultBaseURL = "https://api.openai.com/v1"
)

// OpenAI speaks the chat-completions wire format.
type OpenAI struct {
	apiKey  string
	baseURL string
	headers map[string]string
}

// OpenAIOption configures the adapter.
type OpenAIOption func(*OpenAI)

// WithAPIKey sets the bearer token.
func WithAPIKey(key string) OpenAIOption {
	return func(p *OpenAI) { p.apiKey = key }
}

// WithBaseURL overrides the endpoint, e.g. for a compatible proxy.
func WithBaseURL(url string) OpenAIOption {
	return func(p *OpenAI) {
		if url != "" {
			p.baseURL = url
		}
	}
}

// WithHeader adds a static header to every request.
func WithHeader(k, v string) OpenAIOption {
	return func(p *OpenAI) { p.headers[k] = v }
}

// NewOpenAI creates the adapter.
func NewOpenAI(opts ...OpenAIOption) *OpenAI {
	p := &OpenAI{
		baseURL: DefaultBaseURL,
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider.
func (p *OpenAI) Name() string { return OpenAIName }

// Configured implements Provider.
func (p *OpenAI) Configured() bool { return p.apiKey != "" }

// chatRequest is the subset of the wire format this layer sends.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// BuildRequest implements Provider.
func (p *OpenAI) BuildRequest(ctx context.Context, req *GenRequest) (*http.Request, error) {
	wire := chatRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.System != "" {
		wire.Messages = append(wire.Messages, chatMessage{Role: "system", Content: req.System})
	}
	wire.Messages = append(wire.Messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimSuffix(p.baseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	for k, v := range p.headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}

// ParseResponse implements Provider.
func (p *OpenAI) ParseResponse(resp *http.Response) (*GenResult, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var wire chatResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, aierrors.NewMalformed(OpenAIName, fmt.Sprintf("unmarshal response: %v", err))
	}
	if len(wire.Choices) == 0 {
		return nil, aierrors.NewMalformed(OpenAIName, "response contains no choices")
	}

	return &GenResult{
		Text:        strings.TrimSpace(wire.Choices[0].Message.Content),
		InputUnits:  wire.Usage.PromptTokens,
		OutputUnits: wire.Usage.CompletionTokens,
	}, nil
}

// MapError implements Provider. Auth and validation failures are not
// retryable; rate limits and server errors are.
func (p *OpenAI) MapError(statusCode int, body []byte) error {
	var wire struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	message := string(body)
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error.Message != "" {
		message = wire.Error.Message
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return aierrors.NewProvider(OpenAIName, "authentication failed: "+message)
	case statusCode == http.StatusTooManyRequests:
		return aierrors.NewRateLimited(OpenAIName, message)
	case statusCode == http.StatusRequestTimeout:
		return aierrors.NewTimeout(OpenAIName, message)
	case statusCode >= 500:
		return aierrors.NewTransport(OpenAIName, fmt.Sprintf("server error (%d): %s", statusCode, message))
	default:
		return aierrors.NewProvider(OpenAIName, fmt.Sprintf("request rejected (%d): %s", statusCode, message))
	}
}
