// Package provider defines the remote generative-text boundary. The
// rest of the module only sees the Provider interface; the concrete
// adapter speaks an OpenAI-compatible wire format.
package provider

import (
	"context"
	"net/http"
)

// GenRequest is a single text-generation request.
type GenRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// GenResult is the parsed provider output. Unit counts are the
// provider's own accounting when reported, zero otherwise.
type GenResult struct {
	Text        string
	InputUnits  int
	OutputUnits int
}

// Provider adapts one remote service to the unified request/response
// shape. Implementations must map every provider error into the
// pkg/errors taxonomy via MapError.
type Provider interface {
	// Name returns the provider identifier used in logs and usage records.
	Name() string

	// Configured reports whether the provider has what it needs to make
	// calls (endpoint, credentials).
	Configured() bool

	// BuildRequest creates the HTTP request for a generation.
	BuildRequest(ctx context.Context, req *GenRequest) (*http.Request, error)

	// ParseResponse transforms a 2xx HTTP response into a GenResult.
	ParseResponse(resp *http.Response) (*GenResult, error)

	// MapError converts a non-2xx status and body into a typed error.
	MapError(statusCode int, body []byte) error
}
