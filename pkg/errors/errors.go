// Package errors defines the unified error taxonomy for the coach AI
// layer. Every provider- or I/O-specific failure is mapped into an
// AIError before it crosses a package boundary.
package errors

import (
	"errors"
	"fmt"
)

// Error type constants. The set is deliberately small: callers only ever
// branch on retryable vs. not, plus the budget class for soft notices.
const (
	TypeUnavailable    = "unavailable"        // no network or provider not configured
	TypeBudgetExceeded = "budget_exceeded"    // daily or monthly quota exhausted
	TypeTimeout        = "timeout_error"      // per-attempt deadline hit
	TypeTransport      = "transport_error"    // connection-level failure
	TypeRateLimited    = "rate_limit_error"   // provider pushed back
	TypeMalformed      = "malformed_response" // structured output failed to parse
	TypeInvalidRequest = "invalid_request"    // programmer/contract error
	TypeProvider       = "provider_error"     // provider returned a non-retryable error
)

// AIError is the standardized failure for remote and orchestration paths.
type AIError struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Provider  string `json:"provider,omitempty"`
	Feature   string `json:"feature,omitempty"`
	Retryable bool   `json:"-"`
}

// Error implements the error interface.
func (e *AIError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("[%s] %s (provider=%s)", e.Type, e.Message, e.Provider)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// NewUnavailable creates an unavailable error. Never retried; always
// resolved by falling back.
func NewUnavailable(provider, message string) *AIError {
	return &AIError{Type: TypeUnavailable, Message: message, Provider: provider, Retryable: false}
}

// NewBudgetExceeded creates a budget-exceeded error.
func NewBudgetExceeded(message string) *AIError {
	return &AIError{Type: TypeBudgetExceeded, Message: message, Retryable: false}
}

// NewTimeout creates a per-attempt timeout error.
func NewTimeout(provider, message string) *AIError {
	return &AIError{Type: TypeTimeout, Message: message, Provider: provider, Retryable: true}
}

// NewTransport creates a connection-level transport error.
func NewTransport(provider, message string) *AIError {
	return &AIError{Type: TypeTransport, Message: message, Provider: provider, Retryable: true}
}

// NewRateLimited creates a provider rate-limit error.
func NewRateLimited(provider, message string) *AIError {
	return &AIError{Type: TypeRateLimited, Message: message, Provider: provider, Retryable: true}
}

// NewMalformed creates a malformed-response error. Not retried: re-asking
// the same prompt rarely fixes a parse failure.
func NewMalformed(provider, message string) *AIError {
	return &AIError{Type: TypeMalformed, Message: message, Provider: provider, Retryable: false}
}

// NewInvalidRequest creates a contract error. This is the only class a
// public operation is allowed to return synchronously.
func NewInvalidRequest(message string) *AIError {
	return &AIError{Type: TypeInvalidRequest, Message: message, Retryable: false}
}

// NewProvider creates a non-retryable provider error.
func NewProvider(provider, message string) *AIError {
	return &AIError{Type: TypeProvider, Message: message, Provider: provider, Retryable: false}
}

// As unwraps err into an *AIError if possible.
func As(err error) (*AIError, bool) {
	var ae *AIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsRetryable reports whether the error is worth another attempt.
// Unknown error types are treated as retryable transport problems.
func IsRetryable(err error) bool {
	if ae, ok := As(err); ok {
		return ae.Retryable
	}
	return err != nil
}

// IsBudgetExceeded reports whether the error is a quota rejection.
func IsBudgetExceeded(err error) bool {
	ae, ok := As(err)
	return ok && ae.Type == TypeBudgetExceeded
}

// IsType reports whether err is an AIError of the given type.
func IsType(err error, typ string) bool {
	ae, ok := As(err)
	return ok && ae.Type == typ
}
