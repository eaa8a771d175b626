// Package types defines the shared value types for the coach AI layer:
// the uniform response envelope, feature identifiers, domain snapshots,
// and the collaborator interfaces consumed at the subsystem boundary.
package types

// Source identifies where a response payload came from.
type Source string

const (
	SourceLocal    Source = "local"    // deterministic local computation
	SourceCache    Source = "cache"    // exact-key or semantic cache hit
	SourceRemote   Source = "remote"   // generated by the remote model
	SourceFallback Source = "fallback" // template/rule generator
)

// Response is the uniform envelope returned by every public operation.
// All fields are populated even on failure so callers never need to
// nil-check before rendering.
type Response struct {
	Success   bool   `json:"success"`
	Data      string `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Source    Source `json:"source"`
	LatencyMs int64  `json:"latency_ms"`
	UnitsUsed int    `json:"units_used,omitempty"`

	// RequestID correlates the response with log lines.
	RequestID string `json:"request_id,omitempty"`

	// Notice carries a soft, user-visible hint such as "using saved
	// recommendations". Never set for hard failures.
	Notice string `json:"notice,omitempty"`
}

// Ok reports whether the response carries a usable payload.
func (r *Response) Ok() bool {
	return r.Success && r.Data != ""
}
