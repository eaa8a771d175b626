// Package policy decides, per request, whether the answer comes from the
// local engine, the remote model, or both. Decide is a pure function so
// its whole input space can be tested exhaustively.
package policy

import (
	"github.com/liftwise/coach/pkg/types"
)

// Route labels the selected path.
type Route string

const (
	RouteLocal  Route = "local"
	RouteRemote Route = "remote"
	RouteHybrid Route = "hybrid" // local result, remote phrasing
)

// LargeContextUnits is the context size above which the higher-capability
// model profile is selected for remote routes.
const LargeContextUnits = 600

// Input is everything Decide is allowed to look at.
type Input struct {
	Feature              types.Feature
	HasLocal             bool // a local implementation exists
	NeedsNaturalLanguage bool
	NeedsPersonalization bool
	ContextUnits         int
	Online               bool
}

// Decision is the routing outcome.
type Decision struct {
	UseLocal   bool
	UseRemote  bool
	Route      Route
	LargeModel bool // pick the higher-capability remote profile
	Reasoning  string
}

// Decide routes a request. Guarantees, in order: offline-critical
// features never leave the device; nothing leaves the device while
// offline; hybrid routes keep the local result authoritative.
func Decide(in Input) Decision {
	if in.Feature.AlwaysLocal() {
		return Decision{
			UseLocal:  true,
			Route:     RouteLocal,
			Reasoning: "offline-critical feature, local only",
		}
	}

	if !in.Online {
		return Decision{
			UseLocal:  true,
			Route:     RouteLocal,
			Reasoning: "offline, local only",
		}
	}

	large := in.ContextUnits > LargeContextUnits || in.NeedsPersonalization

	switch {
	case in.HasLocal && in.NeedsNaturalLanguage:
		return Decision{
			UseLocal:   true,
			UseRemote:  true,
			Route:      RouteHybrid,
			LargeModel: large,
			Reasoning:  "local result with remote phrasing",
		}
	case in.HasLocal:
		return Decision{
			UseLocal:  true,
			Route:     RouteLocal,
			Reasoning: "local implementation suffices",
		}
	default:
		return Decision{
			UseRemote:  true,
			Route:      RouteRemote,
			LargeModel: large,
			Reasoning:  "no local implementation, remote generation",
		}
	}
}
