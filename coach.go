// Package coach provides the AI response layer for a training app:
// cached, budgeted, and fallback-protected natural-language coaching on
// top of deterministic local computation.
//
// Every public operation returns the same response envelope and never
// fails just because the network, the provider, or the usage budget is
// unavailable; in those cases the answer comes from a template generator
// fed with the user's real numbers.
//
// Basic usage:
//
//	client, err := coach.New(
//	    coach.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	resp, err := client.GetCoachingAnswer(ctx, coach.CoachingRequest{
//	    UserID: "u1",
//	    Query:  "Should I deload this week?",
//	})
package coach

import (
	"github.com/liftwise/coach/internal/agent"
	"github.com/liftwise/coach/internal/budget"
	"github.com/liftwise/coach/internal/remote"
	"github.com/liftwise/coach/internal/storage"
	"github.com/liftwise/coach/pkg/errors"
	"github.com/liftwise/coach/pkg/types"
)

// Version is the current version of the coach module.
const Version = "1.0.0"

// Re-export the envelope and domain types for convenience.
type (
	// Response is the uniform envelope returned by every operation.
	Response = types.Response

	// Source identifies where a response payload came from.
	Source = types.Source

	// Feature identifies a request class.
	Feature = types.Feature

	// UserProfile is the slice of account data this layer cares about.
	UserProfile = types.UserProfile

	// WorkoutSession is a finished or in-progress training session.
	WorkoutSession = types.WorkoutSession

	// ExerciseLog groups the sets of one exercise within a session.
	ExerciseLog = types.ExerciseLog

	// SetLog is one performed set.
	SetLog = types.SetLog

	// PersonalRecord is a best-ever lift for one exercise.
	PersonalRecord = types.PersonalRecord

	// BiomarkerSnapshot is the most recent readiness data.
	BiomarkerSnapshot = types.BiomarkerSnapshot

	// Suggestion is the output of the local suggestion engine.
	Suggestion = types.Suggestion

	// ExerciseContext is the input handed to the suggestion engine.
	ExerciseContext = types.ExerciseContext

	// SuggestionEngine computes deterministic training suggestions.
	SuggestionEngine = types.SuggestionEngine

	// KnowledgeSearcher retrieves topical snippets for remote prompts.
	KnowledgeSearcher = types.KnowledgeSearcher

	// KnowledgeSnippet is one retrieved piece of topical knowledge.
	KnowledgeSnippet = types.KnowledgeSnippet

	// AIError is the standardized error for the remote path.
	AIError = errors.AIError

	// Limits holds the daily and monthly usage quotas.
	Limits = budget.Limits

	// UsageRecord is one charged remote call.
	UsageRecord = budget.UsageRecord

	// RemoteStatus is a point-in-time view of the remote client.
	RemoteStatus = remote.Status

	// Store is the key/value persistence boundary.
	Store = storage.Store

	// AgentTrace records one executed agent step.
	AgentTrace = agent.TraceEntry
)

// Re-export source constants.
const (
	SourceLocal    = types.SourceLocal
	SourceCache    = types.SourceCache
	SourceRemote   = types.SourceRemote
	SourceFallback = types.SourceFallback
)

// Re-export feature constants.
const (
	FeatureExplanation    = types.FeatureExplanation
	FeatureWorkoutSummary = types.FeatureWorkoutSummary
	FeatureMotivation     = types.FeatureMotivation
	FeatureCoaching       = types.FeatureCoaching
	FeatureFormGuidance   = types.FeatureFormGuidance
)

// Unlimited disables a budget limit when used in Limits.
const Unlimited = budget.Unlimited

// Re-export error helpers.
var (
	IsRetryable      = errors.IsRetryable
	IsBudgetExceeded = errors.IsBudgetExceeded
)

// Storage constructors, re-exported so hosts can pick a backend without
// importing internal packages.
var (
	// NewMemStore returns an in-memory store, suitable for tests.
	NewMemStore = storage.NewMemStore

	// NewFileStore persists each key as a file under dir.
	NewFileStore = storage.NewFileStore

	// NewSQLiteStore persists keys in a single SQLite database.
	NewSQLiteStore = storage.NewSQLiteStore
)

// NewStaticKnowledge returns the built-in knowledge retriever.
func NewStaticKnowledge() KnowledgeSearcher {
	return agent.NewStaticSearcher()
}
