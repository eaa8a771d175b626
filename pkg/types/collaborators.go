package types

import "context"

// SuggestionEngine computes deterministic training suggestions. It is an
// external collaborator: the orchestration layer treats its output as
// authoritative and only ever wraps it in natural language.
type SuggestionEngine interface {
	ComputeSuggestion(ctx context.Context, ec ExerciseContext) (*Suggestion, error)
}

// KnowledgeSnippet is one retrieved piece of topical knowledge.
type KnowledgeSnippet struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// KnowledgeSearcher retrieves topical snippets used to enrich remote
// prompts. Empty results are normal and must not fail the caller.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]KnowledgeSnippet, error)
}
