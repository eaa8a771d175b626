package agent

import "strings"

// Intent buckets a free-text coaching query. Classification is keyword
// based; the first bucket whose keyword list matches wins, in a fixed
// priority order.
type Intent string

const (
	IntentProgress           Intent = "progress"
	IntentExerciseSuggestion Intent = "exercise-suggestion"
	IntentProgramAdvice      Intent = "program-advice"
	IntentRecovery           Intent = "recovery"
	IntentForm               Intent = "form"
	IntentMotivation         Intent = "motivation"
	IntentGeneral            Intent = "general"
)

// intentKeywords in priority order. Recovery outranks suggestion so
// "should I train while sore" routes through check_recovery first.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentRecovery, []string{"recover", "rest day", "sore", "tired", "fatigue", "sleep", "deload", "overtrain"}},
	{IntentForm, []string{"form", "technique", "how do i perform", "cue", "depth", "grip", "stance"}},
	{IntentMotivation, []string{"motivat", "inspire", "give up", "discouraged", "lazy", "don't feel like", "dont feel like"}},
	{IntentProgramAdvice, []string{"program", "routine", "split", "schedule", "plan my", "how often", "frequency"}},
	{IntentExerciseSuggestion, []string{"what weight", "how much weight", "how many reps", "suggest", "recommend", "what should i do", "next set", "which exercise"}},
	{IntentProgress, []string{"progress", "stronger", "improving", "improve", "trend", "gains", "plateau", "stuck", "stall"}},
}

// ClassifyIntent buckets a query. Unmatched queries are general.
func ClassifyIntent(query string) Intent {
	q := strings.ToLower(query)
	for _, bucket := range intentKeywords {
		for _, kw := range bucket.keywords {
			if strings.Contains(q, kw) {
				return bucket.intent
			}
		}
	}
	return IntentGeneral
}
