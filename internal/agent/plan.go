package agent

// Step names one unit of agent work. The vocabulary is fixed; plans are
// ordered subsets of it, always ending in StepGenerateResponse.
type Step string

const (
	StepAnalyzeHistory   Step = "analyze_history"
	StepCheckRecovery    Step = "check_recovery"
	StepSuggestExercise  Step = "suggest_exercise"
	StepGenerateResponse Step = "generate_response"
)

// plans maps each intent to its fixed step sequence.
var plans = map[Intent][]Step{
	IntentProgress:           {StepAnalyzeHistory, StepCheckRecovery, StepGenerateResponse},
	IntentExerciseSuggestion: {StepCheckRecovery, StepSuggestExercise, StepGenerateResponse},
	IntentProgramAdvice:      {StepAnalyzeHistory, StepCheckRecovery, StepGenerateResponse},
	IntentRecovery:           {StepCheckRecovery, StepGenerateResponse},
	IntentForm:               {StepGenerateResponse},
	IntentMotivation:         {StepCheckRecovery, StepGenerateResponse},
	IntentGeneral:            {StepGenerateResponse},
}

// PlanFor returns the step sequence for an intent.
func PlanFor(intent Intent) []Step {
	if p, ok := plans[intent]; ok {
		return p
	}
	return plans[IntentGeneral]
}
