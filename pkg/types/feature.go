package types

// Feature identifies a request class. Routing, cache TTLs, and fallback
// selection are all keyed by feature.
type Feature string

const (
	// Remote-eligible features.
	FeatureExplanation    Feature = "explanation"     // explain a training suggestion
	FeatureWorkoutSummary Feature = "workout_summary" // summarize a finished session
	FeatureMotivation     Feature = "motivation"      // short motivational line
	FeatureCoaching       Feature = "coaching"        // free-text coaching Q&A
	FeatureFormGuidance   Feature = "form_guidance"   // exercise form cues

	// Offline-critical features. These never touch the network.
	FeatureSuggestion      Feature = "suggestion"       // numeric load/rep suggestion
	FeatureRecoveryScore   Feature = "recovery_score"   // recovery scoring
	FeatureVolumeCount     Feature = "volume_count"     // set/volume counting
	FeatureRecordDetection Feature = "record_detection" // PR detection
)

// AlwaysLocal reports whether the feature belongs to the offline-critical
// path that must never depend on network availability.
func (f Feature) AlwaysLocal() bool {
	switch f {
	case FeatureSuggestion, FeatureRecoveryScore, FeatureVolumeCount, FeatureRecordDetection:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (f Feature) String() string { return string(f) }
