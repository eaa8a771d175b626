package fallback

// Bucket is a coarse classification of the user's situation, used to
// select a template pool.
type Bucket string

const (
	BucketLowRPE      Bucket = "low-rpe"
	BucketHighRPE     Bucket = "high-rpe"
	BucketLowRecovery Bucket = "low-recovery"
	BucketPlateau     Bucket = "plateau"
	BucketNewExercise Bucket = "new-exercise"
	BucketSteady      Bucket = "steady"
)

// RPE and recovery cutoffs for bucket classification.
const (
	lowRPEThreshold      = 6.5
	highRPEThreshold     = 8.5
	lowRecoveryThreshold = 50.0
)

// Classify maps the available facts onto a bucket. Recovery wins over
// effort signals because it gates everything else.
func Classify(f Facts) Bucket {
	if f.HasRecovery && f.RecoveryScore < lowRecoveryThreshold {
		return BucketLowRecovery
	}
	if f.NewExercise {
		return BucketNewExercise
	}
	if f.Plateau {
		return BucketPlateau
	}
	if f.Session != nil {
		if rpe := f.Session.AvgRPE(); rpe > 0 {
			if rpe >= highRPEThreshold {
				return BucketHighRPE
			}
			if rpe <= lowRPEThreshold {
				return BucketLowRPE
			}
		}
	}
	return BucketSteady
}

// Explanation templates per bucket. Each takes (exercise name, value).
var bucketTemplates = map[Bucket][]string{
	BucketLowRPE: {
		"Your recent sets on %s felt easy, so the plan nudges the load up to %.1f to keep the stimulus effective.",
		"Effort on %s has been comfortably low; %.1f keeps you progressing without jumping too far ahead.",
	},
	BucketHighRPE: {
		"Your last %s sets were near your limit, so %.1f holds the load steady while you consolidate.",
		"Effort on %s has been very high recently; %.1f backs off slightly so quality stays up.",
	},
	BucketLowRecovery: {
		"Your recovery markers are down, so %s is programmed at a lighter %.1f today.",
		"Readiness looks low; %s at %.1f trades a little intensity for a better session overall.",
	},
	BucketPlateau: {
		"Progress on %s has stalled, so %.1f changes the stimulus to break the plateau.",
		"Your %s numbers have been flat; %.1f is a deliberate reset to rebuild momentum.",
	},
	BucketNewExercise: {
		"No history for %s yet, so %.1f is a conservative starting point to find your working range.",
		"%s is new in your log; starting at %.1f lets you groove the movement before loading up.",
	},
	BucketSteady: {
		"Based on your recent %s sessions, %.1f continues your current progression.",
		"Your %s trend supports a small step to %.1f this session.",
	},
}

var genericExplanations = []string{
	"This recommendation follows your recent training load and recovery trend.",
	"The number comes from your logged sets and current readiness, stepped conservatively.",
}

var emptySummaries = []string{
	"No sets logged for this session yet. Log a few and the recap will fill in.",
	"This session has no logged work so far, so there is nothing to summarize yet.",
}

var summaryClosers = []string{
	"Keep stacking sessions like this.",
	"Good, consistent work.",
	"That is the kind of session that adds up.",
}

var motivationPool = []string{
	"Every rep you log is a vote for the athlete you are becoming.",
	"Consistency beats intensity. Showing up today is the win.",
	"Strong people are built one unremarkable session at a time.",
	"The bar does not care how you feel. It only counts what you do.",
	"Progress hides in the sessions you almost skipped.",
}

var lowRecoveryMotivation = []string{
	"Recovery is training too. An easy day now buys a strong day later.",
	"Backing off when you need to is discipline, not weakness.",
	"Your body is asking for slack today. Give it some and come back sharper.",
}

var lowRecoveryAdvice = []string{
	"That is on the low side, so keep today light and prioritize sleep.",
	"Given that, cut a set or two from your main lifts and focus on quality.",
}

var goodRecoveryAdvice = []string{
	"You are recovered enough to train as planned.",
	"Green light: your readiness supports a normal or hard session today.",
}

var genericCoaching = []string{
	"Keep your progression small and steady, and let logged data drive the next step.",
	"Stick to the plan, track every set, and adjust one variable at a time.",
}

// Static cue tables for common lifts. Lowercased exercise name keys.
var formCues = map[string][]string{
	"squat": {
		"Brace before you descend, keep the whole foot planted, and drive up through mid-foot.",
		"Sit between your hips rather than folding forward, and keep your knees tracking over your toes.",
	},
	"bench press": {
		"Pin your shoulder blades back and down, keep your feet planted, and touch the same spot every rep.",
		"Lower under control to the lower chest and press slightly back toward the rack.",
	},
	"deadlift": {
		"Take the slack out of the bar before you pull and keep it dragging up your legs.",
		"Push the floor away with your legs; the back holds position, it does not lift the weight.",
	},
	"overhead press": {
		"Squeeze your glutes, brace hard, and press your head through once the bar clears your face.",
		"Keep the bar over mid-foot the whole way; shift your torso, not the bar path.",
	},
}

var genericFormCues = []string{
	"Control the lowering phase, keep your brace consistent, and stop the set when form degrades.",
	"Full range of motion with a weight you control beats partial reps with a weight you fight.",
}

var unknownExerciseCues = []string{
	"For %s: control the eccentric, keep consistent technique across sets, and leave a rep in reserve while learning the movement.",
	"For %s: start lighter than feels necessary, own every position, and add load only when all reps look identical.",
}
