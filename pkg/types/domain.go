package types

import "time"

// UserProfile is the slice of the account data this layer cares about.
type UserProfile struct {
	ID              string `json:"id"`
	Name            string `json:"name,omitempty"`
	ExperienceLevel string `json:"experience_level,omitempty"` // beginner, intermediate, advanced
	Goal            string `json:"goal,omitempty"`             // strength, hypertrophy, endurance
	Units           string `json:"units,omitempty"`            // kg or lb
}

// SetLog is one performed set.
type SetLog struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
	RPE    float64 `json:"rpe,omitempty"` // rating of perceived exertion, 1-10
}

// ExerciseLog groups the sets of one exercise within a session.
type ExerciseLog struct {
	Name string   `json:"name"`
	Sets []SetLog `json:"sets"`
}

// WorkoutSession is a finished or in-progress training session.
type WorkoutSession struct {
	ID          string        `json:"id"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at,omitempty"`
	Exercises   []ExerciseLog `json:"exercises"`
	Notes       string        `json:"notes,omitempty"`
}

// TotalVolume returns the summed load across all sets (weight x reps).
func (s *WorkoutSession) TotalVolume() float64 {
	var v float64
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			v += set.Weight * float64(set.Reps)
		}
	}
	return v
}

// SetCount returns the number of performed sets.
func (s *WorkoutSession) SetCount() int {
	var n int
	for _, ex := range s.Exercises {
		n += len(ex.Sets)
	}
	return n
}

// Duration returns the session length, zero if still in progress.
func (s *WorkoutSession) Duration() time.Duration {
	if s.CompletedAt.IsZero() {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}

// AvgRPE returns the mean RPE over sets that recorded one.
func (s *WorkoutSession) AvgRPE() float64 {
	var sum float64
	var n int
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			if set.RPE > 0 {
				sum += set.RPE
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// PersonalRecord is a best-ever lift for one exercise.
type PersonalRecord struct {
	Exercise   string    `json:"exercise"`
	Weight     float64   `json:"weight"`
	Reps       int       `json:"reps"`
	AchievedAt time.Time `json:"achieved_at"`
}

// BiomarkerSnapshot is the most recent readiness data, if any.
type BiomarkerSnapshot struct {
	RestingHR  int       `json:"resting_hr,omitempty"`
	HRV        float64   `json:"hrv,omitempty"`
	SleepHours float64   `json:"sleep_hours,omitempty"`
	Soreness   int       `json:"soreness,omitempty"` // 0-10 self report
	CapturedAt time.Time `json:"captured_at,omitempty"`
}

// ExerciseContext is the input handed to the local suggestion engine.
type ExerciseContext struct {
	Exercise    string   `json:"exercise"`
	RecentSets  []SetLog `json:"recent_sets,omitempty"`
	LastWeight  float64  `json:"last_weight,omitempty"`
	LastReps    int      `json:"last_reps,omitempty"`
	SessionsAgo int      `json:"sessions_ago,omitempty"` // sessions since this exercise was last trained
}

// Suggestion is the opaque output of the local suggestion engine. The
// orchestration layer never second-guesses its numbers.
type Suggestion struct {
	Value         float64    `json:"value"`
	Range         [2]float64 `json:"range"`
	Confidence    float64    `json:"confidence"` // 0-1
	Rationale     string     `json:"rationale"`
	RecoveryScore float64    `json:"recovery_score"` // 0-100
	FlagCaution   bool       `json:"flag_caution"`
}
