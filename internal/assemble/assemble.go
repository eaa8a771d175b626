// Package assemble builds the per-request AI context from user, session,
// history, and biomarker data, and compresses it into a bounded prompt
// block. Contexts are rebuilt on demand and never persisted.
package assemble

import (
	"fmt"
	"strings"
	"time"

	"github.com/liftwise/coach/internal/observability"
	"github.com/liftwise/coach/pkg/types"
)

// Bounds keeping assembly cost flat regardless of account age.
const (
	MaxHistorySessions = 5
	MaxPersonalRecords = 10
)

// Input carries whatever the host app has on hand. Every field is
// optional; absent data simply produces a smaller context.
type Input struct {
	Profile        *types.UserProfile
	CurrentSession *types.WorkoutSession
	History        []types.WorkoutSession // most recent first
	Records        []types.PersonalRecord // most recent first
	Biomarkers     *types.BiomarkerSnapshot
}

// Context is the assembled, read-only bundle.
type Context struct {
	Identity   string   // minimal user line, always present
	Session    string   // current-session summary, may be empty
	History    []string // recent workout lines, most recent first
	Records    string   // PR summary line, may be empty
	Biomarkers string   // readiness summary, may be empty
	BuiltAt    time.Time
}

// Assembler builds and compresses contexts.
type Assembler struct {
	logger *observability.Logger
}

// New creates an Assembler.
func New(logger *observability.Logger) *Assembler {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Assembler{logger: logger.WithFields("component", "assemble")}
}

// Build composes the four sub-contexts independently; a missing piece
// never fails the whole build.
func (a *Assembler) Build(in Input) *Context {
	c := &Context{BuiltAt: time.Now()}

	c.Identity = identityLine(in.Profile)

	if in.CurrentSession != nil {
		c.Session = sessionLine("Current session", in.CurrentSession)
	}

	history := in.History
	if len(history) > MaxHistorySessions {
		history = history[:MaxHistorySessions]
	}
	for _, s := range history {
		s := s
		c.History = append(c.History, sessionLine(s.StartedAt.Format("Jan 2"), &s))
	}

	records := in.Records
	if len(records) > MaxPersonalRecords {
		records = records[:MaxPersonalRecords]
	}
	if len(records) > 0 {
		parts := make([]string, 0, len(records))
		for _, r := range records {
			parts = append(parts, fmt.Sprintf("%s %.0fx%d", r.Exercise, r.Weight, r.Reps))
		}
		c.Records = "Recent PRs: " + strings.Join(parts, ", ")
	}

	if in.Biomarkers != nil {
		c.Biomarkers = biomarkerLine(in.Biomarkers)
	}

	return c
}

func identityLine(p *types.UserProfile) string {
	if p == nil {
		return "Athlete: anonymous"
	}
	var sb strings.Builder
	sb.WriteString("Athlete: ")
	if p.Name != "" {
		sb.WriteString(p.Name)
	} else {
		sb.WriteString(p.ID)
	}
	if p.ExperienceLevel != "" {
		sb.WriteString(", " + p.ExperienceLevel)
	}
	if p.Goal != "" {
		sb.WriteString(", goal: " + p.Goal)
	}
	return sb.String()
}

func sessionLine(label string, s *types.WorkoutSession) string {
	var sb strings.Builder
	sb.WriteString(label)
	sb.WriteString(": ")
	names := make([]string, 0, len(s.Exercises))
	for _, ex := range s.Exercises {
		names = append(names, ex.Name)
	}
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString(fmt.Sprintf(" (%d sets, %.0f volume", s.SetCount(), s.TotalVolume()))
	if rpe := s.AvgRPE(); rpe > 0 {
		sb.WriteString(fmt.Sprintf(", avg RPE %.1f", rpe))
	}
	if d := s.Duration(); d > 0 {
		sb.WriteString(fmt.Sprintf(", %d min", int(d.Minutes())))
	}
	sb.WriteString(")")
	return sb.String()
}

func biomarkerLine(b *types.BiomarkerSnapshot) string {
	parts := make([]string, 0, 4)
	if b.RestingHR > 0 {
		parts = append(parts, fmt.Sprintf("resting HR %d", b.RestingHR))
	}
	if b.HRV > 0 {
		parts = append(parts, fmt.Sprintf("HRV %.0f", b.HRV))
	}
	if b.SleepHours > 0 {
		parts = append(parts, fmt.Sprintf("sleep %.1fh", b.SleepHours))
	}
	if b.Soreness > 0 {
		parts = append(parts, fmt.Sprintf("soreness %d/10", b.Soreness))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Readiness: " + strings.Join(parts, ", ")
}
