package assemble

import (
	"strings"

	"github.com/liftwise/coach/internal/tokenizer"
)

// Share of the unit budget each optional block may claim. Biomarkers are
// cheap but low-value per character; the current session carries the
// most signal for coaching.
const (
	biomarkerShare = 0.30
	sessionShare   = 0.50
)

// Compress packs the context into at most maxUnits units, greedily and
// in priority order: identity always, then biomarkers, then the current
// session, then as many recent-workout lines as fit, newest first.
// Blocks are truncated rather than dropped when space runs short. Units
// are estimated at a fixed characters-per-unit ratio, deliberately
// approximate.
func (a *Assembler) Compress(c *Context, maxUnits int) string {
	if c == nil || maxUnits <= 0 {
		return ""
	}
	budget := maxUnits * tokenizer.CharsPerUnit

	var out []string

	// Identity is non-negotiable, even if it eats the whole budget.
	id := truncate(c.Identity, budget)
	out = append(out, id)
	budget -= len(id) + 1

	if c.Biomarkers != "" && budget > 0 {
		capChars := int(float64(maxUnits*tokenizer.CharsPerUnit) * biomarkerShare)
		line := truncate(c.Biomarkers, minInt(capChars, budget))
		if line != "" {
			out = append(out, line)
			budget -= len(line) + 1
		}
	}

	if c.Session != "" && budget > 0 {
		capChars := int(float64(maxUnits*tokenizer.CharsPerUnit) * sessionShare)
		line := truncate(c.Session, minInt(capChars, budget))
		if line != "" {
			out = append(out, line)
			budget -= len(line) + 1
		}
	}

	if c.Records != "" && budget > 0 {
		line := truncate(c.Records, budget)
		if line != "" {
			out = append(out, line)
			budget -= len(line) + 1
		}
	}

	for _, h := range c.History {
		if budget <= 0 {
			break
		}
		line := truncate(h, budget)
		if line == "" {
			break
		}
		out = append(out, line)
		budget -= len(line) + 1
	}

	return strings.Join(out, "\n")
}

// truncate cuts s to maxChars, marking the cut with an ellipsis when it
// happens. Too-small budgets yield the empty string rather than noise.
func truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	if len(s) <= maxChars {
		return s
	}
	if maxChars < 8 {
		return ""
	}
	return s[:maxChars-3] + "..."
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
