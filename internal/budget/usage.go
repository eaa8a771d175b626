// Package budget tracks remote-call usage against daily and monthly
// quotas. All mutation funnels through the Tracker so quota reasoning
// stays in one place, and counters persist across process restarts.
package budget

import (
	"time"

	"github.com/google/uuid"
)

// UsageRecord is one remote call's usage. Immutable once appended.
type UsageRecord struct {
	ID            string    `json:"id"`
	Day           string    `json:"day"` // YYYY-MM-DD
	InputUnits    int       `json:"input_units"`
	OutputUnits   int       `json:"output_units"`
	Provider      string    `json:"provider"`
	Feature       string    `json:"feature"`
	EstimatedCost float64   `json:"estimated_cost"`
	At            time.Time `json:"at"`
}

// NewUsageRecord stamps a record with an ID and the given instant.
func NewUsageRecord(at time.Time, provider, feature string, inputUnits, outputUnits int, cost float64) UsageRecord {
	return UsageRecord{
		ID:            uuid.New().String(),
		Day:           at.Format("2006-01-02"),
		InputUnits:    inputUnits,
		OutputUnits:   outputUnits,
		Provider:      provider,
		Feature:       feature,
		EstimatedCost: cost,
		At:            at,
	}
}

// Units returns the total units the record charges against the budget.
func (r UsageRecord) Units() int {
	return r.InputUnits + r.OutputUnits
}
