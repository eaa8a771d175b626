package budget

import (
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/liftwise/coach/internal/observability"
	"github.com/liftwise/coach/internal/storage"
	aierrors "github.com/liftwise/coach/pkg/errors"
)

// stateKey is the storage key for the persisted counters.
const stateKey = "budget/state"

// maxRetainedRecords bounds the persisted usage log.
const maxRetainedRecords = 500

// Unlimited disables a limit. A limit of 0 means no allowance at all.
const Unlimited = -1

// Limits configures the tracker.
type Limits struct {
	DailyUnits   int `json:"daily_units"`
	MonthlyUnits int `json:"monthly_units"`
}

// DefaultLimits returns the stock quota.
func DefaultLimits() Limits {
	return Limits{DailyUnits: 100_000, MonthlyUnits: 2_000_000}
}

// state is the persisted shape.
type state struct {
	Day         string        `json:"day"`   // YYYY-MM-DD the daily counter belongs to
	Month       string        `json:"month"` // YYYY-MM the monthly counter belongs to
	DailyUsed   int           `json:"daily_used"`
	MonthlyUsed int           `json:"monthly_used"`
	Records     []UsageRecord `json:"records"`
}

// Tracker owns the budget counters. It is the only component allowed to
// mutate them; the remote client records usage here immediately after a
// successful call.
type Tracker struct {
	mu     sync.Mutex
	limits Limits
	st     state
	store  storage.Store // nil disables persistence
	logger *observability.Logger
	calc   *Calculator

	now func() time.Time
}

// NewTracker loads persisted counters (if a store is given) and returns
// a ready tracker.
func NewTracker(limits Limits, store storage.Store, logger *observability.Logger) *Tracker {
	if logger == nil {
		logger = observability.NopLogger()
	}
	t := &Tracker{
		limits: limits,
		store:  store,
		logger: logger.WithFields("component", "budget"),
		calc:   NewCalculator(nil),
		now:    time.Now,
	}
	t.load()
	return t
}

// Allow reports whether a remote call may proceed. It rolls the counters
// over first, so a stale day never blocks a fresh one.
func (t *Tracker) Allow() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rolloverLocked()

	if t.limits.DailyUnits != Unlimited && t.st.DailyUsed >= t.limits.DailyUnits {
		return aierrors.NewBudgetExceeded(fmt.Sprintf(
			"daily budget exhausted (%d/%d units)", t.st.DailyUsed, t.limits.DailyUnits))
	}
	if t.limits.MonthlyUnits != Unlimited && t.st.MonthlyUsed >= t.limits.MonthlyUnits {
		return aierrors.NewBudgetExceeded(fmt.Sprintf(
			"monthly budget exhausted (%d/%d units)", t.st.MonthlyUsed, t.limits.MonthlyUnits))
	}
	return nil
}

// Record appends a usage record and charges its units to the counters.
func (t *Tracker) Record(provider, feature string, inputUnits, outputUnits int, model string) UsageRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rolloverLocked()

	cost := t.calc.Calculate(model, inputUnits, outputUnits)
	rec := NewUsageRecord(t.now(), provider, feature, inputUnits, outputUnits, cost)

	t.st.DailyUsed += rec.Units()
	t.st.MonthlyUsed += rec.Units()
	t.st.Records = append(t.st.Records, rec)
	if len(t.st.Records) > maxRetainedRecords {
		t.st.Records = t.st.Records[len(t.st.Records)-maxRetainedRecords:]
	}

	t.saveLocked()
	return rec
}

// Snapshot is a read-only view of the budget state.
type Snapshot struct {
	DailyLimit   int     `json:"daily_limit"`
	MonthlyLimit int     `json:"monthly_limit"`
	DailyUsed    int     `json:"daily_used"`
	MonthlyUsed  int     `json:"monthly_used"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}

// Snapshot returns the current counters after rollover.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rolloverLocked()

	var cost float64
	for _, r := range t.st.Records {
		cost += r.EstimatedCost
	}
	return Snapshot{
		DailyLimit:   t.limits.DailyUnits,
		MonthlyLimit: t.limits.MonthlyUnits,
		DailyUsed:    t.st.DailyUsed,
		MonthlyUsed:  t.st.MonthlyUsed,
		TotalCostUSD: cost,
	}
}

// Records returns a copy of the retained usage log.
func (t *Tracker) Records() []UsageRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]UsageRecord, len(t.st.Records))
	copy(out, t.st.Records)
	return out
}

// SetLimits replaces the limits, e.g. after a config reload.
func (t *Tracker) SetLimits(limits Limits) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.limits = limits
}

// rolloverLocked resets the counters when the wall-clock day or month
// has moved past the one the counters belong to. Each reset happens
// exactly once because the marker advances with it.
func (t *Tracker) rolloverLocked() {
	now := t.now()
	day := now.Format("2006-01-02")
	month := now.Format("2006-01")

	changed := false
	if t.st.Day != day {
		t.st.Day = day
		t.st.DailyUsed = 0
		changed = true
	}
	if t.st.Month != month {
		t.st.Month = month
		t.st.MonthlyUsed = 0
		changed = true
	}
	if changed {
		t.saveLocked()
	}
}

func (t *Tracker) load() {
	if t.store == nil {
		return
	}
	data, ok, err := t.store.Get(stateKey)
	if err != nil || !ok {
		if err != nil {
			t.logger.Warn("budget state load failed", "error", err)
		}
		return
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		t.logger.Warn("budget state is corrupt, starting fresh", "error", err)
		return
	}
	t.st = st
}

func (t *Tracker) saveLocked() {
	if t.store == nil {
		return
	}
	data, err := json.Marshal(t.st)
	if err != nil {
		return
	}
	if err := t.store.Set(stateKey, data); err != nil {
		t.logger.Warn("budget state write failed", "error", err)
	}
}
