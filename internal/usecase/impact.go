package usecase

import (
	"sort"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
)

// Impact describes the effect of one mutation on the running balances: the
// signed delta and the forward range of periods that must be recomputed.
type Impact struct {
	Op                   domain.MutationOp
	EntryID              string
	OldValue             domain.Money
	NewValue             domain.Money
	Difference           domain.Money
	EarliestAffectedDate domain.Date
	// AffectedPeriods holds every month key from the earliest affected date
	// to the horizon, in chronological order.
	AffectedPeriods []domain.PeriodKey
	// Priority orders batched impacts; it never affects correctness.
	Priority int
}

// MutationRequest pairs an operation with its entry payload.
type MutationRequest struct {
	Op       domain.MutationOp
	Entry    *domain.LedgerEntry
	Previous *domain.LedgerEntry
}

// BatchImpact is the union of several impacts, ordered for processing.
type BatchImpact struct {
	Impacts              []*Impact
	AffectedPeriods      []domain.PeriodKey
	EarliestAffectedDate domain.Date
	TotalDifference      domain.Money
	// RequiresFullRecalculation is set when any impact exceeds the
	// configured magnitude or span thresholds.
	RequiresFullRecalculation bool
}

// ImpactCalculator turns mutations into signed deltas and affected ranges.
type ImpactCalculator struct {
	cfg Config
}

// NewImpactCalculator creates a new ImpactCalculator.
func NewImpactCalculator(cfg Config) *ImpactCalculator {
	return &ImpactCalculator{cfg: cfg.withDefaults()}
}

// CalculateImpact computes the delta of a single mutation. Malformed input
// is rejected with a ValidationError before any propagation can start.
func (c *ImpactCalculator) CalculateImpact(op domain.MutationOp, entry, previous *domain.LedgerEntry) (*Impact, error) {
	if err := domain.ValidateMutation(op, entry, previous); err != nil {
		return nil, err
	}

	impact := &Impact{
		Op:                   op,
		EntryID:              entry.ID,
		EarliestAffectedDate: entry.Date,
	}

	switch op {
	case domain.OpCreate:
		impact.NewValue = entry.SignedAmount()
	case domain.OpUpdate:
		impact.OldValue = previous.SignedAmount()
		impact.NewValue = entry.SignedAmount()
		// A date edit can move an entry earlier; both positions are affected.
		impact.EarliestAffectedDate = domain.MinDate(previous.Date, entry.Date)
	case domain.OpDelete:
		impact.OldValue = entry.SignedAmount()
	}

	impact.Difference = impact.NewValue - impact.OldValue
	impact.AffectedPeriods = domain.MonthKeysBetween(impact.EarliestAffectedDate, c.cfg.horizon())
	impact.Priority = c.priority(impact.Difference, len(impact.AffectedPeriods))

	return impact, nil
}

// CalculateBatchImpact unions the affected ranges of several mutations and
// orders them for processing.
func (c *ImpactCalculator) CalculateBatchImpact(reqs []MutationRequest) (*BatchImpact, error) {
	batch := &BatchImpact{}

	seen := make(map[domain.PeriodKey]bool)

	for _, req := range reqs {
		impact, err := c.CalculateImpact(req.Op, req.Entry, req.Previous)
		if err != nil {
			return nil, err
		}

		batch.Impacts = append(batch.Impacts, impact)
		batch.TotalDifference += impact.Difference

		if batch.EarliestAffectedDate.IsZero() || impact.EarliestAffectedDate.Before(batch.EarliestAffectedDate) {
			batch.EarliestAffectedDate = impact.EarliestAffectedDate
		}

		for _, key := range impact.AffectedPeriods {
			if !seen[key] {
				seen[key] = true
				batch.AffectedPeriods = append(batch.AffectedPeriods, key)
			}
		}

		if c.exceedsThresholds(impact) {
			batch.RequiresFullRecalculation = true
		}
	}

	sort.Slice(batch.AffectedPeriods, func(i, j int) bool {
		return batch.AffectedPeriods[i] < batch.AffectedPeriods[j]
	})

	// Priority first, ties broken by date, then by descending magnitude.
	sort.SliceStable(batch.Impacts, func(i, j int) bool {
		a, b := batch.Impacts[i], batch.Impacts[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}

		if !a.EarliestAffectedDate.Equal(b.EarliestAffectedDate) {
			return a.EarliestAffectedDate.Before(b.EarliestAffectedDate)
		}

		return a.Difference.Abs() > b.Difference.Abs()
	})

	return batch, nil
}

// exceedsThresholds reports whether an impact is too large for incremental
// recomputation: either it moves more money than the configured magnitude
// or it reaches further back than the configured span.
func (c *ImpactCalculator) exceedsThresholds(impact *Impact) bool {
	if impact.Difference.Abs() >= c.cfg.FullRecalcAmount {
		return true
	}

	span := len(domain.MonthKeysBetween(impact.EarliestAffectedDate, c.cfg.Today()))

	return span > c.cfg.FullRecalcSpanMonths
}

func (c *ImpactCalculator) priority(diff domain.Money, spanMonths int) int {
	p := spanMonths

	switch mag := diff.Abs(); {
	case mag >= 1_000_000_00:
		p += 40
	case mag >= 100_000_00:
		p += 30
	case mag >= 10_000_00:
		p += 20
	case mag >= 1_000_00:
		p += 10
	}

	return p
}
