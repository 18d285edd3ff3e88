package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
)

// PropagationResult reports how far a propagation run got. On failure it
// still describes the committed prefix, so a rerun can resume from
// LastCommitted instead of starting over.
type PropagationResult struct {
	From             domain.Date
	Horizon          domain.Date
	CommittedDays    int
	CommittedPeriods []domain.PeriodKey // month keys finalized during the walk
	LastCommitted    domain.Date
	Failed           *domain.RecomputationError
}

// CascadePropagator walks forward from an affected date, recomputing every
// period balance with carry-forward up to the horizon. Every day in the
// range is materialized, including days without entries; gaps would break
// the carry-forward chain across month and year boundaries.
type CascadePropagator struct {
	entries   EntryStore
	snapshots SnapshotStore
	cache     *BalanceCache
	cfg       Config
	logger    zerolog.Logger
}

// NewCascadePropagator creates a new CascadePropagator.
func NewCascadePropagator(entries EntryStore, snapshots SnapshotStore, cache *BalanceCache, cfg Config, logger zerolog.Logger) *CascadePropagator {
	return &CascadePropagator{
		entries:   entries,
		snapshots: snapshots,
		cache:     cache,
		cfg:       cfg.withDefaults(),
		logger:    logger,
	}
}

// Horizon returns the furthest date the propagator eagerly maintains.
func (p *CascadePropagator) Horizon() domain.Date {
	return p.cfg.horizon()
}

// Propagate recomputes period balances from the given date to the horizon,
// in strict chronological order. It commits one day at a time; on any store
// failure it stops at the failing period and returns the committed prefix
// together with a RecomputationError. It never skips the failing period and
// continues.
func (p *CascadePropagator) Propagate(ctx context.Context, from domain.Date) (*PropagationResult, error) {
	horizon := p.Horizon()
	result := &PropagationResult{From: from, Horizon: horizon}

	if from.After(horizon) {
		// Beyond the eager horizon; deferred until explicitly requested.
		return result, nil
	}

	opening, err := p.resolveOpening(ctx, from)
	if err != nil {
		return p.fail(result, from.DayKey(), err)
	}

	entries, err := p.entries.ByDateRange(ctx, from, horizon)
	if err != nil {
		return p.fail(result, from.DayKey(), err)
	}

	byDay := make(map[domain.Date][]*domain.LedgerEntry, len(entries))
	for _, e := range entries {
		byDay[e.Date] = append(byDay[e.Date], e)
	}

	// When the run starts mid-period, seed the month and year accumulators
	// from the raw entries earlier in the same period, so the rolled-up
	// snapshots cover the whole period rather than the walked suffix.
	monthNet, monthCount, err := p.seed(ctx, from.StartOfMonth(), from)
	if err != nil {
		return p.fail(result, from.MonthKey(), err)
	}

	yearNet, yearCount, err := p.seed(ctx, domain.NewDate(from.Year(), time.January, 1), from)
	if err != nil {
		return p.fail(result, from.YearKey(), err)
	}

	monthOpening := opening - monthNet
	yearOpening := opening - yearNet

	now := time.Now().UTC()
	start := time.Now()

	for d := from; !d.After(horizon); d = d.Next() {
		dayEntries := byDay[d]

		var net domain.Money
		for _, e := range dayEntries {
			net += e.SignedAmount()
		}

		snap := domain.NewPeriodSnapshot(d.DayKey(), opening, net, len(dayEntries), now)
		if err := p.commit(ctx, snap); err != nil {
			return p.fail(result, d.DayKey(), err)
		}

		result.CommittedDays++
		result.LastCommitted = d
		opening = snap.ClosingBalance

		monthNet += net
		monthCount += len(dayEntries)
		yearNet += net
		yearCount += len(dayEntries)

		if d.Equal(d.EndOfMonth()) || d.Equal(horizon) {
			msnap := domain.NewPeriodSnapshot(d.MonthKey(), monthOpening, monthNet, monthCount, now)
			if err := p.commit(ctx, msnap); err != nil {
				return p.fail(result, d.MonthKey(), err)
			}

			result.CommittedPeriods = append(result.CommittedPeriods, d.MonthKey())
			monthOpening = msnap.ClosingBalance
			monthNet, monthCount = 0, 0
		}

		if d.Equal(d.EndOfYear()) || d.Equal(horizon) {
			ysnap := domain.NewPeriodSnapshot(d.YearKey(), yearOpening, yearNet, yearCount, now)
			if err := p.commit(ctx, ysnap); err != nil {
				return p.fail(result, d.YearKey(), err)
			}

			yearOpening = ysnap.ClosingBalance
			yearNet, yearCount = 0, 0
		}
	}

	p.logger.Debug().
		Str("from", from.String()).
		Str("horizon", horizon.String()).
		Int("days", result.CommittedDays).
		Dur("duration", time.Since(start)).
		Msg("propagation completed")

	return result, nil
}

// resolveOpening finds the closing balance of the nearest prior populated
// period: the previous day first, then the last populated day of each
// earlier month back to the earliest entry on record (December of the
// previous year included). With no usable snapshot anywhere it falls back
// to re-summing the raw entries before the start date; an empty ledger
// opens at zero.
func (p *CascadePropagator) resolveOpening(ctx context.Context, from domain.Date) (domain.Money, error) {
	prev := from.Prev()
	if snap, ok := p.lookup(ctx, prev.DayKey()); ok {
		return snap.ClosingBalance, nil
	}

	earliest, ok, err := p.entries.EarliestDate(ctx)
	if err != nil {
		return 0, err
	}

	if !ok || !earliest.Before(from) {
		return 0, nil
	}

	for month := prev.StartOfMonth(); !month.Before(earliest.StartOfMonth()); month = month.AddMonths(-1) {
		last := month.EndOfMonth()
		if last.After(prev) {
			last = prev
		}

		for day := last; !day.Before(month); day = day.Prev() {
			if snap, ok := p.lookup(ctx, day.DayKey()); ok {
				return snap.ClosingBalance, nil
			}
		}
	}

	net, _, err := p.seed(ctx, earliest, from)
	if err != nil {
		return 0, err
	}

	return net, nil
}

// seed sums the signed entries in [start, before).
func (p *CascadePropagator) seed(ctx context.Context, start, before domain.Date) (domain.Money, int, error) {
	if !start.Before(before) {
		return 0, 0, nil
	}

	entries, err := p.entries.ByDateRange(ctx, start, before.Prev())
	if err != nil {
		return 0, 0, err
	}

	var net domain.Money
	for _, e := range entries {
		net += e.SignedAmount()
	}

	return net, len(entries), nil
}

// lookup fetches a usable (non-invalidated) snapshot, cache first.
func (p *CascadePropagator) lookup(ctx context.Context, key domain.PeriodKey) (*domain.PeriodSnapshot, bool) {
	if snap, ok := p.cache.Get(key); ok && !snap.Invalidated {
		return snap, true
	}

	snap, err := p.snapshots.Get(ctx, key)
	if err != nil || snap.Invalidated {
		return nil, false
	}

	p.cache.Set(snap)

	return snap, true
}

// commit writes a snapshot to the store and then the cache. The store is
// written first: the cache must never be ahead of durable state.
func (p *CascadePropagator) commit(ctx context.Context, snap *domain.PeriodSnapshot) error {
	if err := p.snapshots.Set(ctx, snap); err != nil {
		return err
	}

	p.cache.Set(snap)

	return nil
}

func (p *CascadePropagator) fail(result *PropagationResult, period domain.PeriodKey, err error) (*PropagationResult, error) {
	rerr := &domain.RecomputationError{Period: period, Err: err}
	result.Failed = rerr

	p.logger.Error().
		Err(err).
		Str("period", period.String()).
		Int("committed_days", result.CommittedDays).
		Msg("propagation aborted")

	return result, rerr
}
