package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
)

// MutationResult is returned to the host for every mutation or forced
// recalculation.
type MutationResult struct {
	Success         bool
	AffectedPeriods []domain.PeriodKey
	Errors          []error
	ExecutionTimeMs int64
	CacheHits       uint64
	CacheMisses     uint64
	// DaysProcessed and LastCommitted report incremental progress; a run
	// that failed part-way can be resumed from LastCommitted.
	DaysProcessed int
	LastCommitted domain.PeriodKey
}

// LedgerEngine is the public surface of the balance propagation engine.
//
// Mutations are strictly serialized per engine instance: propagation order
// is load-bearing, and interleaved invalidate/recompute calls for the same
// ledger would corrupt the cache. Balance reads run concurrently with each
// other and block on an in-flight propagation, so a partially updated
// period is never observable.
type LedgerEngine struct {
	mu         sync.RWMutex
	cfg        Config
	entries    EntryStore
	snapshots  SnapshotStore
	cache      *BalanceCache
	impact     *ImpactCalculator
	propagator *CascadePropagator
	validator  *IntegrityValidator
	idGen      IDGenerator
	logger     zerolog.Logger
}

// NewLedgerEngine wires a new engine over the given stores. Each engine
// owns its cache; independent ledgers (one per account, one per test) never
// share state.
func NewLedgerEngine(entries EntryStore, snapshots SnapshotStore, idGen IDGenerator, logger zerolog.Logger, cfg Config) *LedgerEngine {
	cfg = cfg.withDefaults()
	cache := NewBalanceCache()
	propagator := NewCascadePropagator(entries, snapshots, cache, cfg, logger)

	return &LedgerEngine{
		cfg:        cfg,
		entries:    entries,
		snapshots:  snapshots,
		cache:      cache,
		impact:     NewImpactCalculator(cfg),
		propagator: propagator,
		validator:  NewIntegrityValidator(entries, snapshots, cache, propagator, cfg, logger),
		idGen:      idGen,
		logger:     logger,
	}
}

// ProcessMutation applies one entry mutation and recomputes every affected
// period forward to the horizon. Malformed mutations are rejected before
// any state change. On a propagation failure the result describes the
// committed prefix and the error; only periods at or after the failure
// point remain invalidated.
func (e *LedgerEngine) ProcessMutation(ctx context.Context, op domain.MutationOp, entry, previous *domain.LedgerEntry) (*MutationResult, error) {
	start := time.Now()

	impact, err := e.impact.CalculateImpact(op, entry, previous)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	result := &MutationResult{AffectedPeriods: impact.AffectedPeriods}
	hits0, misses0 := e.cache.Counters()

	defer func() {
		hits1, misses1 := e.cache.Counters()
		result.CacheHits = hits1 - hits0
		result.CacheMisses = misses1 - misses0
		result.ExecutionTimeMs = time.Since(start).Milliseconds()
	}()

	if err := e.applyMutation(ctx, op, entry); err != nil {
		result.Errors = append(result.Errors, err)
		return result, err
	}

	// Mark the forward path stale before recomputing, so a failed
	// propagation leaves it visibly invalidated rather than silently wrong.
	e.cache.InvalidateFrom(impact.EarliestAffectedDate)
	if _, err := e.snapshots.InvalidateFrom(ctx, impact.EarliestAffectedDate); err != nil {
		result.Errors = append(result.Errors, err)
		return result, err
	}

	prop, perr := e.propagator.Propagate(ctx, impact.EarliestAffectedDate)
	result.DaysProcessed = prop.CommittedDays
	if !prop.LastCommitted.IsZero() {
		result.LastCommitted = prop.LastCommitted.DayKey()
	}

	if perr != nil {
		result.Errors = append(result.Errors, perr)
		return result, perr
	}

	result.Success = true

	e.logger.Info().
		Str("op", string(op)).
		Str("entry_id", entry.ID).
		Str("from", impact.EarliestAffectedDate.String()).
		Str("difference", impact.Difference.String()).
		Int("days", result.DaysProcessed).
		Msg("mutation processed")

	return result, nil
}

// ProcessBatch applies several mutations and propagates once from the
// earliest affected date. Every mutation is validated before any of them is
// applied. When the batch impact exceeds the configured thresholds the
// propagation runs from the earliest entry on record instead.
func (e *LedgerEngine) ProcessBatch(ctx context.Context, reqs []MutationRequest) (*MutationResult, error) {
	start := time.Now()

	batch, err := e.impact.CalculateBatchImpact(reqs)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	result := &MutationResult{AffectedPeriods: batch.AffectedPeriods}
	hits0, misses0 := e.cache.Counters()

	defer func() {
		hits1, misses1 := e.cache.Counters()
		result.CacheHits = hits1 - hits0
		result.CacheMisses = misses1 - misses0
		result.ExecutionTimeMs = time.Since(start).Milliseconds()
	}()

	if len(batch.Impacts) == 0 {
		result.Success = true
		return result, nil
	}

	// Impacts are already ordered by priority; order here only affects
	// store write sequence, never balances.
	for _, req := range reqs {
		if err := e.applyMutation(ctx, req.Op, req.Entry); err != nil {
			result.Errors = append(result.Errors, err)
			return result, err
		}
	}

	from := batch.EarliestAffectedDate
	if batch.RequiresFullRecalculation {
		if earliest, ok, err := e.entries.EarliestDate(ctx); err == nil && ok {
			from = earliest
		}
	}

	e.cache.InvalidateFrom(from)
	if _, err := e.snapshots.InvalidateFrom(ctx, from); err != nil {
		result.Errors = append(result.Errors, err)
		return result, err
	}

	prop, perr := e.propagator.Propagate(ctx, from)
	result.DaysProcessed = prop.CommittedDays
	if !prop.LastCommitted.IsZero() {
		result.LastCommitted = prop.LastCommitted.DayKey()
	}

	if perr != nil {
		result.Errors = append(result.Errors, perr)
		return result, perr
	}

	result.Success = true

	return result, nil
}

// RecalculateFrom forces a full recomputation from the given date to the
// horizon, regardless of cache state.
func (e *LedgerEngine) RecalculateFrom(ctx context.Context, from domain.Date) (*MutationResult, error) {
	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	result := &MutationResult{
		AffectedPeriods: domain.MonthKeysBetween(from, e.cfg.horizon()),
	}
	hits0, misses0 := e.cache.Counters()

	defer func() {
		hits1, misses1 := e.cache.Counters()
		result.CacheHits = hits1 - hits0
		result.CacheMisses = misses1 - misses0
		result.ExecutionTimeMs = time.Since(start).Milliseconds()
	}()

	e.cache.InvalidateFrom(from)
	if _, err := e.snapshots.InvalidateFrom(ctx, from); err != nil {
		result.Errors = append(result.Errors, err)
		return result, err
	}

	prop, perr := e.propagator.Propagate(ctx, from)
	result.DaysProcessed = prop.CommittedDays
	if !prop.LastCommitted.IsZero() {
		result.LastCommitted = prop.LastCommitted.DayKey()
	}

	if perr != nil {
		result.Errors = append(result.Errors, perr)
		return result, perr
	}

	e.cache.MarkFullRecalculation(time.Now().UTC())
	result.Success = true

	e.logger.Info().
		Str("from", from.String()).
		Int("days", result.DaysProcessed).
		Msg("forced recalculation completed")

	return result, nil
}

// ValidateIntegrity re-derives balances, scores ledger health, and applies
// at most one bounded corrective pass.
func (e *LedgerEngine) ValidateIntegrity(ctx context.Context) (*IntegrityReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.validator.ValidateAndCorrect(ctx)
}

// GetCacheStats returns hit/miss/invalidation counters and the time of the
// last full recalculation.
func (e *LedgerEngine) GetCacheStats() CacheStats {
	return e.cache.Stats()
}

// BalanceOn returns the running balance at the end of the given day, from
// the last fully committed snapshot. With no usable snapshot it re-derives
// the balance from raw entries; results are identical either way.
func (e *LedgerEngine) BalanceOn(ctx context.Context, date domain.Date) (domain.Money, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if snap, ok := e.cache.Get(date.DayKey()); ok && !snap.Invalidated {
		return snap.ClosingBalance, nil
	}

	snap, err := e.snapshots.Get(ctx, date.DayKey())
	if err == nil && !snap.Invalidated {
		return snap.ClosingBalance, nil
	}

	earliest, ok, serr := e.entries.EarliestDate(ctx)
	if serr != nil {
		return 0, serr
	}

	if !ok || date.Before(earliest) {
		return 0, nil
	}

	entries, serr := e.entries.ByDateRange(ctx, earliest, date)
	if serr != nil {
		return 0, serr
	}

	var balance domain.Money
	for _, entry := range entries {
		balance += entry.SignedAmount()
	}

	return balance, nil
}

// EntryByID fetches a single entry, pass-through to the host's store.
func (e *LedgerEngine) EntryByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	return e.entries.ByID(ctx, id)
}

// EntriesByRecurrence exposes the recurrence back-reference lookup.
func (e *LedgerEngine) EntriesByRecurrence(ctx context.Context, recurrenceID string) ([]*domain.LedgerEntry, error) {
	return e.entries.ByRecurrence(ctx, recurrenceID)
}

// EntriesInRange lists raw entries for a date range, pass-through to the
// host's store.
func (e *LedgerEngine) EntriesInRange(ctx context.Context, from, to domain.Date) ([]*domain.LedgerEntry, error) {
	return e.entries.ByDateRange(ctx, from, to)
}

func (e *LedgerEngine) applyMutation(ctx context.Context, op domain.MutationOp, entry *domain.LedgerEntry) error {
	now := time.Now().UTC()

	switch op {
	case domain.OpCreate:
		if entry.ID == "" {
			entry.ID = e.idGen.Generate()
		}

		entry.CreatedAt = now
		entry.UpdatedAt = now

		return e.entries.Append(ctx, entry)
	case domain.OpUpdate:
		entry.UpdatedAt = now

		return e.entries.Update(ctx, entry)
	default:
		return e.entries.Remove(ctx, entry.ID)
	}
}
