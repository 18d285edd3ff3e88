package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
)

// IntegrityIssue is one finding of the validator.
type IntegrityIssue struct {
	Severity domain.Severity
	Period   domain.PeriodKey
	Err      error
}

func (i IntegrityIssue) String() string {
	return fmt.Sprintf("[%s] %s: %v", i.Severity, i.Period, i.Err)
}

// IntegrityReport is the result of one validation pass. Errors hold the
// critical and high severity findings; Warnings hold the medium ones.
type IntegrityReport struct {
	IsValid           bool
	Score             int
	Errors            []IntegrityIssue
	Warnings          []IntegrityIssue
	Suggestions       []string
	CheckedPeriods    int
	CorrectionApplied bool
	CheckedAt         time.Time
}

func (r *IntegrityReport) add(issue IntegrityIssue) {
	if issue.Severity >= domain.SeverityHigh {
		r.Errors = append(r.Errors, issue)
	} else {
		r.Warnings = append(r.Warnings, issue)
	}
}

func (r *IntegrityReport) finalize() {
	penalty := 0
	for _, issue := range r.Errors {
		penalty += issue.Severity.Weight()
	}

	for _, issue := range r.Warnings {
		penalty += issue.Severity.Weight()
	}

	r.Score = 100 - penalty
	if r.Score < 0 {
		r.Score = 0
	}

	r.IsValid = len(r.Errors) == 0
}

// IntegrityValidator independently re-derives balances, compares them to the
// cached snapshots, scores overall health, and can run one bounded
// corrective pass.
type IntegrityValidator struct {
	entries    EntryStore
	snapshots  SnapshotStore
	cache      *BalanceCache
	propagator *CascadePropagator
	cfg        Config
	logger     zerolog.Logger
}

// NewIntegrityValidator creates a new IntegrityValidator.
func NewIntegrityValidator(entries EntryStore, snapshots SnapshotStore, cache *BalanceCache, propagator *CascadePropagator, cfg Config, logger zerolog.Logger) *IntegrityValidator {
	return &IntegrityValidator{
		entries:    entries,
		snapshots:  snapshots,
		cache:      cache,
		propagator: propagator,
		cfg:        cfg.withDefaults(),
		logger:     logger,
	}
}

// Validate runs three independent checks per day from the earliest entry to
// the horizon: carry-forward continuity between adjacent periods, snapshot
// checksum integrity, and an internal recomputation of the closing balance
// from the raw entries.
func (v *IntegrityValidator) Validate(ctx context.Context) (*IntegrityReport, error) {
	report := &IntegrityReport{CheckedAt: time.Now().UTC()}

	earliest, ok, err := v.entries.EarliestDate(ctx)
	if err != nil {
		return nil, err
	}

	if !ok {
		// Empty ledger: trivially healthy.
		report.finalize()
		return report, nil
	}

	horizon := v.propagator.Horizon()

	entries, err := v.entries.ByDateRange(ctx, earliest, horizon)
	if err != nil {
		return nil, err
	}

	byDay := make(map[domain.Date]domain.Money, len(entries))
	countByDay := make(map[domain.Date]int, len(entries))
	for _, e := range entries {
		byDay[e.Date] += e.SignedAmount()
		countByDay[e.Date]++
	}

	var (
		prev    *domain.PeriodSnapshot
		prevKey domain.PeriodKey
		running domain.Money
	)

	for d := earliest; !d.After(horizon); d = d.Next() {
		report.CheckedPeriods++
		running += byDay[d]

		snap := v.fetch(ctx, d.DayKey())
		if snap == nil || snap.Invalidated {
			report.add(IntegrityIssue{
				Severity: domain.SeverityCritical,
				Period:   d.DayKey(),
				Err: &domain.ContinuityError{
					Prev: prevKey,
					Next: d.DayKey(),
				},
			})
			prev, prevKey = nil, d.DayKey()

			continue
		}

		// (a) continuity across the carry-forward chain.
		if prev != nil && prev.ClosingBalance != snap.OpeningBalance {
			report.add(IntegrityIssue{
				Severity: domain.SeverityCritical,
				Period:   d.DayKey(),
				Err: &domain.ContinuityError{
					Prev:        prevKey,
					Next:        d.DayKey(),
					PrevClosing: prev.ClosingBalance,
					NextOpening: snap.OpeningBalance,
				},
			})
		}

		// (b) checksum against the stored snapshot fields.
		if !snap.VerifyChecksum() {
			report.add(IntegrityIssue{
				Severity: domain.SeverityHigh,
				Period:   d.DayKey(),
				Err: &domain.ChecksumError{
					Period:   d.DayKey(),
					Stored:   snap.Checksum,
					Computed: snap.ComputeChecksum(),
				},
			})
		}

		// (c) raw entries re-summed must equal the stored closing balance.
		if !snap.Balanced() || snap.ClosingBalance != running {
			report.add(IntegrityIssue{
				Severity: domain.SeverityCritical,
				Period:   d.DayKey(),
				Err: &domain.RecomputationError{
					Period: d.DayKey(),
					Err: fmt.Errorf("stored closing %s, recomputed %s",
						snap.ClosingBalance, running),
				},
			})
		} else if snap.EntryCount != countByDay[d] {
			report.add(IntegrityIssue{
				Severity: domain.SeverityMedium,
				Period:   d.DayKey(),
				Err: fmt.Errorf("entry count drifted: snapshot has %d, store has %d",
					snap.EntryCount, countByDay[d]),
			})
		}

		prev, prevKey = snap, d.DayKey()
	}

	report.finalize()

	if !report.IsValid {
		report.Suggestions = append(report.Suggestions,
			fmt.Sprintf("recalculate balances from %s", earliest))
	}

	return report, nil
}

// ValidateAndCorrect validates and, on any error, runs exactly one bounded
// corrective pass: a full forward recomputation from the earliest known
// period followed by a re-validation. It never recurses or loops; errors
// that survive the pass require an operator-triggered full recalculation.
func (v *IntegrityValidator) ValidateAndCorrect(ctx context.Context) (*IntegrityReport, error) {
	report, err := v.Validate(ctx)
	if err != nil {
		return nil, err
	}

	if report.IsValid {
		return report, nil
	}

	earliest, ok, err := v.entries.EarliestDate(ctx)
	if err != nil || !ok {
		return report, err
	}

	v.logger.Warn().
		Int("score", report.Score).
		Int("errors", len(report.Errors)).
		Msg("integrity errors detected, running corrective pass")

	v.cache.InvalidateFrom(earliest)
	if _, err := v.snapshots.InvalidateFrom(ctx, earliest); err != nil {
		return report, err
	}

	if _, err := v.propagator.Propagate(ctx, earliest); err != nil {
		report.Suggestions = append(report.Suggestions,
			"corrective pass failed; run an operator-triggered full recalculation")
		return report, err
	}

	corrected, err := v.Validate(ctx)
	if err != nil {
		return nil, err
	}

	corrected.CorrectionApplied = true

	if !corrected.IsValid {
		corrected.Suggestions = append(corrected.Suggestions,
			"errors remain after one corrective pass; an operator-triggered full recalculation is required")
	}

	return corrected, nil
}

// fetch reads a snapshot for inspection, cache first, including invalidated
// ones; the validator reports on them rather than skipping them.
func (v *IntegrityValidator) fetch(ctx context.Context, key domain.PeriodKey) *domain.PeriodSnapshot {
	if snap, ok := v.cache.Get(key); ok {
		return snap
	}

	snap, err := v.snapshots.Get(ctx, key)
	if err != nil {
		return nil
	}

	return snap
}
