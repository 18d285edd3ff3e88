package handler

import (
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/infrastructure/metrics"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/usecase"
)

// recordMutation feeds one mutation outcome into Prometheus. A nil result
// means the mutation was rejected before any state change.
func recordMutation(m *metrics.Metrics, op domain.MutationOp, entry *domain.LedgerEntry, result *usecase.MutationResult, err error) {
	if m == nil {
		return
	}

	if result == nil {
		m.MutationsRejected.WithLabelValues(string(op)).Inc()
		return
	}

	m.MutationsProcessed.WithLabelValues(string(op)).Inc()
	m.MutationDuration.Observe(float64(result.ExecutionTimeMs) / 1000)
	if entry != nil {
		m.MutationAmount.Observe(entry.Amount.Decimal().InexactFloat64())
	}

	recordPropagation(m, result, err)
}

// recordPropagation feeds propagation progress and cache effectiveness into
// Prometheus.
func recordPropagation(m *metrics.Metrics, result *usecase.MutationResult, err error) {
	if m == nil || result == nil {
		return
	}

	m.PropagationRuns.Inc()
	m.PropagationDays.Observe(float64(result.DaysProcessed))
	if err != nil {
		m.PropagationFailures.Inc()
	}

	m.CacheHits.Add(float64(result.CacheHits))
	m.CacheMisses.Add(float64(result.CacheMisses))
}

// recordIntegrity feeds one validation report into Prometheus.
func recordIntegrity(m *metrics.Metrics, report *usecase.IntegrityReport) {
	if m == nil || report == nil {
		return
	}

	m.IntegrityChecks.Inc()
	m.IntegrityScore.Set(float64(report.Score))

	for _, issue := range report.Errors {
		m.IntegrityErrors.WithLabelValues(issue.Severity.String()).Inc()
	}
	for _, issue := range report.Warnings {
		m.IntegrityErrors.WithLabelValues(issue.Severity.String()).Inc()
	}

	if report.CorrectionApplied {
		m.CorrectionsApplied.Inc()
		if !report.IsValid {
			m.CorrectionsExhausted.Inc()
		}
	}
}
