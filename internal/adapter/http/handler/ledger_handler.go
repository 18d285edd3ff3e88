package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/adapter/http/dto"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/infrastructure/metrics"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/usecase"
)

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	engine  *usecase.LedgerEngine
	metrics *metrics.Metrics
}

// NewLedgerHandler creates a new LedgerHandler. Metrics may be nil.
func NewLedgerHandler(engine *usecase.LedgerEngine, m *metrics.Metrics) *LedgerHandler {
	return &LedgerHandler{engine: engine, metrics: m}
}

// Balance returns the running balance at the end of a day.
func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'date' parameter", err.Error())
		return
	}

	balance, err := h.engine.BalanceOn(r.Context(), date)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		Date:    date.String(),
		Balance: balance.Decimal(),
	})
}

// Recalculate forces a full recomputation from a given date.
func (h *LedgerHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	var req dto.RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	from, err := domain.ParseDate(req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'from' date", err.Error())
		return
	}

	result, err := h.engine.RecalculateFrom(r.Context(), from)
	recordPropagation(h.metrics, result, err)
	if h.metrics != nil && err == nil {
		h.metrics.FullRecalculations.Inc()
	}
	if err != nil {
		writeError(w, mapDomainError(err), "recalculation failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MutationFromResult(result, nil))
}

// Integrity validates the ledger and applies at most one corrective pass.
func (h *LedgerHandler) Integrity(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.ValidateIntegrity(r.Context())
	recordIntegrity(h.metrics, report)
	if err != nil && report == nil {
		writeError(w, http.StatusInternalServerError, "integrity check failed", err.Error())
		return
	}

	status := http.StatusOK
	if report != nil && !report.IsValid {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.IntegrityFromReport(report))
}

// CacheStats exposes cache hit/miss/invalidation counters.
func (h *LedgerHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.GetCacheStats())
}
