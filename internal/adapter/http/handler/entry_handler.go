package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/adapter/http/dto"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/infrastructure/metrics"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/usecase"
)

// EntryHandler handles ledger entry HTTP requests.
type EntryHandler struct {
	engine  *usecase.LedgerEngine
	metrics *metrics.Metrics
}

// NewEntryHandler creates a new EntryHandler. Metrics may be nil.
func NewEntryHandler(engine *usecase.LedgerEngine, m *metrics.Metrics) *EntryHandler {
	return &EntryHandler{engine: engine, metrics: m}
}

// Create creates a new entry and propagates its impact.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := req.ToDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry", err.Error())
		return
	}

	result, err := h.engine.ProcessMutation(r.Context(), domain.OpCreate, entry, nil)
	recordMutation(h.metrics, domain.OpCreate, entry, result, err)
	if err != nil {
		writeError(w, mapDomainError(err), "mutation failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MutationFromResult(result, entry))
}

// Update rewrites an existing entry and propagates the delta.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	var req dto.UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	previous, err := h.engine.EntryByID(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "entry lookup failed", err.Error())
		return
	}

	entry, err := req.ToDomain(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry", err.Error())
		return
	}
	entry.CreatedAt = previous.CreatedAt

	result, err := h.engine.ProcessMutation(r.Context(), domain.OpUpdate, entry, previous)
	recordMutation(h.metrics, domain.OpUpdate, entry, result, err)
	if err != nil {
		writeError(w, mapDomainError(err), "mutation failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MutationFromResult(result, entry))
}

// Delete removes an entry and propagates the reversal.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.engine.EntryByID(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "entry lookup failed", err.Error())
		return
	}

	result, err := h.engine.ProcessMutation(r.Context(), domain.OpDelete, entry, nil)
	recordMutation(h.metrics, domain.OpDelete, entry, result, err)
	if err != nil {
		writeError(w, mapDomainError(err), "mutation failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MutationFromResult(result, nil))
}

// List lists entries in a date range.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'from' date", err.Error())
		return
	}

	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'to' date", err.Error())
		return
	}

	entries, err := h.engine.EntriesInRange(r.Context(), from, to)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// ListByRecurrence lists the entries generated by one recurring rule.
func (h *EntryHandler) ListByRecurrence(w http.ResponseWriter, r *http.Request) {
	recurrenceID := chi.URLParam(r, "id")
	if recurrenceID == "" {
		writeError(w, http.StatusBadRequest, "missing recurrence ID", "")
		return
	}

	entries, err := h.engine.EntriesByRecurrence(r.Context(), recurrenceID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// Batch applies several mutations with a single propagation pass. The whole
// batch is rejected if any mutation is malformed.
func (h *EntryHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchMutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	reqs := make([]usecase.MutationRequest, 0, len(req.Mutations))
	for _, item := range req.Mutations {
		var previous *domain.LedgerEntry

		if op := domain.MutationOp(item.Op); op == domain.OpUpdate || op == domain.OpDelete {
			stored, err := h.engine.EntryByID(r.Context(), item.ID)
			if err != nil {
				writeError(w, mapDomainError(err), "entry lookup failed", err.Error())
				return
			}
			previous = stored
		}

		mutation, err := item.ToDomain(previous)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid mutation", err.Error())
			return
		}

		reqs = append(reqs, mutation)
	}

	result, err := h.engine.ProcessBatch(r.Context(), reqs)
	recordPropagation(h.metrics, result, err)
	if err != nil {
		writeError(w, mapDomainError(err), "batch failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MutationFromResult(result, nil))
}
