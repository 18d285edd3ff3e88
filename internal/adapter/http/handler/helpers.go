package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/adapter/http/dto"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var verr *domain.ValidationError

	switch {
	case errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNegativeAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAmountTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownEntryKind):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownMutationOp):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseDateQuery parses a date query parameter.
func parseDateQuery(r *http.Request, key string) (domain.Date, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return domain.Date{}, domain.ErrInvalidDate
	}
	return domain.ParseDate(val)
}
