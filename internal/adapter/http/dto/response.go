package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/usecase"
)

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID           string          `json:"id"`
	Date         string          `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	Kind         string          `json:"kind"`
	RecurrenceID string          `json:"recurrence_id,omitempty"`
	Source       string          `json:"source,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:           e.ID,
		Date:         e.Date.String(),
		Amount:       e.Amount.Decimal(),
		Kind:         string(e.Kind),
		RecurrenceID: e.RecurrenceID,
		Source:       e.Source,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// MutationResponse reports the outcome of a mutation or recalculation.
type MutationResponse struct {
	Success         bool           `json:"success"`
	Entry           *EntryResponse `json:"entry,omitempty"`
	AffectedPeriods []string       `json:"affected_periods"`
	DaysProcessed   int            `json:"days_processed"`
	ExecutionTimeMs int64          `json:"execution_time_ms"`
	CacheHits       uint64         `json:"cache_hits"`
	CacheMisses     uint64         `json:"cache_misses"`
	Errors          []string       `json:"errors,omitempty"`
}

// MutationFromResult converts an engine result to a response.
func MutationFromResult(result *usecase.MutationResult, entry *domain.LedgerEntry) *MutationResponse {
	resp := &MutationResponse{
		Success:         result.Success,
		AffectedPeriods: make([]string, len(result.AffectedPeriods)),
		DaysProcessed:   result.DaysProcessed,
		ExecutionTimeMs: result.ExecutionTimeMs,
		CacheHits:       result.CacheHits,
		CacheMisses:     result.CacheMisses,
	}

	for i, key := range result.AffectedPeriods {
		resp.AffectedPeriods[i] = string(key)
	}

	for _, err := range result.Errors {
		resp.Errors = append(resp.Errors, err.Error())
	}

	if entry != nil {
		resp.Entry = EntryFromDomain(entry)
	}

	return resp
}

// BalanceResponse represents a running balance at the end of a day.
type BalanceResponse struct {
	Date    string          `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// IntegrityResponse represents an integrity report in API responses.
type IntegrityResponse struct {
	IsValid           bool      `json:"is_valid"`
	Score             int       `json:"score"`
	Errors            []string  `json:"errors,omitempty"`
	Warnings          []string  `json:"warnings,omitempty"`
	Suggestions       []string  `json:"suggestions,omitempty"`
	CheckedPeriods    int       `json:"checked_periods"`
	CorrectionApplied bool      `json:"correction_applied"`
	CheckedAt         time.Time `json:"checked_at"`
}

// IntegrityFromReport converts a validator report to a response.
func IntegrityFromReport(report *usecase.IntegrityReport) *IntegrityResponse {
	resp := &IntegrityResponse{
		IsValid:           report.IsValid,
		Score:             report.Score,
		Suggestions:       report.Suggestions,
		CheckedPeriods:    report.CheckedPeriods,
		CorrectionApplied: report.CorrectionApplied,
		CheckedAt:         report.CheckedAt,
	}

	for _, issue := range report.Errors {
		resp.Errors = append(resp.Errors, issue.String())
	}
	for _, issue := range report.Warnings {
		resp.Warnings = append(resp.Warnings, issue.String())
	}

	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
