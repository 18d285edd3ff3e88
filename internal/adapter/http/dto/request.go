package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/usecase"
)

// CreateEntryRequest represents a request to create a ledger entry.
// Amounts are decimal strings at the API boundary; the engine works in
// integer minor units.
type CreateEntryRequest struct {
	Date         string          `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	Kind         string          `json:"kind"`
	RecurrenceID string          `json:"recurrence_id,omitempty"`
	Source       string          `json:"source,omitempty"`
}

// ToDomain converts the request to a domain entry.
func (r *CreateEntryRequest) ToDomain() (*domain.LedgerEntry, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	return &domain.LedgerEntry{
		Date:         date,
		Amount:       domain.MoneyFromDecimal(r.Amount),
		Kind:         domain.EntryKind(r.Kind),
		RecurrenceID: r.RecurrenceID,
		Source:       r.Source,
	}, nil
}

// UpdateEntryRequest represents a request to rewrite an existing entry.
type UpdateEntryRequest struct {
	Date         string          `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	Kind         string          `json:"kind"`
	RecurrenceID string          `json:"recurrence_id,omitempty"`
	Source       string          `json:"source,omitempty"`
}

// ToDomain converts the request to a domain entry with the given id.
func (r *UpdateEntryRequest) ToDomain(id string) (*domain.LedgerEntry, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	return &domain.LedgerEntry{
		ID:           id,
		Date:         date,
		Amount:       domain.MoneyFromDecimal(r.Amount),
		Kind:         domain.EntryKind(r.Kind),
		RecurrenceID: r.RecurrenceID,
		Source:       r.Source,
	}, nil
}

// BatchMutationItem is one mutation in a batch request. Update and delete
// items name the target entry by id.
type BatchMutationItem struct {
	Op           string          `json:"op"`
	ID           string          `json:"id,omitempty"`
	Date         string          `json:"date,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Kind         string          `json:"kind,omitempty"`
	RecurrenceID string          `json:"recurrence_id,omitempty"`
	Source       string          `json:"source,omitempty"`
}

// BatchMutationRequest represents a request to apply several mutations with
// a single propagation pass.
type BatchMutationRequest struct {
	Mutations []BatchMutationItem `json:"mutations"`
}

// ToDomain converts one batch item to a mutation request. For updates the
// previous entry must be supplied by the caller.
func (i *BatchMutationItem) ToDomain(previous *domain.LedgerEntry) (usecase.MutationRequest, error) {
	op := domain.MutationOp(i.Op)

	entry := &domain.LedgerEntry{
		ID:           i.ID,
		Amount:       domain.MoneyFromDecimal(i.Amount),
		Kind:         domain.EntryKind(i.Kind),
		RecurrenceID: i.RecurrenceID,
		Source:       i.Source,
	}

	if i.Date != "" {
		date, err := domain.ParseDate(i.Date)
		if err != nil {
			return usecase.MutationRequest{}, fmt.Errorf("date: %w", err)
		}
		entry.Date = date
	}

	if op == domain.OpDelete && previous != nil {
		// Deletes carry the stored entry so the impact is computed from
		// what is actually on record.
		entry = previous
		previous = nil
	}

	return usecase.MutationRequest{Op: op, Entry: entry, Previous: previous}, nil
}

// RecalculateRequest represents a forced recalculation request.
type RecalculateRequest struct {
	From string `json:"from"`
}
