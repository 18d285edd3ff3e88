package usecase

import (
	"context"
	"time"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
)

// EntryStore is the host's ordered collection of financial entries. The
// engine never keeps a second copy of raw entries; it only derives period
// snapshots from them.
type EntryStore interface {
	ByID(ctx context.Context, id string) (*domain.LedgerEntry, error)
	ByDate(ctx context.Context, date domain.Date) ([]*domain.LedgerEntry, error)
	ByDateRange(ctx context.Context, from, to domain.Date) ([]*domain.LedgerEntry, error)
	// ByRecurrence looks up entries created by a recurring rule. Lookup
	// only; scheduling lives in the host.
	ByRecurrence(ctx context.Context, recurrenceID string) ([]*domain.LedgerEntry, error)
	Append(ctx context.Context, entry *domain.LedgerEntry) error
	Update(ctx context.Context, entry *domain.LedgerEntry) error
	Remove(ctx context.Context, id string) error
	// EarliestDate bounds backward searches; ok is false for an empty ledger.
	EarliestDate(ctx context.Context) (date domain.Date, ok bool, err error)
}

// SnapshotStore persists derived period snapshots behind an opaque
// key-value contract. Get returns domain.ErrSnapshotNotFound for unknown
// keys. InvalidateFrom marks (never deletes) every period that covers a day
// on or after the given date and reports how many it marked.
type SnapshotStore interface {
	Get(ctx context.Context, key domain.PeriodKey) (*domain.PeriodSnapshot, error)
	Set(ctx context.Context, snapshot *domain.PeriodSnapshot) error
	InvalidateFrom(ctx context.Context, date domain.Date) (int, error)
}

// IDGenerator generates unique entry IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on transient failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IdempotencyStore handles idempotency key storage for the HTTP surface.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
