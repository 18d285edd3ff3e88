package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/usecase"
)

// EntryRepository implements usecase.EntryStore on PostgreSQL. Writes go
// through the retrier; serialization conflicts under concurrent mutations
// are retried transparently.
type EntryRepository struct {
	pool    *pgxpool.Pool
	retrier usecase.Retrier
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool, retrier usecase.Retrier) *EntryRepository {
	return &EntryRepository{
		pool:    pool,
		retrier: retrier,
	}
}

const entryColumns = `id, entry_date, amount, kind, recurrence_id, source, created_at, updated_at`

// ByID retrieves a single entry.
func (r *EntryRepository) ByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+entryColumns+`
		 FROM ledger_entries
		 WHERE id = $1`,
		id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrEntryNotFound
	}

	return entries[0], nil
}

// ByDate retrieves the entries of a single day.
func (r *EntryRepository) ByDate(ctx context.Context, date domain.Date) ([]*domain.LedgerEntry, error) {
	return r.ByDateRange(ctx, date, date)
}

// ByDateRange retrieves entries with dates in [from, to], ordered by date
// then id.
func (r *EntryRepository) ByDateRange(ctx context.Context, from, to domain.Date) ([]*domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+entryColumns+`
		 FROM ledger_entries
		 WHERE entry_date >= $1 AND entry_date <= $2
		 ORDER BY entry_date, id`,
		dateToPg(from), dateToPg(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ByRecurrence retrieves the entries generated by one recurring rule.
func (r *EntryRepository) ByRecurrence(ctx context.Context, recurrenceID string) ([]*domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+entryColumns+`
		 FROM ledger_entries
		 WHERE recurrence_id = $1
		 ORDER BY entry_date, id`,
		recurrenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Append inserts a new entry.
func (r *EntryRepository) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	return r.retrier.Retry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO ledger_entries (`+entryColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			entry.ID,
			dateToPg(entry.Date),
			int64(entry.Amount),
			string(entry.Kind),
			nullString(entry.RecurrenceID),
			entry.Source,
			entry.CreatedAt,
			entry.UpdatedAt,
		)
		return err
	})
}

// Update rewrites an existing entry.
func (r *EntryRepository) Update(ctx context.Context, entry *domain.LedgerEntry) error {
	return r.retrier.Retry(ctx, func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE ledger_entries
			 SET entry_date = $2, amount = $3, kind = $4, recurrence_id = $5,
			     source = $6, updated_at = $7
			 WHERE id = $1`,
			entry.ID,
			dateToPg(entry.Date),
			int64(entry.Amount),
			string(entry.Kind),
			nullString(entry.RecurrenceID),
			entry.Source,
			entry.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrEntryNotFound
		}
		return nil
	})
}

// Remove deletes an entry by id.
func (r *EntryRepository) Remove(ctx context.Context, id string) error {
	return r.retrier.Retry(ctx, func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM ledger_entries WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrEntryNotFound
		}
		return nil
	})
}

// EarliestDate returns the date of the oldest entry; ok is false for an
// empty ledger.
func (r *EntryRepository) EarliestDate(ctx context.Context) (domain.Date, bool, error) {
	var earliest *time.Time

	// MIN over an empty table yields NULL, not zero rows.
	err := r.pool.QueryRow(ctx,
		`SELECT MIN(entry_date) FROM ledger_entries`).Scan(&earliest)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Date{}, false, nil
		}
		return domain.Date{}, false, err
	}

	if earliest == nil {
		return domain.Date{}, false, nil
	}

	return domain.DateOf(*earliest), true, nil
}

func scanEntries(rows pgx.Rows) ([]*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry

	for rows.Next() {
		var (
			entry        domain.LedgerEntry
			entryDate    time.Time
			amount       int64
			kind         string
			recurrenceID *string
		)

		if err := rows.Scan(&entry.ID, &entryDate, &amount, &kind,
			&recurrenceID, &entry.Source, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, err
		}

		entry.Date = domain.DateOf(entryDate)
		entry.Amount = domain.Money(amount)
		entry.Kind = domain.EntryKind(kind)
		if recurrenceID != nil {
			entry.RecurrenceID = *recurrenceID
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

func dateToPg(d domain.Date) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
