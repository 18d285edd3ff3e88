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

// SnapshotRepository implements usecase.SnapshotStore on PostgreSQL.
// Checksums are stored as BIGINT through an int64 cast; the round trip is
// lossless.
type SnapshotRepository struct {
	pool    *pgxpool.Pool
	retrier usecase.Retrier
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(pool *pgxpool.Pool, retrier usecase.Retrier) *SnapshotRepository {
	return &SnapshotRepository{
		pool:    pool,
		retrier: retrier,
	}
}

// Get retrieves a snapshot by period key.
func (r *SnapshotRepository) Get(ctx context.Context, key domain.PeriodKey) (*domain.PeriodSnapshot, error) {
	var (
		snap      domain.PeriodSnapshot
		periodKey string
		opening   int64
		closing   int64
		net       int64
		checksum  int64
	)

	err := r.pool.QueryRow(ctx,
		`SELECT period_key, opening_balance, closing_balance, net_local_effect,
		        entry_count, last_modified, checksum, invalidated
		 FROM period_snapshots
		 WHERE period_key = $1`,
		string(key)).Scan(&periodKey, &opening, &closing, &net,
		&snap.EntryCount, &snap.LastModified, &checksum, &snap.Invalidated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, err
	}

	snap.PeriodKey = domain.PeriodKey(periodKey)
	snap.OpeningBalance = domain.Money(opening)
	snap.ClosingBalance = domain.Money(closing)
	snap.NetLocalEffect = domain.Money(net)
	snap.Checksum = uint64(checksum)

	return &snap, nil
}

// Set upserts a snapshot. Rewriting a period always clears its invalidated
// mark.
func (r *SnapshotRepository) Set(ctx context.Context, snapshot *domain.PeriodSnapshot) error {
	return r.retrier.Retry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO period_snapshots
			     (period_key, period_start, period_end, opening_balance,
			      closing_balance, net_local_effect, entry_count,
			      last_modified, checksum, invalidated)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (period_key) DO UPDATE SET
			     opening_balance  = EXCLUDED.opening_balance,
			     closing_balance  = EXCLUDED.closing_balance,
			     net_local_effect = EXCLUDED.net_local_effect,
			     entry_count      = EXCLUDED.entry_count,
			     last_modified    = EXCLUDED.last_modified,
			     checksum         = EXCLUDED.checksum,
			     invalidated      = EXCLUDED.invalidated`,
			string(snapshot.PeriodKey),
			periodStart(snapshot.PeriodKey),
			periodEnd(snapshot.PeriodKey),
			int64(snapshot.OpeningBalance),
			int64(snapshot.ClosingBalance),
			int64(snapshot.NetLocalEffect),
			snapshot.EntryCount,
			snapshot.LastModified,
			int64(snapshot.Checksum),
			snapshot.Invalidated,
		)
		return err
	})
}

// InvalidateFrom marks every period whose range ends on or after the given
// date. Rows are marked, never deleted; the next propagation rewrites them.
func (r *SnapshotRepository) InvalidateFrom(ctx context.Context, date domain.Date) (int, error) {
	var marked int

	err := r.retrier.Retry(ctx, func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE period_snapshots
			 SET invalidated = TRUE
			 WHERE period_end >= $1 AND NOT invalidated`,
			dateToPg(date))
		if err != nil {
			return err
		}
		marked = int(tag.RowsAffected())
		return nil
	})

	return marked, err
}

// periodStart materializes the key's start date for range queries.
func periodStart(key domain.PeriodKey) time.Time {
	start, err := key.StartDate()
	if err != nil {
		return time.Time{}
	}
	return dateToPg(start)
}

// periodEnd materializes the key's end date for range queries.
func periodEnd(key domain.PeriodKey) time.Time {
	end, err := key.EndDate()
	if err != nil {
		return time.Time{}
	}
	return dateToPg(end)
}
