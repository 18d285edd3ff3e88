package integration

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/adapter/repository/postgres"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/usecase"
	"github.com/cascaoconcurseiro/diariofinanceiro/tests/testutil"
)

func engineConfig() usecase.Config {
	return usecase.Config{
		Today: func() domain.Date { return domain.NewDate(2025, time.June, 1) },
	}
}

func newPostgresEngine(testDB *testutil.TestDB) *usecase.LedgerEngine {
	retrier := postgres.NewRetrier(zerolog.Nop())
	entries := postgres.NewEntryRepository(testDB.Pool, retrier)
	snapshots := postgres.NewSnapshotRepository(testDB.Pool, retrier)

	return usecase.NewLedgerEngine(entries, snapshots, postgres.NewULIDGenerator(), zerolog.Nop(), engineConfig())
}

func mustBalance(t *testing.T, engine *usecase.LedgerEngine, date string) domain.Money {
	t.Helper()

	d, err := domain.ParseDate(date)
	if err != nil {
		t.Fatalf("parse date %s: %v", date, err)
	}

	balance, err := engine.BalanceOn(context.Background(), d)
	if err != nil {
		t.Fatalf("balance on %s: %v", date, err)
	}

	return balance
}

func TestEngineOverPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	t.Run("mutations propagate and survive a restart", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		engine := newPostgresEngine(testDB)

		deposit := testutil.Entry("2025-06-05", "1000.00", domain.KindCredit)
		if _, err := engine.ProcessMutation(ctx, domain.OpCreate, deposit, nil); err != nil {
			t.Fatalf("create deposit: %v", err)
		}

		groceries := testutil.Entry("2025-06-10", "250.00", domain.KindDebit)
		if _, err := engine.ProcessMutation(ctx, domain.OpCreate, groceries, nil); err != nil {
			t.Fatalf("create groceries: %v", err)
		}

		if got := mustBalance(t, engine, "2025-06-05"); got != 1000_00 {
			t.Errorf("balance 2025-06-05 = %d, want 100000", got)
		}
		if got := mustBalance(t, engine, "2025-12-31"); got != 750_00 {
			t.Errorf("balance 2025-12-31 = %d, want 75000", got)
		}

		// A fresh engine with a cold cache reads the same balances from the
		// persisted snapshots.
		restarted := newPostgresEngine(testDB)
		if got := mustBalance(t, restarted, "2025-12-31"); got != 750_00 {
			t.Errorf("balance after restart = %d, want 75000", got)
		}
	})

	t.Run("update applies the delta everywhere forward", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		engine := newPostgresEngine(testDB)

		entry := testutil.Entry("2025-06-05", "100.00", domain.KindDebit)
		if _, err := engine.ProcessMutation(ctx, domain.OpCreate, entry, nil); err != nil {
			t.Fatalf("create: %v", err)
		}

		previous := *entry
		updated := *entry
		updated.Amount = 40_00
		if _, err := engine.ProcessMutation(ctx, domain.OpUpdate, &updated, &previous); err != nil {
			t.Fatalf("update: %v", err)
		}

		if got := mustBalance(t, engine, "2025-07-01"); got != -40_00 {
			t.Errorf("balance = %d, want -4000", got)
		}
	})

	t.Run("delete reverts the entry impact", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		engine := newPostgresEngine(testDB)

		entry := testutil.Entry("2025-06-05", "100.00", domain.KindCredit)
		if _, err := engine.ProcessMutation(ctx, domain.OpCreate, entry, nil); err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := engine.ProcessMutation(ctx, domain.OpDelete, entry, nil); err != nil {
			t.Fatalf("delete: %v", err)
		}

		if got := mustBalance(t, engine, "2025-07-01"); got != 0 {
			t.Errorf("balance = %d, want 0", got)
		}
	})

	t.Run("integrity heals snapshot corruption in the store", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		engine := newPostgresEngine(testDB)

		entry := testutil.Entry("2025-06-05", "500.00", domain.KindCredit)
		if _, err := engine.ProcessMutation(ctx, domain.OpCreate, entry, nil); err != nil {
			t.Fatalf("create: %v", err)
		}

		// Corrupt one persisted day behind the engine's back.
		if _, err := testDB.Pool.Exec(ctx,
			`UPDATE period_snapshots SET closing_balance = closing_balance + 123 WHERE period_key = '2025-06-20'`); err != nil {
			t.Fatalf("corrupt snapshot: %v", err)
		}

		// A restarted engine sees the corrupted store.
		restarted := newPostgresEngine(testDB)
		report, err := restarted.ValidateIntegrity(ctx)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}

		if !report.IsValid {
			t.Errorf("report not valid after correction: %+v", report.Errors)
		}
		if !report.CorrectionApplied {
			t.Error("expected a corrective pass")
		}
		if got := mustBalance(t, restarted, "2025-06-20"); got != 500_00 {
			t.Errorf("healed balance = %d, want 50000", got)
		}
	})

	t.Run("forced recalculation rebuilds the forward window", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		engine := newPostgresEngine(testDB)

		entry := testutil.Entry("2025-06-05", "75.00", domain.KindCredit)
		if _, err := engine.ProcessMutation(ctx, domain.OpCreate, entry, nil); err != nil {
			t.Fatalf("create: %v", err)
		}

		result, err := engine.RecalculateFrom(ctx, domain.NewDate(2025, time.June, 1))
		if err != nil {
			t.Fatalf("recalculate: %v", err)
		}

		if !result.Success || result.DaysProcessed == 0 {
			t.Errorf("recalculation result = %+v, want success with processed days", result)
		}
		if got := mustBalance(t, engine, "2026-01-01"); got != 75_00 {
			t.Errorf("balance = %d, want 7500", got)
		}
	})
}
