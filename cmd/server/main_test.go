package main

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/infrastructure/metrics"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/usecase"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/usecase/mocks"
)

func TestIntegritySweep(t *testing.T) {
	engine := usecase.NewLedgerEngine(
		mocks.NewMockEntryStore(),
		mocks.NewMockSnapshotStore(),
		mocks.NewMockIDGenerator(),
		zerolog.Nop(),
		usecase.Config{
			Today: func() domain.Date { return domain.NewDate(2025, time.June, 1) },
		},
	)
	m := metrics.New()

	// A zero interval disables the sweep entirely.
	stop := startIntegritySweep(context.Background(), engine, m, 0, zerolog.Nop())
	stop()
	if got := testutil.ToFloat64(m.IntegrityChecks); got != 0 {
		t.Fatalf("integrity checks = %v, want 0 with sweep disabled", got)
	}

	stop = startIntegritySweep(context.Background(), engine, m, 5*time.Millisecond, zerolog.Nop())
	defer stop()

	deadline := time.Now().Add(2 * time.Second)
	for testutil.ToFloat64(m.IntegrityChecks) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("integrity sweep never ran")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := testutil.ToFloat64(m.IntegrityScore); got != 100 {
		t.Errorf("integrity score = %v, want 100 for an empty ledger", got)
	}
}
