package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
)

func testSnapshot(key domain.PeriodKey, opening, net domain.Money) *domain.PeriodSnapshot {
	return domain.NewPeriodSnapshot(key, opening, net, 1,
		time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
}

func TestSnapshotStoreSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewSnapshotStore(client)
	ctx := context.Background()

	want := testSnapshot("2025-06-01", 100_00, 50_00)
	if err := store.Set(ctx, want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := store.Get(ctx, "2025-06-01")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got.OpeningBalance != 100_00 || got.ClosingBalance != 150_00 {
		t.Errorf("Get() = %+v, want opening 10000, closing 15000", got)
	}
	if got.Checksum != want.Checksum {
		t.Errorf("checksum changed across the round trip: %d != %d", got.Checksum, want.Checksum)
	}
	if !got.VerifyChecksum() {
		t.Error("stored snapshot fails checksum verification")
	}
}

func TestSnapshotStoreGetMissing(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewSnapshotStore(client)

	_, err := store.Get(context.Background(), "2025-06-01")
	if !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("Get() error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestSnapshotStoreInvalidateFrom(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewSnapshotStore(client)
	ctx := context.Background()

	for _, snap := range []*domain.PeriodSnapshot{
		testSnapshot("2025-05-31", 0, 10_00),
		testSnapshot("2025-06-01", 10_00, 5_00),
		testSnapshot("2025-06", 10_00, 5_00),
		testSnapshot("2025", 0, 15_00),
	} {
		if err := store.Set(ctx, snap); err != nil {
			t.Fatalf("Set(%s) error = %v", snap.PeriodKey, err)
		}
	}

	marked, err := store.InvalidateFrom(ctx, domain.NewDate(2025, time.June, 1))
	if err != nil {
		t.Fatalf("InvalidateFrom() error = %v", err)
	}
	if marked != 3 {
		t.Errorf("InvalidateFrom() marked %d, want 3", marked)
	}

	before, err := store.Get(ctx, "2025-05-31")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if before.Invalidated {
		t.Error("2025-05-31 invalidated, ends before the cut")
	}

	for _, key := range []domain.PeriodKey{"2025-06-01", "2025-06", "2025"} {
		snap, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get(%s) error = %v, marked snapshots must stay readable", key, err)
		}
		if !snap.Invalidated {
			t.Errorf("%s not marked invalidated", key)
		}
	}

	// Idempotent: already-marked periods are not counted again.
	marked, err = store.InvalidateFrom(ctx, domain.NewDate(2025, time.June, 1))
	if err != nil {
		t.Fatalf("second InvalidateFrom() error = %v", err)
	}
	if marked != 0 {
		t.Errorf("second InvalidateFrom() marked %d, want 0", marked)
	}
}

func TestSnapshotStoreRewriteClearsInvalidation(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewSnapshotStore(client)
	ctx := context.Background()

	if err := store.Set(ctx, testSnapshot("2025-06-01", 0, 10_00)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := store.InvalidateFrom(ctx, domain.NewDate(2025, time.June, 1)); err != nil {
		t.Fatalf("InvalidateFrom() error = %v", err)
	}

	if err := store.Set(ctx, testSnapshot("2025-06-01", 0, 12_00)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	snap, err := store.Get(ctx, "2025-06-01")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if snap.Invalidated {
		t.Error("rewritten snapshot still marked invalidated")
	}
	if snap.ClosingBalance != 12_00 {
		t.Errorf("ClosingBalance = %d, want 1200", snap.ClosingBalance)
	}
}
