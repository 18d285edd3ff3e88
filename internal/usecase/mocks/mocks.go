package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
)

// MockEntryStore is an in-memory implementation of usecase.EntryStore.
// Behavior can be overridden per call through the *Func fields.
type MockEntryStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.LedgerEntry

	ByIDFunc         func(ctx context.Context, id string) (*domain.LedgerEntry, error)
	ByDateFunc       func(ctx context.Context, date domain.Date) ([]*domain.LedgerEntry, error)
	ByDateRangeFunc  func(ctx context.Context, from, to domain.Date) ([]*domain.LedgerEntry, error)
	ByRecurrenceFunc func(ctx context.Context, recurrenceID string) ([]*domain.LedgerEntry, error)
	AppendFunc       func(ctx context.Context, entry *domain.LedgerEntry) error
	UpdateFunc       func(ctx context.Context, entry *domain.LedgerEntry) error
	RemoveFunc       func(ctx context.Context, id string) error
	EarliestDateFunc func(ctx context.Context) (domain.Date, bool, error)
}

func NewMockEntryStore() *MockEntryStore {
	return &MockEntryStore{
		entries: make(map[string]*domain.LedgerEntry),
	}
}

func (m *MockEntryStore) ByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	if m.ByIDFunc != nil {
		return m.ByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[id]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	return entry, nil
}

func (m *MockEntryStore) ByDate(ctx context.Context, date domain.Date) ([]*domain.LedgerEntry, error) {
	if m.ByDateFunc != nil {
		return m.ByDateFunc(ctx, date)
	}
	return m.ByDateRange(ctx, date, date)
}

func (m *MockEntryStore) ByDateRange(ctx context.Context, from, to domain.Date) ([]*domain.LedgerEntry, error) {
	if m.ByDateRangeFunc != nil {
		return m.ByDateRangeFunc(ctx, from, to)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.LedgerEntry
	for _, e := range m.entries {
		if !e.Date.Before(from) && !e.Date.After(to) {
			result = append(result, e)
		}
	}
	sortEntries(result)
	return result, nil
}

func (m *MockEntryStore) ByRecurrence(ctx context.Context, recurrenceID string) ([]*domain.LedgerEntry, error) {
	if m.ByRecurrenceFunc != nil {
		return m.ByRecurrenceFunc(ctx, recurrenceID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.LedgerEntry
	for _, e := range m.entries {
		if e.RecurrenceID == recurrenceID {
			result = append(result, e)
		}
	}
	sortEntries(result)
	return result, nil
}

func (m *MockEntryStore) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[entry.ID]; exists {
		return fmt.Errorf("duplicate entry id %s", entry.ID)
	}
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockEntryStore) Update(ctx context.Context, entry *domain.LedgerEntry) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[entry.ID]; !exists {
		return domain.ErrEntryNotFound
	}
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockEntryStore) Remove(ctx context.Context, id string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[id]; !exists {
		return domain.ErrEntryNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *MockEntryStore) EarliestDate(ctx context.Context) (domain.Date, bool, error) {
	if m.EarliestDateFunc != nil {
		return m.EarliestDateFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var earliest domain.Date
	found := false
	for _, e := range m.entries {
		if !found || e.Date.Before(earliest) {
			earliest = e.Date
			found = true
		}
	}
	return earliest, found, nil
}

// Len returns the number of stored entries.
func (m *MockEntryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func sortEntries(entries []*domain.LedgerEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].ID < entries[j].ID
	})
}

// MockSnapshotStore is an in-memory implementation of usecase.SnapshotStore.
type MockSnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[domain.PeriodKey]*domain.PeriodSnapshot

	GetFunc            func(ctx context.Context, key domain.PeriodKey) (*domain.PeriodSnapshot, error)
	SetFunc            func(ctx context.Context, snapshot *domain.PeriodSnapshot) error
	InvalidateFromFunc func(ctx context.Context, date domain.Date) (int, error)
}

func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{
		snapshots: make(map[domain.PeriodKey]*domain.PeriodSnapshot),
	}
}

func (m *MockSnapshotStore) Get(ctx context.Context, key domain.PeriodKey) (*domain.PeriodSnapshot, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[key]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return snap.Clone(), nil
}

func (m *MockSnapshotStore) Set(ctx context.Context, snapshot *domain.PeriodSnapshot) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, snapshot)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.PeriodKey] = snapshot.Clone()
	return nil
}

func (m *MockSnapshotStore) InvalidateFrom(ctx context.Context, date domain.Date) (int, error) {
	if m.InvalidateFromFunc != nil {
		return m.InvalidateFromFunc(ctx, date)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	marked := 0
	for key, snap := range m.snapshots {
		if snap.Invalidated || !key.EndsOnOrAfter(date) {
			continue
		}
		stale := snap.Clone()
		stale.Invalidated = true
		m.snapshots[key] = stale
		marked++
	}
	return marked, nil
}

// Corrupt overwrites one stored snapshot field, bypassing checksum refresh.
// Test helper for integrity scenarios.
func (m *MockSnapshotStore) Corrupt(key domain.PeriodKey, mutate func(*domain.PeriodSnapshot)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[key]
	if !ok {
		return false
	}
	corrupted := snap.Clone()
	mutate(corrupted)
	m.snapshots[key] = corrupted
	return true
}

// Snapshot returns the stored snapshot without going through Get.
func (m *MockSnapshotStore) Snapshot(key domain.PeriodKey) (*domain.PeriodSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[key]
	if !ok {
		return nil, false
	}
	return snap.Clone(), true
}

// Len returns the number of stored snapshots.
func (m *MockSnapshotStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}

// MockIDGenerator returns sequential deterministic IDs.
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return fmt.Sprintf("entry-%04d", m.next)
}
