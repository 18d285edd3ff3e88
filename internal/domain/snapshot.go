package domain

import (
	"fmt"
	"hash/fnv"
	"time"
)

// PeriodSnapshot is the cached derived state of one period. Snapshots are
// never the source of truth; raw entries are. A snapshot whose Invalidated
// flag is set must be recomputed before its balances are trusted.
type PeriodSnapshot struct {
	PeriodKey      PeriodKey `json:"period_key"`
	OpeningBalance Money     `json:"opening_balance"`
	ClosingBalance Money     `json:"closing_balance"`
	NetLocalEffect Money     `json:"net_local_effect"`
	EntryCount     int       `json:"entry_count"`
	LastModified   time.Time `json:"last_modified"`
	Checksum       uint64    `json:"checksum"`
	Invalidated    bool      `json:"invalidated"`
}

// NewPeriodSnapshot builds a snapshot with closing = opening + net and a
// fresh checksum.
func NewPeriodSnapshot(key PeriodKey, opening, net Money, entryCount int, now time.Time) *PeriodSnapshot {
	s := &PeriodSnapshot{
		PeriodKey:      key,
		OpeningBalance: opening,
		ClosingBalance: opening + net,
		NetLocalEffect: net,
		EntryCount:     entryCount,
		LastModified:   now,
	}
	s.Checksum = s.ComputeChecksum()

	return s
}

// ComputeChecksum hashes the balance fields with FNV-1a. The checksum guards
// against accidental corruption, not adversaries.
func (s *PeriodSnapshot) ComputeChecksum() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%d|%d|%d",
		s.PeriodKey, s.OpeningBalance, s.ClosingBalance, s.NetLocalEffect, s.EntryCount)

	return h.Sum64()
}

// VerifyChecksum reports whether the stored checksum matches the fields.
func (s *PeriodSnapshot) VerifyChecksum() bool {
	return s.Checksum == s.ComputeChecksum()
}

// Balanced reports whether closing = opening + net holds.
func (s *PeriodSnapshot) Balanced() bool {
	return s.ClosingBalance == s.OpeningBalance+s.NetLocalEffect
}

// Clone returns an independent copy. Mutation paths clone before editing so
// cached snapshots are never modified in place.
func (s *PeriodSnapshot) Clone() *PeriodSnapshot {
	c := *s

	return &c
}
