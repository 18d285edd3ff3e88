package domain

import (
	"time"
)

// EntryKind classifies how an entry moves the running balance.
type EntryKind string

const (
	// KindCredit increases the balance.
	KindCredit EntryKind = "credit"
	// KindDebit decreases the balance.
	KindDebit EntryKind = "debit"
	// KindNeutralDebit decreases the balance like a debit but is excluded
	// from the host's spending reports.
	KindNeutralDebit EntryKind = "neutral_debit"
)

// Valid reports whether the kind is one of the known values.
func (k EntryKind) Valid() bool {
	switch k {
	case KindCredit, KindDebit, KindNeutralDebit:
		return true
	default:
		return false
	}
}

// LedgerEntry is a single dated financial entry. Entries live in the host's
// entry store; the engine only derives period snapshots from them.
type LedgerEntry struct {
	ID           string
	Date         Date
	Amount       Money // non-negative magnitude in minor units
	Kind         EntryKind
	RecurrenceID string // optional back-reference to a recurring rule, lookup only
	Source       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SignedAmount returns the entry's effect on the running balance:
// positive for credits, negative for debits and neutral debits.
func (e *LedgerEntry) SignedAmount() Money {
	if e.Kind == KindCredit {
		return e.Amount
	}

	return -e.Amount
}

// MutationOp identifies a ledger mutation.
type MutationOp string

const (
	OpCreate MutationOp = "create"
	OpUpdate MutationOp = "update"
	OpDelete MutationOp = "delete"
)

// Valid reports whether the op is one of the known values.
func (op MutationOp) Valid() bool {
	switch op {
	case OpCreate, OpUpdate, OpDelete:
		return true
	default:
		return false
	}
}
