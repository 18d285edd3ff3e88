package domain

import (
	"errors"
	"fmt"
)

var (
	// Entry errors
	ErrEntryNotFound        = errors.New("entry not found")
	ErrNegativeAmount       = errors.New("amount must not be negative")
	ErrAmountTooLarge       = errors.New("amount exceeds maximum allowed")
	ErrUnknownEntryKind     = errors.New("unknown entry kind")
	ErrUnknownMutationOp    = errors.New("unknown mutation operation")
	ErrMissingPreviousEntry = errors.New("update requires the previous entry")
	ErrInvalidDate          = errors.New("invalid date")

	// Snapshot errors
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Severity ranks integrity findings for scoring.
type Severity int

const (
	SeverityMedium Severity = iota
	SeverityHigh
	SeverityCritical
)

// Weight returns the score penalty for one finding of this severity.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 20
	case SeverityHigh:
		return 10
	default:
		return 5
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	default:
		return "medium"
	}
}

// ValidationError rejects a malformed mutation before any state change.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid mutation: %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ContinuityError reports a balance discontinuity between adjacent periods.
// Always CRITICAL: it means the carry-forward chain is broken.
type ContinuityError struct {
	Prev        PeriodKey
	Next        PeriodKey
	PrevClosing Money
	NextOpening Money
}

func (e *ContinuityError) Error() string {
	return fmt.Sprintf("continuity broken between %s and %s: closing=%s opening=%s",
		e.Prev, e.Next, e.PrevClosing, e.NextOpening)
}

// Severity returns the finding severity for scoring.
func (e *ContinuityError) Severity() Severity { return SeverityCritical }

// ChecksumError reports snapshot corruption detected by checksum mismatch.
type ChecksumError struct {
	Period   PeriodKey
	Stored   uint64
	Computed uint64
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: stored=%d computed=%d",
		e.Period, e.Stored, e.Computed)
}

// Severity returns the finding severity for scoring.
func (e *ChecksumError) Severity() Severity { return SeverityHigh }

// RecomputationError aborts the current propagation run at the failing
// period. Periods committed before it remain valid; periods after it stay
// invalidated.
type RecomputationError struct {
	Period PeriodKey
	Err    error
}

func (e *RecomputationError) Error() string {
	return fmt.Sprintf("recomputation failed at %s: %v", e.Period, e.Err)
}

func (e *RecomputationError) Unwrap() error { return e.Err }

// Severity returns the finding severity for scoring.
func (e *RecomputationError) Severity() Severity { return SeverityCritical }
