package domain

import (
	"fmt"
	"strings"
)

// Validation constants
const (
	// MaxEntryAmount caps a single entry at one trillion currency units.
	MaxEntryAmount  Money = 1_000_000_000_000_00
	MaxSourceLength       = 255
)

// ValidateEntry rejects malformed entries before they reach the store or
// the propagation path.
func ValidateEntry(e *LedgerEntry) error {
	if e == nil {
		return &ValidationError{Field: "entry", Err: ErrEntryNotFound}
	}

	if e.Date.IsZero() {
		return &ValidationError{Field: "date", Err: ErrInvalidDate}
	}

	if e.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Err: ErrNegativeAmount}
	}

	if e.Amount > MaxEntryAmount {
		return &ValidationError{
			Field: "amount",
			Err:   fmt.Errorf("%w: maximum is %s", ErrAmountTooLarge, MaxEntryAmount),
		}
	}

	if !e.Kind.Valid() {
		return &ValidationError{
			Field: "kind",
			Err:   fmt.Errorf("%w: %q", ErrUnknownEntryKind, e.Kind),
		}
	}

	if len(strings.TrimSpace(e.Source)) > MaxSourceLength {
		return &ValidationError{
			Field: "source",
			Err:   fmt.Errorf("source exceeds %d characters", MaxSourceLength),
		}
	}

	return nil
}

// ValidateMutation checks the op/entry/previous triple of a mutation.
// UPDATE requires the previous entry because a date edit can move an entry
// earlier, and the earliest affected date must cover both positions.
func ValidateMutation(op MutationOp, entry, previous *LedgerEntry) error {
	if !op.Valid() {
		return &ValidationError{
			Field: "op",
			Err:   fmt.Errorf("%w: %q", ErrUnknownMutationOp, op),
		}
	}

	if err := ValidateEntry(entry); err != nil {
		return err
	}

	if op == OpUpdate {
		if previous == nil {
			return &ValidationError{Field: "previous", Err: ErrMissingPreviousEntry}
		}

		if err := ValidateEntry(previous); err != nil {
			return err
		}
	}

	return nil
}
