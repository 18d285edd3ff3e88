package domain

import (
	"errors"
	"testing"
	"time"
)

func validEntry() *LedgerEntry {
	return &LedgerEntry{
		ID:     "01TESTENTRY",
		Date:   NewDate(2025, time.January, 15),
		Amount: 500_00,
		Kind:   KindCredit,
		Source: "manual",
	}
}

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LedgerEntry)
		wantErr error
	}{
		{"valid credit", func(e *LedgerEntry) {}, nil},
		{"valid neutral debit", func(e *LedgerEntry) { e.Kind = KindNeutralDebit }, nil},
		{"zero amount allowed", func(e *LedgerEntry) { e.Amount = 0 }, nil},
		{"zero date", func(e *LedgerEntry) { e.Date = Date{} }, ErrInvalidDate},
		{"negative amount", func(e *LedgerEntry) { e.Amount = -1 }, ErrNegativeAmount},
		{"amount too large", func(e *LedgerEntry) { e.Amount = MaxEntryAmount + 1 }, ErrAmountTooLarge},
		{"unknown kind", func(e *LedgerEntry) { e.Kind = "transfer" }, ErrUnknownEntryKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(e)

			err := ValidateEntry(e)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected a ValidationError, got %T", err)
			}
		})
	}
}

func TestValidateMutation(t *testing.T) {
	tests := []struct {
		name     string
		op       MutationOp
		previous *LedgerEntry
		wantErr  error
	}{
		{"create", OpCreate, nil, nil},
		{"delete", OpDelete, nil, nil},
		{"update with previous", OpUpdate, validEntry(), nil},
		{"update without previous", OpUpdate, nil, ErrMissingPreviousEntry},
		{"unknown op", MutationOp("merge"), nil, ErrUnknownMutationOp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMutation(tt.op, validEntry(), tt.previous)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSignedAmount(t *testing.T) {
	tests := []struct {
		kind EntryKind
		want Money
	}{
		{KindCredit, 500_00},
		{KindDebit, -500_00},
		{KindNeutralDebit, -500_00},
	}

	for _, tt := range tests {
		e := &LedgerEntry{Amount: 500_00, Kind: tt.kind}
		if got := e.SignedAmount(); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.kind, tt.want, got)
		}
	}
}

func TestMoneyFormatting(t *testing.T) {
	tests := []struct {
		in   Money
		want string
	}{
		{500_00, "500.00"},
		{-50_00, "-50.00"},
		{0, "0.00"},
		{3, "0.03"},
	}

	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Money(%d): expected %q, got %q", int64(tt.in), tt.want, got)
		}
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in          string
		want        Money
		expectError bool
	}{
		{"500.00", 500_00, false},
		{"0.01", 1, false},
		{"-50", -50_00, false},
		{"1.005", 101, false}, // rounds half up at the boundary
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseMoney(tt.in)
		if tt.expectError {
			if err == nil {
				t.Errorf("ParseMoney(%q): expected error", tt.in)
			}
			continue
		}

		if err != nil {
			t.Errorf("ParseMoney(%q): unexpected error %v", tt.in, err)
			continue
		}

		if got != tt.want {
			t.Errorf("ParseMoney(%q): expected %d, got %d", tt.in, int64(tt.want), int64(got))
		}
	}
}
