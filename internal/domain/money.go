package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount in minor units (cents). All balance arithmetic
// inside the engine is integer; decimal values appear only at presentation
// boundaries.
type Money int64

var minorUnitFactor = decimal.NewFromInt(100)

// MoneyFromDecimal converts a decimal amount to minor units, rounding half up.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Mul(minorUnitFactor).Round(0).IntPart())
}

// ParseMoney parses a decimal string like "500.00" into minor units.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}

	return MoneyFromDecimal(d), nil
}

// Decimal converts back to a decimal amount with two fractional digits.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String renders the amount as a fixed two-decimal string, e.g. "500.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Abs returns the magnitude of the amount.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}

	return m
}

// Neg returns the amount with its sign flipped.
func (m Money) Neg() Money { return -m }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m == 0 }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m < 0 }
