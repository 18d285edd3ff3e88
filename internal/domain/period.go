package domain

import (
	"fmt"
	"time"
)

// PeriodKey identifies one bucket of the chronological hierarchy:
// "2025" (year), "2025-01" (month) or "2025-01-15" (day).
type PeriodKey string

// Granularity is the bucket size of a period key.
type Granularity int

const (
	GranularityYear Granularity = iota
	GranularityMonth
	GranularityDay
)

func (g Granularity) String() string {
	switch g {
	case GranularityYear:
		return "year"
	case GranularityMonth:
		return "month"
	case GranularityDay:
		return "day"
	default:
		return "period"
	}
}

// Granularity derives the bucket size from the key's shape.
func (k PeriodKey) Granularity() Granularity {
	switch len(k) {
	case 4:
		return GranularityYear
	case 7:
		return GranularityMonth
	default:
		return GranularityDay
	}
}

// StartDate returns the first day covered by the period.
func (k PeriodKey) StartDate() (Date, error) {
	switch k.Granularity() {
	case GranularityYear:
		t, err := time.Parse("2006", string(k))
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, k)
		}

		return NewDate(t.Year(), time.January, 1), nil
	case GranularityMonth:
		t, err := time.Parse("2006-01", string(k))
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, k)
		}

		return NewDate(t.Year(), t.Month(), 1), nil
	default:
		return ParseDate(string(k))
	}
}

// EndDate returns the last day covered by the period.
func (k PeriodKey) EndDate() (Date, error) {
	start, err := k.StartDate()
	if err != nil {
		return Date{}, err
	}

	switch k.Granularity() {
	case GranularityYear:
		return start.EndOfYear(), nil
	case GranularityMonth:
		return start.EndOfMonth(), nil
	default:
		return start, nil
	}
}

// EndsOnOrAfter reports whether any day covered by the period falls on or
// after the given date. Used for forward invalidation: a month containing
// the date is affected even though it starts before it.
func (k PeriodKey) EndsOnOrAfter(d Date) bool {
	end, err := k.EndDate()
	if err != nil {
		return false
	}

	return !end.Before(d)
}

func (k PeriodKey) String() string { return string(k) }

// MonthKeysBetween returns every month key from the month containing `from`
// to the month containing `to`, inclusive, in chronological order.
func MonthKeysBetween(from, to Date) []PeriodKey {
	if to.Before(from) {
		return nil
	}

	var keys []PeriodKey
	for d := from.StartOfMonth(); !d.After(to); d = d.AddMonths(1) {
		keys = append(keys, d.MonthKey())
	}

	return keys
}
