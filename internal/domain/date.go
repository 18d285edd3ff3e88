package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 format used for days and day period keys.
const DateFormat = "2006-01-02"

// Date represents a calendar day with no time component. The zero value is
// not a valid date.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date; out-of-range month/day values roll over
// the way time.Date rolls them over.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()

	return d
}

// Today returns the current UTC day.
func Today() Date { return DateOf(time.Now().UTC()) }

// DateOf truncates a time.Time to its calendar day.
func DateOf(t time.Time) Date { return NewDate(t.Date()) }

// ParseDate parses an ISO-8601 day string ("2025-01-15").
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	return DateOf(t), nil
}

func (d Date) time() time.Time {
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC)
}

// Year returns the calendar year.
func (d Date) Year() int { return d.y }

// Month returns the calendar month.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// String formats the date as ISO-8601.
func (d Date) String() string { return d.time().Format(DateFormat) }

// Before reports whether d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Equal reports whether d and x are the same day.
func (d Date) Equal(x Date) bool { return d == x }

// AddDays returns the date shifted by n days.
func (d Date) AddDays(n int) Date { return NewDate(d.y, d.m, d.d+n) }

// AddMonths returns the date shifted by n months.
func (d Date) AddMonths(n int) Date { return NewDate(d.y, d.m+time.Month(n), d.d) }

// AddYears returns the date shifted by n years.
func (d Date) AddYears(n int) Date { return NewDate(d.y+n, d.m, d.d) }

// Next returns the following day.
func (d Date) Next() Date { return d.AddDays(1) }

// Prev returns the preceding day.
func (d Date) Prev() Date { return d.AddDays(-1) }

// StartOfMonth returns the first day of the date's month.
func (d Date) StartOfMonth() Date { return NewDate(d.y, d.m, 1) }

// EndOfMonth returns the last day of the date's month.
func (d Date) EndOfMonth() Date { return NewDate(d.y, d.m+1, 0) }

// EndOfYear returns December 31 of the date's year.
func (d Date) EndOfYear() Date { return NewDate(d.y, time.December, 31) }

// DayKey returns the day-granularity period key for the date.
func (d Date) DayKey() PeriodKey { return PeriodKey(d.String()) }

// MonthKey returns the month-granularity period key for the date.
func (d Date) MonthKey() PeriodKey {
	return PeriodKey(fmt.Sprintf("%04d-%02d", d.y, int(d.m)))
}

// YearKey returns the year-granularity period key for the date.
func (d Date) YearKey() PeriodKey { return PeriodKey(fmt.Sprintf("%04d", d.y)) }

// MinDate returns the earlier of two dates.
func MinDate(a, b Date) Date {
	if b.Before(a) {
		return b
	}

	return a
}

// MarshalJSON renders the date as an ISO-8601 string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses an ISO-8601 string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}
