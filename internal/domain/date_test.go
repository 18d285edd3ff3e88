package domain

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input       string
		want        Date
		expectError bool
	}{
		{"2025-01-15", NewDate(2025, time.January, 15), false},
		{"2024-02-29", NewDate(2024, time.February, 29), false},
		{"2025-13-01", Date{}, true},
		{"15/01/2025", Date{}, true},
		{"", Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for %q, got nil", tt.input)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !got.Equal(tt.want) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDateNextCrossesBoundaries(t *testing.T) {
	tests := []struct {
		name string
		from Date
		want Date
	}{
		{"mid month", NewDate(2025, time.January, 15), NewDate(2025, time.January, 16)},
		{"month end", NewDate(2025, time.January, 31), NewDate(2025, time.February, 1)},
		{"february leap", NewDate(2024, time.February, 29), NewDate(2024, time.March, 1)},
		{"year end", NewDate(2025, time.December, 31), NewDate(2026, time.January, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.Next(); !got.Equal(tt.want) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDateEndOfMonth(t *testing.T) {
	tests := []struct {
		in   Date
		want int
	}{
		{NewDate(2025, time.January, 10), 31},
		{NewDate(2025, time.February, 1), 28},
		{NewDate(2024, time.February, 1), 29},
		{NewDate(2025, time.April, 30), 30},
	}

	for _, tt := range tests {
		if got := tt.in.EndOfMonth().Day(); got != tt.want {
			t.Errorf("end of %s: expected day %d, got %d", tt.in.MonthKey(), tt.want, got)
		}
	}
}

func TestDateKeys(t *testing.T) {
	d := NewDate(2025, time.March, 7)

	if got := d.DayKey(); got != "2025-03-07" {
		t.Errorf("day key: got %s", got)
	}

	if got := d.MonthKey(); got != "2025-03" {
		t.Errorf("month key: got %s", got)
	}

	if got := d.YearKey(); got != "2025" {
		t.Errorf("year key: got %s", got)
	}
}

func TestPeriodKeyRoundTrip(t *testing.T) {
	tests := []struct {
		key   PeriodKey
		gran  Granularity
		start string
		end   string
	}{
		{"2025-01-15", GranularityDay, "2025-01-15", "2025-01-15"},
		{"2025-02", GranularityMonth, "2025-02-01", "2025-02-28"},
		{"2025", GranularityYear, "2025-01-01", "2025-12-31"},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			if got := tt.key.Granularity(); got != tt.gran {
				t.Fatalf("granularity: expected %s, got %s", tt.gran, got)
			}

			start, err := tt.key.StartDate()
			if err != nil {
				t.Fatalf("start date: %v", err)
			}
			if start.String() != tt.start {
				t.Errorf("start: expected %s, got %s", tt.start, start)
			}

			end, err := tt.key.EndDate()
			if err != nil {
				t.Fatalf("end date: %v", err)
			}
			if end.String() != tt.end {
				t.Errorf("end: expected %s, got %s", tt.end, end)
			}
		})
	}
}

func TestPeriodKeyEndsOnOrAfter(t *testing.T) {
	cut := NewDate(2025, time.January, 20)

	tests := []struct {
		key  PeriodKey
		want bool
	}{
		{"2025-01-19", false},
		{"2025-01-20", true},
		{"2025-01-21", true},
		{"2024-12", false},
		{"2025-01", true}, // month containing the cut is affected
		{"2025-02", true},
		{"2024", false},
		{"2025", true},
	}

	for _, tt := range tests {
		if got := tt.key.EndsOnOrAfter(cut); got != tt.want {
			t.Errorf("%s ends on or after %s: expected %v, got %v", tt.key, cut, tt.want, got)
		}
	}
}

func TestMonthKeysBetween(t *testing.T) {
	from := NewDate(2024, time.November, 20)
	to := NewDate(2025, time.February, 3)

	keys := MonthKeysBetween(from, to)
	want := []PeriodKey{"2024-11", "2024-12", "2025-01", "2025-02"}

	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d: %v", len(want), len(keys), keys)
	}

	for i, k := range want {
		if keys[i] != k {
			t.Errorf("key %d: expected %s, got %s", i, k, keys[i])
		}
	}

	if got := MonthKeysBetween(to, from); got != nil {
		t.Errorf("reversed range: expected nil, got %v", got)
	}
}
