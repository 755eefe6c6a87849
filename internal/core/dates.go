package core

import (
	"fmt"
	"time"
)

// Calendar range helpers. All take an explicit reference time instead
// of reading the clock, so callers pass time.Now() and tests pass a
// fixed date.

// MonthRangeAt returns the first-to-last calendar day of the month
// containing now.
func MonthRangeAt(now time.Time) DateRange {
	start := NewDate(now.Year(), int(now.Month()), 1)
	end := Date{Time: time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC)}
	return DateRange{Start: start, End: end}
}

// YearRangeAt returns Jan 1 through Dec 31 of the year containing now.
func YearRangeAt(now time.Time) DateRange {
	return DateRange{
		Start: NewDate(now.Year(), 1, 1),
		End:   NewDate(now.Year(), 12, 31),
	}
}

// LastNDaysRange returns [today - n days, today].
func LastNDaysRange(now time.Time, n int) DateRange {
	end := DateOf(now)
	start := DateOf(now.AddDate(0, 0, -n))
	return DateRange{Start: start, End: end}
}

// MonthRange returns the calendar bounds of a "YYYY-MM" month.
func MonthRange(yearMonth string) (DateRange, error) {
	t, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse month %q: %w", yearMonth, err)
	}
	return MonthRangeAt(t), nil
}

// YearRange returns Jan 1 through Dec 31 of a "YYYY" year.
func YearRange(year string) (DateRange, error) {
	t, err := time.Parse("2006", year)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse year %q: %w", year, err)
	}
	return YearRangeAt(t), nil
}

// LastNMonths returns the n most recent month keys including the month
// containing now, most recent first.
func LastNMonths(now time.Time, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		m := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		out = append(out, m.Format("2006-01"))
	}
	return out
}

// MonthsInYear returns all twelve month keys of a "YYYY" year in order.
func MonthsInYear(year string) ([]string, error) {
	if _, err := time.Parse("2006", year); err != nil {
		return nil, fmt.Errorf("parse year %q: %w", year, err)
	}
	out := make([]string, 0, 12)
	for m := 1; m <= 12; m++ {
		out = append(out, fmt.Sprintf("%s-%02d", year, m))
	}
	return out, nil
}
