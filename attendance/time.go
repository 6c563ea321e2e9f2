package attendance

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of a calendar date.
const DateLayout = "2006-01-02"

// MonthLayout is the format of a month token.
const MonthLayout = "2006-01"

// =============================================================================
// DATES - Day granularity, time-of-day ignored
// =============================================================================

// Day truncates t to midnight UTC of its own calendar date.
// The year/month/day are read in t's location, so a local evening is not
// shifted onto the next UTC day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// =============================================================================
// MONTH TOKENS - "YYYY-MM" bucket identifiers
// =============================================================================

// MonthToken identifies one calendar month's attendance bucket, e.g. "2024-03".
type MonthToken string

// MonthOf returns the token of the month containing t.
func MonthOf(t time.Time) MonthToken {
	return MonthToken(fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())))
}

// ParseMonthToken validates a YYYY-MM string.
func ParseMonthToken(s string) (MonthToken, error) {
	if _, err := time.Parse(MonthLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthToken(s), nil
}

// First returns the first day of the month.
func (m MonthToken) First() time.Time {
	t, err := time.Parse(MonthLayout, string(m))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Period returns the whole month as an inclusive period.
func (m MonthToken) Period() Period {
	first := m.First()
	return Period{Start: first, End: first.AddDate(0, 1, -1)}
}

// DaysIn returns the number of days in the month.
func (m MonthToken) DaysIn() int {
	return m.Period().End.Day()
}

// Contains reports whether a YYYY-MM-DD date string falls in this month.
func (m MonthToken) Contains(date string) bool {
	return len(date) >= 7 && date[:7] == string(m)
}

func (m MonthToken) String() string { return string(m) }

// MonthsBetween enumerates the month tokens from start's month through end's
// month inclusive, in chronological order. Day-of-month is ignored. When
// start's month comes after end's month the result is empty.
func MonthsBetween(start, end time.Time) []MonthToken {
	current := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)

	var months []MonthToken
	for !current.After(last) {
		months = append(months, MonthOf(current))
		current = current.AddDate(0, 1, 0)
	}
	return months
}

// =============================================================================
// PERIOD - Inclusive [Start, End] date range
// =============================================================================

// Period is an inclusive range of calendar days.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod builds a period from two dates, dropping time-of-day.
func NewPeriod(start, end time.Time) Period {
	return Period{Start: Day(start), End: Day(end)}
}

// ThisMonth returns the first through last day of now's month.
func ThisMonth(now time.Time) Period {
	return MonthOf(now).Period()
}

// Contains returns true if t's calendar date is within [Start, End].
func (p Period) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(p.Start)) && !d.After(Day(p.End))
}

// ContainsDate is Contains for a YYYY-MM-DD string. Unparseable dates are
// never contained.
func (p Period) ContainsDate(date string) bool {
	t, err := ParseDate(date)
	if err != nil {
		return false
	}
	return p.Contains(t)
}

// Months returns the month tokens this period touches.
func (p Period) Months() []MonthToken {
	return MonthsBetween(p.Start, p.End)
}

// IsEmpty is true when End falls before Start.
func (p Period) IsEmpty() bool {
	return Day(p.End).Before(Day(p.Start))
}

func (p Period) String() string {
	return "[" + FormatDate(p.Start) + ", " + FormatDate(p.End) + "]"
}
