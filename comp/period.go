package comp

import (
	"fmt"
	"time"
)

// =============================================================================
// QUARTER - Quarterly bonus calculation period
// =============================================================================

// Quarter identifies one quarterly bonus period, e.g. 2025-Q1.
type Quarter struct {
	Year int
	Q    int // 1-4
}

// ParseQuarter parses "2025-Q1" style identifiers.
func ParseQuarter(s string) (Quarter, error) {
	var q Quarter
	if _, err := fmt.Sscanf(s, "%d-Q%d", &q.Year, &q.Q); err != nil {
		return Quarter{}, fmt.Errorf("invalid quarter %q (want YYYY-Qn): %w", s, err)
	}
	if q.Q < 1 || q.Q > 4 || q.Year < 1 {
		return Quarter{}, fmt.Errorf("invalid quarter %q (want YYYY-Qn)", s)
	}
	return q, nil
}

func (q Quarter) String() string {
	return fmt.Sprintf("%d-Q%d", q.Year, q.Q)
}

// Start returns the first day of the quarter (UTC, midnight).
func (q Quarter) Start() time.Time {
	return time.Date(q.Year, time.Month((q.Q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the quarter.
func (q Quarter) End() time.Time {
	return q.Start().AddDate(0, 3, -1)
}

func (q Quarter) Contains(t time.Time) bool {
	d := DayOf(t)
	return !d.Before(q.Start()) && !d.After(q.End())
}

func (q Quarter) IsZero() bool { return q.Year == 0 && q.Q == 0 }

// =============================================================================
// CALENDAR MONTH - Monthly commission calculation period
// =============================================================================

// CalendarMonth identifies one monthly commission period, e.g. 2025-03.
type CalendarMonth struct {
	Year  int
	Month time.Month
}

// ParseMonth parses "2025-03" style identifiers.
func ParseMonth(s string) (CalendarMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return CalendarMonth{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return CalendarMonth{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) CalendarMonth {
	return CalendarMonth{Year: t.Year(), Month: t.Month()}
}

func (m CalendarMonth) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// Start returns the first day of the month (UTC, midnight).
func (m CalendarMonth) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the month.
func (m CalendarMonth) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

func (m CalendarMonth) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

func (m CalendarMonth) Prev() CalendarMonth {
	return MonthOf(m.Start().AddDate(0, -1, 0))
}

func (m CalendarMonth) Next() CalendarMonth {
	return MonthOf(m.Start().AddDate(0, 1, 0))
}

func (m CalendarMonth) IsZero() bool { return m.Year == 0 && m.Month == 0 }

// =============================================================================
// DATE HELPERS
// =============================================================================

// DayOf truncates a timestamp to its UTC calendar day. Order dates and
// spiff windows compare at day granularity.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthsBetween returns the number of whole months from 'from' to 'to'.
// Partial months round down: Jan 15 to Jul 14 is 5 months, Jan 15 to
// Jul 15 is 6. Negative when 'to' precedes 'from'.
func MonthsBetween(from, to time.Time) int {
	from, to = DayOf(from), DayOf(to)
	sign := 1
	if to.Before(from) {
		from, to = to, from
		sign = -1
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	return sign * months
}
