package domain

import "time"

// DateLayout is the wire format for calendar dates. The ledger has no
// time-of-day component anywhere.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date.
// Returns *ErrValidation for anything unparsable.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &ErrValidation{Field: field, Message: "invalid date, expected YYYY-MM-DD"}
	}
	return t, nil
}

// DateOf truncates t to a calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysInclusive counts whole days from start through end inclusive.
// A start after end yields 0 (never negative).
func DaysInclusive(start, end time.Time) int {
	days := int(DateOf(end).Sub(DateOf(start)).Hours()/24) + 1
	if days < 0 {
		return 0
	}
	return days
}

// MonthBounds returns the first and last day of the given calendar month.
func MonthBounds(year, month int) (first, last time.Time) {
	first = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, -1)
	return first, last
}

// WithinRange reports whether date d falls in [start, end] inclusive,
// comparing calendar dates only.
func WithinRange(d, start, end time.Time) bool {
	d = DateOf(d)
	return !d.Before(DateOf(start)) && !d.After(DateOf(end))
}
