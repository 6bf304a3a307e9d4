package domain_test

import (
	"testing"
	"time"

	"github.com/ekencleng/kencleng-api/internal/domain"
)

func TestDaysInclusive(t *testing.T) {
	cases := []struct {
		start, end time.Time
		want       int
	}{
		{date(2025, time.January, 1), date(2025, time.January, 1), 1},
		{date(2025, time.January, 1), date(2025, time.January, 10), 10},
		{date(2025, time.January, 10), date(2025, time.January, 1), 0},
		{date(2024, time.February, 28), date(2024, time.March, 1), 3}, // leap year
	}
	for _, c := range cases {
		if got := domain.DaysInclusive(c.start, c.end); got != c.want {
			t.Errorf("DaysInclusive(%s, %s) = %d, want %d",
				c.start.Format(domain.DateLayout), c.end.Format(domain.DateLayout), got, c.want)
		}
	}
}

func TestMonthBounds(t *testing.T) {
	first, last := domain.MonthBounds(2025, 2)
	if first != date(2025, time.February, 1) {
		t.Errorf("expected Feb 1, got %s", first)
	}
	if last != date(2025, time.February, 28) {
		t.Errorf("expected Feb 28, got %s", last)
	}

	_, last = domain.MonthBounds(2024, 2)
	if last != date(2024, time.February, 29) {
		t.Errorf("expected leap Feb 29, got %s", last)
	}

	_, last = domain.MonthBounds(2025, 12)
	if last != date(2025, time.December, 31) {
		t.Errorf("expected Dec 31, got %s", last)
	}
}

func TestParseDate(t *testing.T) {
	if _, err := domain.ParseDate("start", "2025-04-01"); err != nil {
		t.Errorf("valid date rejected: %v", err)
	}
	if _, err := domain.ParseDate("start", "01/04/2025"); err == nil {
		t.Error("malformed date accepted")
	}
}
