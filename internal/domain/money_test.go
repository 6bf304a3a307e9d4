package domain_test

import (
	"testing"

	"github.com/ekencleng/kencleng-api/internal/domain"
)

func TestFormatIDR(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{0, "Rp 0"},
		{500, "Rp 500"},
		{5000, "Rp 5.000"},
		{1234567, "Rp 1.234.567"},
		{-2000, "-Rp 2.000"},
	}
	for _, c := range cases {
		if got := domain.FormatIDR(c.amount); got != c.want {
			t.Errorf("FormatIDR(%d) = %q, want %q", c.amount, got, c.want)
		}
	}
}

func TestFormatBalance(t *testing.T) {
	if got := domain.FormatBalance(-2000); got != "-Rp 2.000 (Hutang)" {
		t.Errorf("debt label: got %q", got)
	}
	if got := domain.FormatBalance(3000); got != "+Rp 3.000 (Nyimpen)" {
		t.Errorf("deposit label: got %q", got)
	}
	if got := domain.FormatBalance(0); got != "Rp 0 (Lunas)" {
		t.Errorf("settled label: got %q", got)
	}
}

func TestMonthName(t *testing.T) {
	if got := domain.MonthName(4); got != "April" {
		t.Errorf("expected April, got %q", got)
	}
	if got := domain.MonthName(12); got != "Desember" {
		t.Errorf("expected Desember, got %q", got)
	}
	if got := domain.MonthName(0); got != "" {
		t.Errorf("out of range must be empty, got %q", got)
	}
}

func TestParseRole(t *testing.T) {
	if r, err := domain.ParseRole("admin"); err != nil || r != domain.RoleAdmin {
		t.Errorf("admin should parse, got %v %v", r, err)
	}
	if _, err := domain.ParseRole("superuser"); err == nil {
		t.Error("unknown role must fail")
	}
}
