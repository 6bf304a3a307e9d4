package domain

import "strings"

// Money values are whole rupiah (no fractional subunits). Formatting
// below is presentation only and never feeds back into ledger math.

// FormatIDR renders an amount as Indonesian Rupiah with dot grouping,
// e.g. 1234567 -> "Rp 1.234.567".
func FormatIDR(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	digits := []byte{}
	if amount == 0 {
		digits = []byte{'0'}
	}
	for amount > 0 {
		digits = append(digits, byte('0'+amount%10))
		amount /= 10
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("Rp ")
	n := len(digits)
	for i := n - 1; i >= 0; i-- {
		b.WriteByte(digits[i])
		if i > 0 && i%3 == 0 {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// FormatBalance renders a balance with its colloquial status label:
// negative is debt ("Hutang"), positive is a deposit surplus
// ("Nyimpen"), zero is settled ("Lunas").
func FormatBalance(balance int64) string {
	switch {
	case balance < 0:
		return "-" + FormatIDR(-balance) + " (Hutang)"
	case balance > 0:
		return "+" + FormatIDR(balance) + " (Nyimpen)"
	default:
		return "Rp 0 (Lunas)"
	}
}

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// MonthName returns the Indonesian name for month 1-12, or "" out of range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}
