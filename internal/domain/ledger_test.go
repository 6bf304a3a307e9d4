package domain_test

import (
	"testing"
	"time"

	"github.com/ekencleng/kencleng-api/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeBalance_NoTransactions(t *testing.T) {
	h := domain.Household{
		ID:                    "hh-1",
		ContributionStartDate: date(2025, time.January, 1),
	}
	today := date(2025, time.January, 10)

	b := domain.ComputeBalance(h, today, nil)

	if b.Balance != 0 {
		t.Errorf("expected balance 0, got %d", b.Balance)
	}
	if b.TotalPayments != 0 {
		t.Errorf("expected payments 0, got %d", b.TotalPayments)
	}
	if b.TotalDays != 10 {
		t.Errorf("expected 10 days, got %d", b.TotalDays)
	}
	if b.TotalObligation != 10*domain.DailyRate {
		t.Errorf("expected obligation %d, got %d", 10*domain.DailyRate, b.TotalObligation)
	}
}

func TestComputeBalance_StartDateInFuture(t *testing.T) {
	h := domain.Household{
		ID:                    "hh-1",
		ContributionStartDate: date(2025, time.June, 1),
	}
	today := date(2025, time.May, 1)

	b := domain.ComputeBalance(h, today, nil)

	if b.TotalDays != 0 {
		t.Errorf("expected 0 days for future start, got %d", b.TotalDays)
	}
	if b.TotalObligation != 0 {
		t.Errorf("expected 0 obligation, got %d", b.TotalObligation)
	}
}

func TestComputeBalance_StartToday(t *testing.T) {
	h := domain.Household{ContributionStartDate: date(2025, time.March, 15)}

	b := domain.ComputeBalance(h, date(2025, time.March, 15), nil)

	if b.TotalDays != 1 {
		t.Errorf("expected first day to count as 1, got %d", b.TotalDays)
	}
}

// A household 10 days into accrual with one 4000 payment and no DEBIT
// rows materialized yet: the obligation estimate says 5000 while the
// ledger balance is 4000. The divergence is intentional and must not be
// reconciled away.
func TestComputeBalance_ObligationLedgerDivergence(t *testing.T) {
	h := domain.Household{
		ID:                    "hh-1",
		ContributionStartDate: date(2025, time.April, 1),
	}
	today := date(2025, time.April, 10) // 10 elapsed days inclusive
	txs := []domain.Transaction{
		{HouseholdID: "hh-1", Type: domain.TypeCredit, Amount: 4000, TransactionDate: date(2025, time.April, 5)},
	}

	b := domain.ComputeBalance(h, today, txs)

	if b.TotalObligation != 5000 {
		t.Errorf("expected obligation 5000, got %d", b.TotalObligation)
	}
	if b.Balance != 4000 {
		t.Errorf("expected ledger balance 4000, got %d", b.Balance)
	}
	if b.TotalPayments != 4000 {
		t.Errorf("expected payments 4000, got %d", b.TotalPayments)
	}
}

func TestComputeBalance_LedgerArithmeticExact(t *testing.T) {
	h := domain.Household{ID: "hh-1", ContributionStartDate: date(2025, time.January, 1)}
	txs := []domain.Transaction{
		{Type: domain.TypeDebit, Amount: 500},
		{Type: domain.TypeDebit, Amount: 500},
		{Type: domain.TypeDebit, Amount: 500},
		{Type: domain.TypeCredit, Amount: 1000},
		{Type: domain.TypeCredit, Amount: 250},
	}

	b := domain.ComputeBalance(h, date(2025, time.January, 3), txs)

	// balance == totalPayments − sum(DEBIT) exactly, integer arithmetic
	if b.Balance != b.TotalPayments-1500 {
		t.Errorf("balance %d != payments %d - debits 1500", b.Balance, b.TotalPayments)
	}
	if b.Balance != -250 {
		t.Errorf("expected balance -250, got %d", b.Balance)
	}
}
