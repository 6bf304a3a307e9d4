package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/ekencleng/kencleng-api/internal/domain"
	"github.com/ekencleng/kencleng-api/internal/infra/observability"
	"github.com/ekencleng/kencleng-api/internal/service"

	"go.uber.org/zap"
)

func newAccrualService(households *mockHouseholdStore, txs *mockTransactionStore) *service.AccrualService {
	return service.NewAccrualService(households, txs, observability.NewMetrics(), zap.NewNop(), 4)
}

func TestAccrualRun(t *testing.T) {
	today := date(2025, time.January, 10)
	households := &mockHouseholdStore{households: []domain.Household{
		{ID: "h1", ContributionStartDate: date(2025, time.January, 1), Status: domain.HouseholdActive},
	}}
	txs := &mockTransactionStore{}

	svc := newAccrualService(households, txs)

	inserted, err := svc.Run(context.Background(), today)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if inserted != 10 {
		t.Fatalf("expected 10 rows, got %d", inserted)
	}

	for _, tx := range txs.created {
		if tx.Type != domain.TypeDebit {
			t.Errorf("expected DEBIT rows, got %s", tx.Type)
		}
		if tx.Amount != domain.DailyRate {
			t.Errorf("expected amount %d, got %d", domain.DailyRate, tx.Amount)
		}
		if tx.Description != "Iuran harian" {
			t.Errorf("unexpected description %q", tx.Description)
		}
	}
}

func TestAccrualRun_Idempotent(t *testing.T) {
	today := date(2025, time.January, 10)
	households := &mockHouseholdStore{households: []domain.Household{
		{ID: "h1", ContributionStartDate: date(2025, time.January, 1), Status: domain.HouseholdActive},
	}}
	txs := &mockTransactionStore{}

	svc := newAccrualService(households, txs)

	if _, err := svc.Run(context.Background(), today); err != nil {
		t.Fatalf("first run: %v", err)
	}
	inserted, err := svc.Run(context.Background(), today)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if inserted != 0 {
		t.Errorf("second run: expected 0 rows, got %d", inserted)
	}
}

func TestAccrualRun_FillsGaps(t *testing.T) {
	today := date(2025, time.January, 5)
	households := &mockHouseholdStore{households: []domain.Household{
		{ID: "h1", ContributionStartDate: date(2025, time.January, 1), Status: domain.HouseholdActive},
	}}
	// Days 1 and 3 already accrued; 2, 4, 5 are missing.
	txs := &mockTransactionStore{transactions: []domain.Transaction{
		{HouseholdID: "h1", Type: domain.TypeDebit, TransactionDate: date(2025, time.January, 1)},
		{HouseholdID: "h1", Type: domain.TypeDebit, TransactionDate: date(2025, time.January, 3)},
	}}

	svc := newAccrualService(households, txs)

	inserted, err := svc.Run(context.Background(), today)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if inserted != 3 {
		t.Errorf("expected 3 rows, got %d", inserted)
	}
}

func TestAccrualRun_SkipsInactiveAndFutureStarts(t *testing.T) {
	today := date(2025, time.January, 10)
	households := &mockHouseholdStore{households: []domain.Household{
		{ID: "h1", ContributionStartDate: date(2025, time.January, 1), Status: domain.HouseholdInactive},
		{ID: "h2", ContributionStartDate: date(2025, time.February, 1), Status: domain.HouseholdActive},
	}}
	txs := &mockTransactionStore{}

	svc := newAccrualService(households, txs)

	inserted, err := svc.Run(context.Background(), today)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if inserted != 0 {
		t.Errorf("expected 0 rows, got %d", inserted)
	}
}
