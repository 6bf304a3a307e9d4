// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/ekencleng/kencleng-api/internal/domain"
)

// HouseholdStore manages household master data and per-household ledgers.
type HouseholdStore interface {
	ListHouseholds(ctx context.Context) ([]domain.Household, error)
	GetHousehold(ctx context.Context, id string) (*domain.Household, error)
	CreateHousehold(ctx context.Context, h *domain.Household) (*domain.Household, error)
	UpdateHousehold(ctx context.Context, id string, updates map[string]any) (*domain.Household, error)
	DeleteHousehold(ctx context.Context, id string) error

	// ListTransactions returns the full ledger for one household,
	// newest first, as a single consistent snapshot.
	ListTransactions(ctx context.Context, householdID string) ([]domain.Transaction, error)
}

// PeriodStore manages collection periods.
type PeriodStore interface {
	ListPeriods(ctx context.Context) ([]domain.CollectionPeriod, error)
	GetPeriod(ctx context.Context, id string) (*domain.CollectionPeriod, error)
	GetPeriodByMonthYear(ctx context.Context, month, year int) (*domain.CollectionPeriod, error)
	CreatePeriod(ctx context.Context, p *domain.CollectionPeriod) (*domain.CollectionPeriod, error)
	UpdatePeriod(ctx context.Context, id string, updates map[string]any) (*domain.CollectionPeriod, error)
	DeletePeriod(ctx context.Context, id string) error
}

// TransactionStore appends to and queries the system-wide ledger.
// Inserts are append-only; Update/Delete exist solely as administrative
// overrides, never as part of normal flow.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	ListAllTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, updates map[string]any) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	// SumCredits returns the system-wide CREDIT total (cash collected).
	SumCredits(ctx context.Context) (int64, error)

	// ListDebitDates returns the distinct dates that already carry a
	// DEBIT accrual row for the household. Used to keep the daily-fee
	// feed idempotent per household per day.
	ListDebitDates(ctx context.Context, householdID string) ([]time.Time, error)

	ListRecentPayments(ctx context.Context, limit int) ([]domain.Transaction, error)
}

// UserStore backs authentication.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)

	StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
