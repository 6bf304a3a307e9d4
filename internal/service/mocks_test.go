package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/ekencleng/kencleng-api/internal/domain"
)

// --- Mocks ---

type mockHouseholdStore struct {
	households []domain.Household
	ledgers    map[string][]domain.Transaction
	err        error

	updated map[string]map[string]any
	deleted []string
}

func (m *mockHouseholdStore) ListHouseholds(_ context.Context) ([]domain.Household, error) {
	return m.households, m.err
}

func (m *mockHouseholdStore) GetHousehold(_ context.Context, id string) (*domain.Household, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, h := range m.households {
		if h.ID == id {
			return &h, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "household", ID: id}
}

func (m *mockHouseholdStore) CreateHousehold(_ context.Context, h *domain.Household) (*domain.Household, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.households = append(m.households, *h)
	return h, nil
}

func (m *mockHouseholdStore) UpdateHousehold(_ context.Context, id string, updates map[string]any) (*domain.Household, error) {
	if m.updated == nil {
		m.updated = map[string]map[string]any{}
	}
	m.updated[id] = updates
	for _, h := range m.households {
		if h.ID == id {
			return &h, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "household", ID: id}
}

func (m *mockHouseholdStore) DeleteHousehold(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockHouseholdStore) ListTransactions(_ context.Context, householdID string) ([]domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.ledgers[householdID], nil
}

type mockPeriodStore struct {
	periods []domain.CollectionPeriod
	err     error

	updated map[string]map[string]any
	deleted []string
}

func (m *mockPeriodStore) ListPeriods(_ context.Context) ([]domain.CollectionPeriod, error) {
	return m.periods, m.err
}

func (m *mockPeriodStore) GetPeriod(_ context.Context, id string) (*domain.CollectionPeriod, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.periods {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "period", ID: id}
}

func (m *mockPeriodStore) GetPeriodByMonthYear(_ context.Context, month, year int) (*domain.CollectionPeriod, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.periods {
		if p.Month == month && p.Year == year {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *mockPeriodStore) CreatePeriod(_ context.Context, p *domain.CollectionPeriod) (*domain.CollectionPeriod, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.periods = append(m.periods, *p)
	return p, nil
}

func (m *mockPeriodStore) UpdatePeriod(_ context.Context, id string, updates map[string]any) (*domain.CollectionPeriod, error) {
	if m.updated == nil {
		m.updated = map[string]map[string]any{}
	}
	m.updated[id] = updates
	for _, p := range m.periods {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "period", ID: id}
}

func (m *mockPeriodStore) DeletePeriod(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockTransactionStore struct {
	mu sync.Mutex

	transactions []domain.Transaction
	created      []domain.Transaction
	sumCredits   int64
	recent       []domain.Transaction
	err          error

	updated map[string]map[string]any
	deleted []string
}

func (m *mockTransactionStore) CreateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, *tx)
	m.transactions = append(m.transactions, *tx)
	return tx, nil
}

func (m *mockTransactionStore) ListAllTransactions(_ context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Transaction
	for _, tx := range m.transactions {
		if filter.HouseholdID != "" && tx.HouseholdID != filter.HouseholdID {
			continue
		}
		if filter.PeriodID != "" && tx.PeriodID != filter.PeriodID {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if !filter.StartDate.IsZero() && tx.TransactionDate.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() && tx.TransactionDate.After(filter.EndDate) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (m *mockTransactionStore) UpdateTransaction(_ context.Context, id string, updates map[string]any) (*domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.updated == nil {
		m.updated = map[string]map[string]any{}
	}
	m.updated[id] = updates
	return &domain.Transaction{ID: id}, nil
}

func (m *mockTransactionStore) DeleteTransaction(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockTransactionStore) SumCredits(_ context.Context) (int64, error) {
	return m.sumCredits, m.err
}

func (m *mockTransactionStore) ListDebitDates(_ context.Context, householdID string) ([]time.Time, error) {
	if m.err != nil {
		return nil, m.err
	}
	var dates []time.Time
	for _, tx := range m.transactions {
		if tx.HouseholdID == householdID && tx.Type == domain.TypeDebit {
			dates = append(dates, tx.TransactionDate)
		}
	}
	return dates, nil
}

func (m *mockTransactionStore) ListRecentPayments(_ context.Context, limit int) ([]domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.recent) > limit {
		return m.recent[:limit], nil
	}
	return m.recent, nil
}

type mockUserStore struct {
	users  []domain.User
	tokens map[string]domain.AuthRefreshToken
	err    error

	revokedAll []string
}

func (m *mockUserStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *mockUserStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: id}
}

func (m *mockUserStore) StoreRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	if m.tokens == nil {
		m.tokens = map[string]domain.AuthRefreshToken{}
	}
	m.tokens[tokenHash] = domain.AuthRefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}
	return nil
}

func (m *mockUserStore) GetRefreshToken(_ context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	tok, ok := m.tokens[tokenHash]
	if !ok {
		return nil, nil
	}
	return &tok, nil
}

func (m *mockUserStore) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	delete(m.tokens, tokenHash)
	return nil
}

func (m *mockUserStore) RevokeAllRefreshTokens(_ context.Context, userID string) error {
	m.revokedAll = append(m.revokedAll, userID)
	for hash, tok := range m.tokens {
		if tok.UserID == userID {
			delete(m.tokens, hash)
		}
	}
	return nil
}

type mockCache[T any] struct {
	mu    sync.Mutex
	items map[string]T
}

func newMockCache[T any]() *mockCache[T] {
	return &mockCache[T]{items: map[string]T{}}
}

func (c *mockCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *mockCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *mockCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// date builds a UTC calendar date.
func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
