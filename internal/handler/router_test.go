package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ekencleng/kencleng-api/internal/domain"
	"github.com/ekencleng/kencleng-api/internal/handler"
	"github.com/ekencleng/kencleng-api/internal/infra/cache"
	"github.com/ekencleng/kencleng-api/internal/infra/observability"
	"github.com/ekencleng/kencleng-api/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// fakeStore implements every store port in memory, enough to drive the
// router end to end.
type fakeStore struct {
	households []domain.Household
	periods    []domain.CollectionPeriod
	txs        []domain.Transaction
	users      []domain.User
	tokens     map[string]domain.AuthRefreshToken
}

func (f *fakeStore) ListHouseholds(_ context.Context) ([]domain.Household, error) {
	return f.households, nil
}

func (f *fakeStore) GetHousehold(_ context.Context, id string) (*domain.Household, error) {
	for _, h := range f.households {
		if h.ID == id {
			return &h, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "household", ID: id}
}

func (f *fakeStore) CreateHousehold(_ context.Context, h *domain.Household) (*domain.Household, error) {
	f.households = append(f.households, *h)
	return h, nil
}

func (f *fakeStore) UpdateHousehold(_ context.Context, id string, _ map[string]any) (*domain.Household, error) {
	return f.GetHousehold(context.Background(), id)
}

func (f *fakeStore) DeleteHousehold(_ context.Context, id string) error { return nil }

func (f *fakeStore) ListTransactions(_ context.Context, householdID string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, tx := range f.txs {
		if tx.HouseholdID == householdID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPeriods(_ context.Context) ([]domain.CollectionPeriod, error) {
	return f.periods, nil
}

func (f *fakeStore) GetPeriod(_ context.Context, id string) (*domain.CollectionPeriod, error) {
	for _, p := range f.periods {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "period", ID: id}
}

func (f *fakeStore) GetPeriodByMonthYear(_ context.Context, month, year int) (*domain.CollectionPeriod, error) {
	for _, p := range f.periods {
		if p.Month == month && p.Year == year {
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreatePeriod(_ context.Context, p *domain.CollectionPeriod) (*domain.CollectionPeriod, error) {
	f.periods = append(f.periods, *p)
	return p, nil
}

func (f *fakeStore) UpdatePeriod(_ context.Context, id string, _ map[string]any) (*domain.CollectionPeriod, error) {
	return f.GetPeriod(context.Background(), id)
}

func (f *fakeStore) DeletePeriod(_ context.Context, id string) error { return nil }

func (f *fakeStore) CreateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	f.txs = append(f.txs, *tx)
	return tx, nil
}

func (f *fakeStore) ListAllTransactions(_ context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, tx := range f.txs {
		if filter.HouseholdID != "" && tx.HouseholdID != filter.HouseholdID {
			continue
		}
		if filter.PeriodID != "" && tx.PeriodID != filter.PeriodID {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, id string, _ map[string]any) (*domain.Transaction, error) {
	return &domain.Transaction{ID: id}, nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, id string) error { return nil }

func (f *fakeStore) SumCredits(_ context.Context) (int64, error) {
	var sum int64
	for _, tx := range f.txs {
		if tx.Type == domain.TypeCredit {
			sum += tx.Amount
		}
	}
	return sum, nil
}

func (f *fakeStore) ListDebitDates(_ context.Context, householdID string) ([]time.Time, error) {
	var dates []time.Time
	for _, tx := range f.txs {
		if tx.HouseholdID == householdID && tx.Type == domain.TypeDebit {
			dates = append(dates, tx.TransactionDate)
		}
	}
	return dates, nil
}

func (f *fakeStore) ListRecentPayments(_ context.Context, limit int) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, tx := range f.txs {
		if tx.Type == domain.TypeCredit {
			out = append(out, tx)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: id}
}

func (f *fakeStore) StoreRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	if f.tokens == nil {
		f.tokens = map[string]domain.AuthRefreshToken{}
	}
	f.tokens[tokenHash] = domain.AuthRefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeStore) GetRefreshToken(_ context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	tok, ok := f.tokens[tokenHash]
	if !ok {
		return nil, nil
	}
	return &tok, nil
}

func (f *fakeStore) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	delete(f.tokens, tokenHash)
	return nil
}

func (f *fakeStore) RevokeAllRefreshTokens(_ context.Context, userID string) error {
	for hash, tok := range f.tokens {
		if tok.UserID == userID {
			delete(f.tokens, hash)
		}
	}
	return nil
}

const testCronSecret = "cron-secret"

func newTestRouter(t *testing.T, store *fakeStore) http.Handler {
	t.Helper()

	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	summaryCache := cache.New[domain.DashboardSummary](time.Minute)

	householdSvc := service.NewHouseholdService(store, metrics, logger, 4)
	return handler.NewRouter(handler.Services{
		Households: householdSvc,
		Payments:   service.NewPaymentService(store, store, store, summaryCache, metrics, logger),
		Periods:    service.NewPeriodService(store, store, store, metrics, logger),
		Dashboard:  service.NewDashboardService(householdSvc, store, summaryCache, metrics, logger),
		Accrual:    service.NewAccrualService(store, store, metrics, logger, 4),
		Auth:       service.NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, logger),
	}, metrics, testCronSecret, logger)
}

func seededStore(t *testing.T) *fakeStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	start, end := domain.MonthBounds(2025, 1)
	return &fakeStore{
		households: []domain.Household{
			{ID: "h1", Name: "Keluarga Ahmad", ContributionStartDate: date(2025, 1, 1), Status: domain.HouseholdActive},
		},
		periods: []domain.CollectionPeriod{
			{ID: "p1", Month: 1, Year: 2025, StartDate: start, EndDate: end},
		},
		users: []domain.User{
			{ID: "u1", Email: "bendahara@rt7.id", Role: domain.RoleAdmin, PasswordHash: string(hash)},
		},
	}
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func loginToken(t *testing.T, router http.Handler) string {
	t.Helper()
	body := bytes.NewBufferString(`{"email":"bendahara@rt7.id","password":"rahasia123"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.AccessToken
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, seededStore(t))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := newTestRouter(t, seededStore(t))

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := newTestRouter(t, seededStore(t))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, seededStore(t))

	for _, path := range []string{"/v1/households", "/v1/periods", "/v1/dashboard/summary", "/v1/transactions"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestListHouseholdsWithToken(t *testing.T) {
	router := newTestRouter(t, seededStore(t))
	token := loginToken(t, router)

	req := httptest.NewRequest(http.MethodGet, "/v1/households", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var households []domain.HouseholdWithBalance
	if err := json.Unmarshal(rec.Body.Bytes(), &households); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(households) != 1 || households[0].Name != "Keluarga Ahmad" {
		t.Errorf("unexpected households %+v", households)
	}
}

func TestRecordPaymentRoundTrip(t *testing.T) {
	store := seededStore(t)
	router := newTestRouter(t, store)
	token := loginToken(t, router)

	body := bytes.NewBufferString(`{"amount":15000,"period_id":"p1"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/households/h1/payments", body)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if len(store.txs) != 1 || store.txs[0].Type != domain.TypeCredit {
		t.Errorf("expected one CREDIT row, got %+v", store.txs)
	}
}

func TestPeriodReportExport(t *testing.T) {
	store := seededStore(t)
	store.txs = []domain.Transaction{
		{ID: "t1", HouseholdID: "h1", Type: domain.TypeDebit, Amount: 15500, TransactionDate: date(2025, 1, 31)},
	}
	router := newTestRouter(t, store)
	token := loginToken(t, router)

	req := httptest.NewRequest(http.MethodGet, "/v1/periods/p1/report/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected HTML content type, got %q", ct)
	}
	html := rec.Body.String()
	for _, want := range []string{"Januari 2025", "Keluarga Ahmad", "Rp 15.500", "BELUM LUNAS"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected export to contain %q", want)
		}
	}
}

func TestCronDailyFee(t *testing.T) {
	store := seededStore(t)
	router := newTestRouter(t, store)

	// Wrong secret is rejected.
	req := httptest.NewRequest(http.MethodPost, "/v1/cron/daily-fee", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad secret: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/cron/daily-fee", nil)
	req.Header.Set("Authorization", "Bearer "+testCronSecret)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if len(store.txs) == 0 {
		t.Error("expected accrual rows to be inserted")
	}
}

func TestCreatePeriodConflict(t *testing.T) {
	router := newTestRouter(t, seededStore(t))
	token := loginToken(t, router)

	body := bytes.NewBufferString(`{"month":1,"year":2025}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/periods", body)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d (%s)", rec.Code, rec.Body.String())
	}
}
