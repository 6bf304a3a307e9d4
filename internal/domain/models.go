// Package domain holds the core types and pure ledger computations for
// the household dues tracker. Balances are never stored: every figure is
// derived on read from the append-only transaction log.
package domain

import "time"

// DailyRate is the flat contribution fee per household per calendar day,
// in whole rupiah.
const DailyRate int64 = 500

// HouseholdStatus enumerates the lifecycle states of a household.
type HouseholdStatus string

const (
	HouseholdActive   HouseholdStatus = "active"
	HouseholdInactive HouseholdStatus = "inactive"
)

// TransactionType distinguishes accruals from payments.
// DEBIT rows are obligation accruals (the daily fee feed);
// CREDIT rows are cash payments received.
type TransactionType string

const (
	TypeDebit  TransactionType = "DEBIT"
	TypeCredit TransactionType = "CREDIT"
)

// Household is a contributing household in the neighborhood unit.
// ContributionStartDate is the calendar date accrual begins and is
// assumed immutable once transactions exist against it.
type Household struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	ContributionStartDate time.Time       `json:"contribution_start_date"`
	Status                HouseholdStatus `json:"status"`
	CreatedAt             time.Time       `json:"created_at"`
}

// Transaction is one immutable row in the contribution ledger.
// Amount is always positive; the sign is carried by Type.
type Transaction struct {
	ID              string          `json:"id"`
	HouseholdID     string          `json:"household_id"`
	PeriodID        string          `json:"period_id,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	Type            TransactionType `json:"type"`
	Amount          int64           `json:"amount"`
	Description     string          `json:"description,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CollectionPeriod is a named calendar-month collection window.
// StartDate/EndDate are the first and last day of that month.
// Unique per (Month, Year).
type CollectionPeriod struct {
	ID        string    `json:"id"`
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BalanceInfo is the derived financial position of one household.
//
// Balance is ledger-based (sum of CREDIT minus sum of DEBIT rows), while
// TotalObligation is the day-count estimate (TotalDays × DailyRate). The
// two diverge when the daily accrual feed has gaps; both are reported
// as-is, never reconciled against each other.
type BalanceInfo struct {
	Balance         int64 `json:"balance"`
	TotalDays       int   `json:"total_days"`
	TotalObligation int64 `json:"total_obligation"`
	TotalPayments   int64 `json:"total_payments"`
}

// HouseholdWithBalance pairs a household with its computed balance.
type HouseholdWithBalance struct {
	Household
	BalanceInfo
}

// ReportStatus classifies a household's standing within a period.
type ReportStatus string

const (
	StatusPaid   ReportStatus = "PAID"
	StatusUnpaid ReportStatus = "UNPAID"
)

// PeriodReportRow is one household's due/paid line in a period report.
type PeriodReportRow struct {
	HouseholdID   string       `json:"household_id"`
	HouseholdName string       `json:"household_name"`
	TotalDue      int64        `json:"total_due"`
	TotalPaid     int64        `json:"total_paid"`
	Status        ReportStatus `json:"status"`
}

// DashboardSummary is the portfolio-level aggregate over all households.
// Debt and deposit figures cover active households only; cash collected
// covers every CREDIT ever recorded regardless of household status.
type DashboardSummary struct {
	TotalHouseholds       int   `json:"total_households"`
	ActiveHouseholds      int   `json:"active_households"`
	TotalCashCollected    int64 `json:"total_cash_collected"`
	HouseholdsInDebt      int   `json:"households_in_debt"`
	HouseholdsWithDeposit int   `json:"households_with_deposit"`
	TotalDebtAmount       int64 `json:"total_debt_amount"`
	TotalDepositAmount    int64 `json:"total_deposit_amount"`
}

// TransactionFilter narrows history queries. Zero values mean "no filter".
type TransactionFilter struct {
	HouseholdID string
	PeriodID    string
	Type        TransactionType
	StartDate   time.Time
	EndDate     time.Time
}

// User is an authenticated operator of the system.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthRefreshToken is a stored (hashed) refresh token.
type AuthRefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

// ============================================================
// Request/response shapes used by the HTTP layer
// ============================================================

// CreateHouseholdRequest registers a new household.
type CreateHouseholdRequest struct {
	Name                  string `json:"name"`
	ContributionStartDate string `json:"contribution_start_date"`
	Status                string `json:"status,omitempty"`
}

// UpdateHouseholdRequest modifies household master data. Nil fields are
// left unchanged.
type UpdateHouseholdRequest struct {
	Name                  *string `json:"name,omitempty"`
	ContributionStartDate *string `json:"contribution_start_date,omitempty"`
	Status                *string `json:"status,omitempty"`
}

// RecordPaymentRequest records a cash payment (CREDIT) for a household.
type RecordPaymentRequest struct {
	Amount      int64  `json:"amount"`
	PeriodID    string `json:"period_id,omitempty"`
	Description string `json:"description,omitempty"`
}

// CreatePeriodRequest opens a collection period for a month.
type CreatePeriodRequest struct {
	Month int    `json:"month"`
	Year  int    `json:"year"`
	Notes string `json:"notes,omitempty"`
}

// UpdatePeriodRequest edits a period's notes.
type UpdatePeriodRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// UpdateTransactionRequest is an administrative override of a ledger row.
type UpdateTransactionRequest struct {
	Amount          *int64  `json:"amount,omitempty"`
	Description     *string `json:"description,omitempty"`
	TransactionDate *string `json:"transaction_date,omitempty"`
}

// LoginRequest authenticates an operator.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token pair.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id"`
	FullName     string `json:"full_name,omitempty"`
	Role         Role   `json:"role"`
}

// RefreshRequest exchanges a refresh token for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// OpsMetrics is the snapshot served by GET /v1/metrics/ops.
type OpsMetrics struct {
	TotalRequests       int64   `json:"total_requests"`
	ErrorRate           float64 `json:"error_rate"`
	PaymentsRecorded    int64   `json:"payments_recorded"`
	AccrualRowsInserted int64   `json:"accrual_rows_inserted"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	Period              string  `json:"period"`
}
