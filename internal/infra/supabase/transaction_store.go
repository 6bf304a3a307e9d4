package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ekencleng/kencleng-api/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

var errNoRepresentation = errors.New("insert returned no representation")

// transactionRow maps the contribution_transactions table columns.
type transactionRow struct {
	ID              string  `json:"id,omitempty"`
	HouseholdID     string  `json:"household_id"`
	PeriodID        *string `json:"period_id"`
	TransactionDate string  `json:"transaction_date"`
	Type            string  `json:"type"`
	Amount          int64   `json:"amount"`
	Description     *string `json:"description"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

func (r transactionRow) toDomain() domain.Transaction {
	txDate, _ := time.Parse(domain.DateLayout, r.TransactionDate)
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	tx := domain.Transaction{
		ID:              r.ID,
		HouseholdID:     r.HouseholdID,
		TransactionDate: txDate,
		Type:            domain.TransactionType(r.Type),
		Amount:          r.Amount,
		CreatedAt:       created,
	}
	if r.PeriodID != nil {
		tx.PeriodID = *r.PeriodID
	}
	if r.Description != nil {
		tx.Description = *r.Description
	}
	return tx
}

func fromDomainTx(tx *domain.Transaction) transactionRow {
	row := transactionRow{
		ID:              tx.ID,
		HouseholdID:     tx.HouseholdID,
		TransactionDate: tx.TransactionDate.Format(domain.DateLayout),
		Type:            string(tx.Type),
		Amount:          tx.Amount,
	}
	if tx.PeriodID != "" {
		row.PeriodID = &tx.PeriodID
	}
	if tx.Description != "" {
		row.Description = &tx.Description
	}
	return row
}

// CreateTransaction appends one row to the ledger.
func (c *Client) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTransaction")
	defer span.End()
	span.SetAttributes(
		attribute.String("household.id", tx.HouseholdID),
		attribute.String("transaction.type", string(tx.Type)),
	)

	var inserted []transactionRow
	if err := c.insertRow(ctx, "contribution_transactions", fromDomainTx(tx), &inserted); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	if len(inserted) == 0 {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: errNoRepresentation}
	}
	created := inserted[0].toDomain()
	return &created, nil
}

// ListAllTransactions queries the system-wide ledger with optional
// filters, newest first.
func (c *Client) ListAllTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAllTransactions")
	defer span.End()

	path := "contribution_transactions?order=transaction_date.desc"
	if filter.HouseholdID != "" {
		path += "&household_id=eq." + url.QueryEscape(filter.HouseholdID)
	}
	if filter.PeriodID != "" {
		path += "&period_id=eq." + url.QueryEscape(filter.PeriodID)
	}
	if filter.Type != "" {
		path += "&type=eq." + url.QueryEscape(string(filter.Type))
	}
	if !filter.StartDate.IsZero() {
		path += "&transaction_date=gte." + filter.StartDate.Format(domain.DateLayout)
	}
	if !filter.EndDate.IsZero() {
		path += "&transaction_date=lte." + filter.EndDate.Format(domain.DateLayout)
	}

	var rows []transactionRow
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for _, r := range rows {
		txs = append(txs, r.toDomain())
	}
	return txs, nil
}

// UpdateTransaction patches a ledger row (administrative override only).
func (c *Client) UpdateTransaction(ctx context.Context, id string, updates map[string]any) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", id))

	var rows []transactionRow
	path := "contribution_transactions?id=eq." + url.QueryEscape(id)
	if err := c.patchRows(ctx, path, updates, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: id}
	}
	updated := rows[0].toDomain()
	return &updated, nil
}

// DeleteTransaction removes a ledger row (administrative override only).
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTransaction")
	defer span.End()

	path := "contribution_transactions?id=eq." + url.QueryEscape(id)
	if err := c.deleteRows(ctx, path); err != nil {
		return &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	return nil
}

// SumCredits returns the system-wide CREDIT total. PostgREST has no
// ad-hoc aggregation on this table, so amounts are summed client-side
// from a single snapshot query.
func (c *Client) SumCredits(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SumCredits")
	defer span.End()

	var rows []struct {
		Amount int64 `json:"amount"`
	}
	if err := c.getJSON(ctx, "contribution_transactions?type=eq.CREDIT&select=amount", &rows); err != nil {
		return 0, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}

	var total int64
	for _, r := range rows {
		total += r.Amount
	}
	return total, nil
}

// ListDebitDates returns the dates already covered by a DEBIT accrual
// row for the household.
func (c *Client) ListDebitDates(ctx context.Context, householdID string) ([]time.Time, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListDebitDates")
	defer span.End()
	span.SetAttributes(attribute.String("household.id", householdID))

	var rows []struct {
		TransactionDate string `json:"transaction_date"`
	}
	path := "contribution_transactions?household_id=eq." + url.QueryEscape(householdID) +
		"&type=eq.DEBIT&select=transaction_date"
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}

	dates := make([]time.Time, 0, len(rows))
	for _, r := range rows {
		d, err := time.Parse(domain.DateLayout, r.TransactionDate)
		if err != nil {
			return nil, fmt.Errorf("bad transaction_date %q: %w", r.TransactionDate, err)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// ListRecentPayments returns the latest CREDIT rows by creation time.
func (c *Client) ListRecentPayments(ctx context.Context, limit int) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListRecentPayments")
	defer span.End()

	path := "contribution_transactions?type=eq.CREDIT&order=created_at.desc&limit=" + strconv.Itoa(limit)
	var rows []transactionRow
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for _, r := range rows {
		txs = append(txs, r.toDomain())
	}
	return txs, nil
}
