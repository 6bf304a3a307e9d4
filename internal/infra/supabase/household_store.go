package supabase

import (
	"context"
	"net/url"
	"time"

	"github.com/ekencleng/kencleng-api/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// householdRow maps the households table columns.
type householdRow struct {
	ID                    string `json:"id,omitempty"`
	Name                  string `json:"name"`
	ContributionStartDate string `json:"contribution_start_date"`
	Status                string `json:"status"`
	CreatedAt             string `json:"created_at,omitempty"`
}

func (r householdRow) toDomain() domain.Household {
	start, _ := time.Parse(domain.DateLayout, r.ContributionStartDate)
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return domain.Household{
		ID:                    r.ID,
		Name:                  r.Name,
		ContributionStartDate: start,
		Status:                domain.HouseholdStatus(r.Status),
		CreatedAt:             created,
	}
}

// ListHouseholds returns all households ordered by name.
func (c *Client) ListHouseholds(ctx context.Context) ([]domain.Household, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListHouseholds")
	defer span.End()

	var rows []householdRow
	if err := c.getJSON(ctx, "households?order=name.asc", &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/households", Err: err}
	}

	households := make([]domain.Household, 0, len(rows))
	for _, r := range rows {
		households = append(households, r.toDomain())
	}
	return households, nil
}

// GetHousehold fetches one household by ID.
func (c *Client) GetHousehold(ctx context.Context, id string) (*domain.Household, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetHousehold")
	defer span.End()
	span.SetAttributes(attribute.String("household.id", id))

	var rows []householdRow
	path := "households?id=eq." + url.QueryEscape(id) + "&limit=1"
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/households", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "household", ID: id}
	}
	h := rows[0].toDomain()
	return &h, nil
}

// CreateHousehold inserts a new household and returns the stored row.
func (c *Client) CreateHousehold(ctx context.Context, h *domain.Household) (*domain.Household, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateHousehold")
	defer span.End()

	row := householdRow{
		ID:                    h.ID,
		Name:                  h.Name,
		ContributionStartDate: h.ContributionStartDate.Format(domain.DateLayout),
		Status:                string(h.Status),
	}

	var inserted []householdRow
	if err := c.insertRow(ctx, "households", row, &inserted); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/households", Err: err}
	}
	if len(inserted) == 0 {
		return nil, &domain.ErrExternalService{Service: "supabase/households", Err: errNoRepresentation}
	}
	created := inserted[0].toDomain()
	return &created, nil
}

// UpdateHousehold patches the given columns and returns the updated row.
func (c *Client) UpdateHousehold(ctx context.Context, id string, updates map[string]any) (*domain.Household, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateHousehold")
	defer span.End()
	span.SetAttributes(attribute.String("household.id", id))

	var rows []householdRow
	path := "households?id=eq." + url.QueryEscape(id)
	if err := c.patchRows(ctx, path, updates, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/households", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "household", ID: id}
	}
	updated := rows[0].toDomain()
	return &updated, nil
}

// DeleteHousehold removes a household.
func (c *Client) DeleteHousehold(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteHousehold")
	defer span.End()

	path := "households?id=eq." + url.QueryEscape(id)
	if err := c.deleteRows(ctx, path); err != nil {
		return &domain.ErrExternalService{Service: "supabase/households", Err: err}
	}
	return nil
}

// ListTransactions returns one household's full ledger, newest first.
func (c *Client) ListTransactions(ctx context.Context, householdID string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("household.id", householdID))

	var rows []transactionRow
	path := "contribution_transactions?household_id=eq." + url.QueryEscape(householdID) +
		"&order=transaction_date.desc"
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for _, r := range rows {
		txs = append(txs, r.toDomain())
	}
	return txs, nil
}
