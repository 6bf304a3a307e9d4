package supabase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/ekencleng/kencleng-api/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// periodRow maps the collection_periods table columns.
type periodRow struct {
	ID        string  `json:"id,omitempty"`
	Month     int     `json:"month"`
	Year      int     `json:"year"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Notes     *string `json:"notes"`
	CreatedAt string  `json:"created_at,omitempty"`
}

func (r periodRow) toDomain() domain.CollectionPeriod {
	start, _ := time.Parse(domain.DateLayout, r.StartDate)
	end, _ := time.Parse(domain.DateLayout, r.EndDate)
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	p := domain.CollectionPeriod{
		ID:        r.ID,
		Month:     r.Month,
		Year:      r.Year,
		StartDate: start,
		EndDate:   end,
		CreatedAt: created,
	}
	if r.Notes != nil {
		p.Notes = *r.Notes
	}
	return p
}

// ListPeriods returns all periods, most recent month first.
func (c *Client) ListPeriods(ctx context.Context) ([]domain.CollectionPeriod, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListPeriods")
	defer span.End()

	var rows []periodRow
	if err := c.getJSON(ctx, "collection_periods?order=year.desc,month.desc", &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/periods", Err: err}
	}

	periods := make([]domain.CollectionPeriod, 0, len(rows))
	for _, r := range rows {
		periods = append(periods, r.toDomain())
	}
	return periods, nil
}

// GetPeriod fetches one period by ID.
func (c *Client) GetPeriod(ctx context.Context, id string) (*domain.CollectionPeriod, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetPeriod")
	defer span.End()
	span.SetAttributes(attribute.String("period.id", id))

	var rows []periodRow
	path := "collection_periods?id=eq." + url.QueryEscape(id) + "&limit=1"
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/periods", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "period", ID: id}
	}
	p := rows[0].toDomain()
	return &p, nil
}

// GetPeriodByMonthYear fetches the period for a calendar month, or nil
// when none exists (used for duplicate detection, so absence is not an
// error here).
func (c *Client) GetPeriodByMonthYear(ctx context.Context, month, year int) (*domain.CollectionPeriod, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetPeriodByMonthYear")
	defer span.End()

	var rows []periodRow
	path := fmt.Sprintf("collection_periods?month=eq.%d&year=eq.%d&limit=1", month, year)
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/periods", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	p := rows[0].toDomain()
	return &p, nil
}

// CreatePeriod inserts a new collection period.
func (c *Client) CreatePeriod(ctx context.Context, p *domain.CollectionPeriod) (*domain.CollectionPeriod, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreatePeriod")
	defer span.End()

	row := periodRow{
		ID:        p.ID,
		Month:     p.Month,
		Year:      p.Year,
		StartDate: p.StartDate.Format(domain.DateLayout),
		EndDate:   p.EndDate.Format(domain.DateLayout),
	}
	if p.Notes != "" {
		row.Notes = &p.Notes
	}

	var inserted []periodRow
	if err := c.insertRow(ctx, "collection_periods", row, &inserted); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/periods", Err: err}
	}
	if len(inserted) == 0 {
		return nil, &domain.ErrExternalService{Service: "supabase/periods", Err: errNoRepresentation}
	}
	created := inserted[0].toDomain()
	return &created, nil
}

// UpdatePeriod patches period columns and returns the updated row.
func (c *Client) UpdatePeriod(ctx context.Context, id string, updates map[string]any) (*domain.CollectionPeriod, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdatePeriod")
	defer span.End()
	span.SetAttributes(attribute.String("period.id", id))

	var rows []periodRow
	path := "collection_periods?id=eq." + url.QueryEscape(id)
	if err := c.patchRows(ctx, path, updates, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/periods", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "period", ID: id}
	}
	updated := rows[0].toDomain()
	return &updated, nil
}

// DeletePeriod removes a period.
func (c *Client) DeletePeriod(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeletePeriod")
	defer span.End()

	path := "collection_periods?id=eq." + url.QueryEscape(id)
	if err := c.deleteRows(ctx, path); err != nil {
		return &domain.ErrExternalService{Service: "supabase/periods", Err: err}
	}
	return nil
}
