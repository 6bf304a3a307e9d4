package service

import (
	"context"
	"fmt"

	"github.com/ekencleng/kencleng-api/internal/domain"
	"github.com/ekencleng/kencleng-api/internal/infra/observability"
	"github.com/ekencleng/kencleng-api/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var periodTracer = otel.Tracer("service/periods")

// PeriodService manages collection periods and builds per-period
// due/paid reports.
type PeriodService struct {
	periods      port.PeriodStore
	households   port.HouseholdStore
	transactions port.TransactionStore
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewPeriodService creates a new period service.
func NewPeriodService(
	periods port.PeriodStore,
	households port.HouseholdStore,
	transactions port.TransactionStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *PeriodService {
	return &PeriodService{
		periods:      periods,
		households:   households,
		transactions: transactions,
		metrics:      metrics,
		logger:       logger,
	}
}

// List returns all collection periods, newest first.
func (s *PeriodService) List(ctx context.Context) ([]domain.CollectionPeriod, error) {
	ctx, span := periodTracer.Start(ctx, "PeriodService.List")
	defer span.End()

	return s.periods.ListPeriods(ctx)
}

// Get returns one collection period.
func (s *PeriodService) Get(ctx context.Context, id string) (*domain.CollectionPeriod, error) {
	ctx, span := periodTracer.Start(ctx, "PeriodService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("period.id", id))

	return s.periods.GetPeriod(ctx, id)
}

// Create opens a collection period for a calendar month. The window is
// derived from (month, year); at most one period may exist per month.
// Admin only.
func (s *PeriodService) Create(ctx context.Context, p domain.Principal, req domain.CreatePeriodRequest) (*domain.CollectionPeriod, error) {
	ctx, span := periodTracer.Start(ctx, "PeriodService.Create")
	defer span.End()

	if !p.IsAdmin() {
		return nil, &domain.ErrForbidden{Action: "create period"}
	}
	if req.Month < 1 || req.Month > 12 {
		return nil, &domain.ErrValidation{Field: "month", Message: "must be between 1 and 12"}
	}
	if req.Year < 2000 || req.Year > 2100 {
		return nil, &domain.ErrValidation{Field: "year", Message: "out of range"}
	}

	existing, err := s.periods.GetPeriodByMonthYear(ctx, req.Month, req.Year)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ErrConflict{
			Message: fmt.Sprintf("period for %s %d already exists", domain.MonthName(req.Month), req.Year),
		}
	}

	start, end := domain.MonthBounds(req.Year, req.Month)
	period := &domain.CollectionPeriod{
		ID:        uuid.NewString(),
		Month:     req.Month,
		Year:      req.Year,
		StartDate: start,
		EndDate:   end,
		Notes:     req.Notes,
	}

	created, err := s.periods.CreatePeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	s.logger.Info("period created",
		zap.String("period_id", created.ID),
		zap.Int("month", created.Month),
		zap.Int("year", created.Year),
		zap.String("by", p.UserID))
	return created, nil
}

// Update edits a period's notes. The month window itself is immutable.
// Admin only.
func (s *PeriodService) Update(ctx context.Context, p domain.Principal, id string, req domain.UpdatePeriodRequest) (*domain.CollectionPeriod, error) {
	ctx, span := periodTracer.Start(ctx, "PeriodService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("period.id", id))

	if !p.IsAdmin() {
		return nil, &domain.ErrForbidden{Action: "update period"}
	}
	if req.Notes == nil {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	return s.periods.UpdatePeriod(ctx, id, map[string]any{"notes": *req.Notes})
}

// Delete removes a period. Payments linked to it keep their rows; they
// simply stop counting toward any period report. Admin only.
func (s *PeriodService) Delete(ctx context.Context, p domain.Principal, id string) error {
	ctx, span := periodTracer.Start(ctx, "PeriodService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("period.id", id))

	if !p.IsAdmin() {
		return &domain.ErrForbidden{Action: "delete period"}
	}

	if _, err := s.periods.GetPeriod(ctx, id); err != nil {
		return err
	}
	return s.periods.DeletePeriod(ctx, id)
}

// Report builds the due/paid standing of every household for the
// period. Dues come from DEBIT rows dated inside the period window;
// payments only count when explicitly linked to the period.
func (s *PeriodService) Report(ctx context.Context, periodID string) (*domain.CollectionPeriod, []domain.PeriodReportRow, error) {
	ctx, span := periodTracer.Start(ctx, "PeriodService.Report")
	defer span.End()
	span.SetAttributes(attribute.String("period.id", periodID))

	period, err := s.periods.GetPeriod(ctx, periodID)
	if err != nil {
		return nil, nil, err
	}

	var (
		households []domain.Household
		debits     []domain.Transaction
		credits    []domain.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		households, err = s.households.ListHouseholds(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		debits, err = s.transactions.ListAllTransactions(gctx, domain.TransactionFilter{
			Type:      domain.TypeDebit,
			StartDate: period.StartDate,
			EndDate:   period.EndDate,
		})
		return err
	})
	g.Go(func() error {
		var err error
		credits, err = s.transactions.ListAllTransactions(gctx, domain.TransactionFilter{
			Type:     domain.TypeCredit,
			PeriodID: period.ID,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		s.metrics.IncrStoreError("periods")
		return nil, nil, err
	}

	rows := domain.ComputePeriodReport(*period, households, append(debits, credits...))
	return period, rows, nil
}
