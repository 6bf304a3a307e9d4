// Package service provides the business logic layer (use cases).
// Services orchestrate the stores, enforce authorization via the caller's
// Principal, and delegate all financial arithmetic to the domain package.
package service

import (
	"context"
	"time"

	"github.com/ekencleng/kencleng-api/internal/domain"
	"github.com/ekencleng/kencleng-api/internal/infra/observability"
	"github.com/ekencleng/kencleng-api/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var householdTracer = otel.Tracer("service/households")

// HouseholdService manages household master data and per-household
// balances.
type HouseholdService struct {
	households port.HouseholdStore
	metrics    *observability.Metrics
	logger     *zap.Logger

	// maxConcurrency bounds the fan-out when deriving balances for the
	// whole neighborhood at once.
	maxConcurrency int
}

// NewHouseholdService creates a new household service.
func NewHouseholdService(households port.HouseholdStore, metrics *observability.Metrics, logger *zap.Logger, maxConcurrency int) *HouseholdService {
	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}
	return &HouseholdService{
		households:     households,
		metrics:        metrics,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// ListWithBalances returns every household together with its derived
// balance, fetching the per-household ledgers concurrently.
func (s *HouseholdService) ListWithBalances(ctx context.Context) ([]domain.HouseholdWithBalance, error) {
	ctx, span := householdTracer.Start(ctx, "HouseholdService.ListWithBalances")
	defer span.End()

	households, err := s.households.ListHouseholds(ctx)
	if err != nil {
		s.metrics.IncrStoreError("households")
		return nil, err
	}

	today := time.Now()
	result := make([]domain.HouseholdWithBalance, len(households))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)
	for i, h := range households {
		i, h := i, h
		g.Go(func() error {
			txs, err := s.households.ListTransactions(gctx, h.ID)
			if err != nil {
				return err
			}
			result[i] = domain.HouseholdWithBalance{
				Household:   h,
				BalanceInfo: domain.ComputeBalance(h, today, txs),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.metrics.IncrStoreError("transactions")
		return nil, err
	}

	span.SetAttributes(attribute.Int("households.count", len(result)))
	return result, nil
}

// GetWithBalance returns one household with its derived balance.
func (s *HouseholdService) GetWithBalance(ctx context.Context, id string) (*domain.HouseholdWithBalance, error) {
	ctx, span := householdTracer.Start(ctx, "HouseholdService.GetWithBalance")
	defer span.End()
	span.SetAttributes(attribute.String("household.id", id))

	h, err := s.households.GetHousehold(ctx, id)
	if err != nil {
		return nil, err
	}

	txs, err := s.households.ListTransactions(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.HouseholdWithBalance{
		Household:   *h,
		BalanceInfo: domain.ComputeBalance(*h, time.Now(), txs),
	}, nil
}

// Create registers a new household. Admin only.
func (s *HouseholdService) Create(ctx context.Context, p domain.Principal, req domain.CreateHouseholdRequest) (*domain.Household, error) {
	ctx, span := householdTracer.Start(ctx, "HouseholdService.Create")
	defer span.End()

	if !p.IsAdmin() {
		return nil, &domain.ErrForbidden{Action: "create household"}
	}
	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}
	start, err := domain.ParseDate("contribution_start_date", req.ContributionStartDate)
	if err != nil {
		return nil, err
	}
	status := domain.HouseholdActive
	if req.Status != "" {
		switch domain.HouseholdStatus(req.Status) {
		case domain.HouseholdActive, domain.HouseholdInactive:
			status = domain.HouseholdStatus(req.Status)
		default:
			return nil, &domain.ErrValidation{Field: "status", Message: "must be active or inactive"}
		}
	}

	h := &domain.Household{
		ID:                    uuid.NewString(),
		Name:                  req.Name,
		ContributionStartDate: start,
		Status:                status,
	}

	created, err := s.households.CreateHousehold(ctx, h)
	if err != nil {
		return nil, err
	}

	s.logger.Info("household created",
		zap.String("household_id", created.ID),
		zap.String("name", created.Name),
		zap.String("by", p.UserID))
	return created, nil
}

// Update modifies household master data. Admin only. The contribution
// start date may be moved while onboarding mistakes are still fresh;
// historic accrual rows are intentionally left untouched.
func (s *HouseholdService) Update(ctx context.Context, p domain.Principal, id string, req domain.UpdateHouseholdRequest) (*domain.Household, error) {
	ctx, span := householdTracer.Start(ctx, "HouseholdService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("household.id", id))

	if !p.IsAdmin() {
		return nil, &domain.ErrForbidden{Action: "update household"}
	}

	updates := map[string]any{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, &domain.ErrValidation{Field: "name", Message: "must not be empty"}
		}
		updates["name"] = *req.Name
	}
	if req.ContributionStartDate != nil {
		start, err := domain.ParseDate("contribution_start_date", *req.ContributionStartDate)
		if err != nil {
			return nil, err
		}
		updates["contribution_start_date"] = start.Format(domain.DateLayout)
	}
	if req.Status != nil {
		switch domain.HouseholdStatus(*req.Status) {
		case domain.HouseholdActive, domain.HouseholdInactive:
			updates["status"] = *req.Status
		default:
			return nil, &domain.ErrValidation{Field: "status", Message: "must be active or inactive"}
		}
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	return s.households.UpdateHousehold(ctx, id, updates)
}

// Delete removes a household. Admin only. The store cascades the
// household's ledger rows; deactivation via Update is the usual path.
func (s *HouseholdService) Delete(ctx context.Context, p domain.Principal, id string) error {
	ctx, span := householdTracer.Start(ctx, "HouseholdService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("household.id", id))

	if !p.IsAdmin() {
		return &domain.ErrForbidden{Action: "delete household"}
	}

	if _, err := s.households.GetHousehold(ctx, id); err != nil {
		return err
	}

	if err := s.households.DeleteHousehold(ctx, id); err != nil {
		return err
	}
	s.logger.Info("household deleted",
		zap.String("household_id", id),
		zap.String("by", p.UserID))
	return nil
}
