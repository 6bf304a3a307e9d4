package service

import (
	"context"
	"sort"

	"github.com/ekencleng/kencleng-api/internal/domain"
	"github.com/ekencleng/kencleng-api/internal/infra/observability"
	"github.com/ekencleng/kencleng-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var dashboardTracer = otel.Tracer("service/dashboard")

// summaryCacheKey is the single cache slot for the dashboard summary.
// Payment writes evict it so the figures never lag a recorded payment
// by more than one read.
const summaryCacheKey = "dashboard:summary"

// DashboardService serves the portfolio-level aggregates.
type DashboardService struct {
	households   *HouseholdService
	transactions port.TransactionStore
	summaryCache port.Cache[domain.DashboardSummary]
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	households *HouseholdService,
	transactions port.TransactionStore,
	summaryCache port.Cache[domain.DashboardSummary],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		households:   households,
		transactions: transactions,
		summaryCache: summaryCache,
		metrics:      metrics,
		logger:       logger,
	}
}

// Summary derives the dashboard aggregate, serving from cache when a
// fresh copy exists.
func (s *DashboardService) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	ctx, span := dashboardTracer.Start(ctx, "DashboardService.Summary")
	defer span.End()

	if cached, ok := s.summaryCache.Get(summaryCacheKey); ok {
		s.metrics.IncrCacheHit("summary")
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &cached, nil
	}
	s.metrics.IncrCacheMiss("summary")

	balances, err := s.households.ListWithBalances(ctx)
	if err != nil {
		return nil, err
	}
	totalCash, err := s.transactions.SumCredits(ctx)
	if err != nil {
		return nil, err
	}

	summary := domain.ComputeSummary(balances, totalCash)
	s.summaryCache.Set(summaryCacheKey, summary)
	return &summary, nil
}

// RecentPayments returns the latest recorded CREDIT rows.
func (s *DashboardService) RecentPayments(ctx context.Context, limit int) ([]domain.Transaction, error) {
	ctx, span := dashboardTracer.Start(ctx, "DashboardService.RecentPayments")
	defer span.End()

	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.transactions.ListRecentPayments(ctx, limit)
}

// TopDebtors returns the active households with the deepest negative
// balances, most indebted first.
func (s *DashboardService) TopDebtors(ctx context.Context, limit int) ([]domain.HouseholdWithBalance, error) {
	ctx, span := dashboardTracer.Start(ctx, "DashboardService.TopDebtors")
	defer span.End()

	if limit <= 0 || limit > 100 {
		limit = 5
	}

	balances, err := s.households.ListWithBalances(ctx)
	if err != nil {
		return nil, err
	}

	debtors := make([]domain.HouseholdWithBalance, 0, len(balances))
	for _, h := range balances {
		if h.Status == domain.HouseholdActive && h.Balance < 0 {
			debtors = append(debtors, h)
		}
	}
	sort.Slice(debtors, func(i, j int) bool {
		return debtors[i].Balance < debtors[j].Balance
	})
	if len(debtors) > limit {
		debtors = debtors[:limit]
	}
	return debtors, nil
}
