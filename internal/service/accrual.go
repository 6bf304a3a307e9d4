package service

import (
	"context"
	"sync/atomic"
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

var accrualTracer = otel.Tracer("service/accrual")

// accrualDescription is the fixed label on generated DEBIT rows.
const accrualDescription = "Iuran harian"

// AccrualService materializes the daily fee as DEBIT rows. It is the
// write half of the obligation model: the day-count estimate exists
// regardless, but period reports only see what this feed inserted.
type AccrualService struct {
	households   port.HouseholdStore
	transactions port.TransactionStore
	metrics      *observability.Metrics
	logger       *zap.Logger

	maxConcurrency int
}

// NewAccrualService creates a new accrual service.
func NewAccrualService(households port.HouseholdStore, transactions port.TransactionStore, metrics *observability.Metrics, logger *zap.Logger, maxConcurrency int) *AccrualService {
	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}
	return &AccrualService{
		households:     households,
		transactions:   transactions,
		metrics:        metrics,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// Run inserts the missing daily DEBIT rows for every active household,
// from its contribution start date through today. Days that already
// carry a DEBIT row are skipped, so reruns and missed days are both
// safe. Returns the number of rows inserted.
func (s *AccrualService) Run(ctx context.Context, today time.Time) (int, error) {
	ctx, span := accrualTracer.Start(ctx, "AccrualService.Run")
	defer span.End()

	today = domain.DateOf(today)
	households, err := s.households.ListHouseholds(ctx)
	if err != nil {
		return 0, err
	}

	var inserted int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)
	for _, h := range households {
		if h.Status != domain.HouseholdActive {
			continue
		}
		h := h
		g.Go(func() error {
			n, err := s.accrueHousehold(gctx, h, today)
			if err != nil {
				return err
			}
			atomic.AddInt64(&inserted, int64(n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.metrics.IncrStoreError("transactions")
		return int(atomic.LoadInt64(&inserted)), err
	}

	total := int(atomic.LoadInt64(&inserted))
	s.metrics.AddAccrualRows(total)
	span.SetAttributes(attribute.Int("accrual.rows", total))
	s.logger.Info("daily fee accrual complete",
		zap.Int("households", len(households)),
		zap.Int("rows_inserted", total))
	return total, nil
}

// accrueHousehold fills the household's DEBIT gaps up to today.
func (s *AccrualService) accrueHousehold(ctx context.Context, h domain.Household, today time.Time) (int, error) {
	start := domain.DateOf(h.ContributionStartDate)
	if start.After(today) {
		return 0, nil
	}

	existing, err := s.transactions.ListDebitDates(ctx, h.ID)
	if err != nil {
		return 0, err
	}
	seen := make(map[time.Time]bool, len(existing))
	for _, d := range existing {
		seen[domain.DateOf(d)] = true
	}

	inserted := 0
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		if seen[d] {
			continue
		}
		tx := &domain.Transaction{
			ID:              uuid.NewString(),
			HouseholdID:     h.ID,
			TransactionDate: d,
			Type:            domain.TypeDebit,
			Amount:          domain.DailyRate,
			Description:     accrualDescription,
		}
		if _, err := s.transactions.CreateTransaction(ctx, tx); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
