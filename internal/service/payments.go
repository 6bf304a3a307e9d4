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
)

var paymentTracer = otel.Tracer("service/payments")

// PaymentService appends CREDIT rows to the ledger and serves history
// queries. Ledger rows are append-only in normal operation; the update
// and delete paths are admin-only corrections.
type PaymentService struct {
	households   port.HouseholdStore
	periods      port.PeriodStore
	transactions port.TransactionStore
	summaryCache port.Cache[domain.DashboardSummary]
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	households port.HouseholdStore,
	periods port.PeriodStore,
	transactions port.TransactionStore,
	summaryCache port.Cache[domain.DashboardSummary],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		households:   households,
		periods:      periods,
		transactions: transactions,
		summaryCache: summaryCache,
		metrics:      metrics,
		logger:       logger,
	}
}

// RecordPayment appends a CREDIT row for the household, dated today.
// When PeriodID is set the payment counts toward that period's report;
// an unlinked payment still settles the running balance but no period.
func (s *PaymentService) RecordPayment(ctx context.Context, p domain.Principal, householdID string, req domain.RecordPaymentRequest) (*domain.Transaction, error) {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.RecordPayment")
	defer span.End()
	span.SetAttributes(
		attribute.String("household.id", householdID),
		attribute.Int64("amount", req.Amount),
	)

	if !p.CanRecordPayments() {
		return nil, &domain.ErrForbidden{Action: "record payment"}
	}
	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}

	if _, err := s.households.GetHousehold(ctx, householdID); err != nil {
		return nil, err
	}
	if req.PeriodID != "" {
		if _, err := s.periods.GetPeriod(ctx, req.PeriodID); err != nil {
			return nil, err
		}
	}

	tx := &domain.Transaction{
		ID:              uuid.NewString(),
		HouseholdID:     householdID,
		PeriodID:        req.PeriodID,
		TransactionDate: domain.DateOf(time.Now()),
		Type:            domain.TypeCredit,
		Amount:          req.Amount,
		Description:     req.Description,
	}

	created, err := s.transactions.CreateTransaction(ctx, tx)
	if err != nil {
		s.metrics.IncrStoreError("transactions")
		return nil, err
	}

	s.metrics.RecordPayment(string(p.Role), created.Amount)
	s.summaryCache.Delete(summaryCacheKey)
	s.logger.Info("payment recorded",
		zap.String("transaction_id", created.ID),
		zap.String("household_id", householdID),
		zap.Int64("amount", created.Amount),
		zap.String("by", p.UserID))
	return created, nil
}

// History lists ledger rows matching the filter, newest first.
func (s *PaymentService) History(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.History")
	defer span.End()

	return s.transactions.ListAllTransactions(ctx, filter)
}

// UpdateTransaction corrects a ledger row. Admin only.
func (s *PaymentService) UpdateTransaction(ctx context.Context, p domain.Principal, id string, req domain.UpdateTransactionRequest) (*domain.Transaction, error) {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.UpdateTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", id))

	if !p.IsAdmin() {
		return nil, &domain.ErrForbidden{Action: "update transaction"}
	}

	updates := map[string]any{}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
		}
		updates["amount"] = *req.Amount
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.TransactionDate != nil {
		d, err := domain.ParseDate("transaction_date", *req.TransactionDate)
		if err != nil {
			return nil, err
		}
		updates["transaction_date"] = d.Format(domain.DateLayout)
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	updated, err := s.transactions.UpdateTransaction(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	s.summaryCache.Delete(summaryCacheKey)
	s.logger.Warn("ledger row corrected",
		zap.String("transaction_id", id),
		zap.String("by", p.UserID))
	return updated, nil
}

// DeleteTransaction removes a ledger row. Admin only.
func (s *PaymentService) DeleteTransaction(ctx context.Context, p domain.Principal, id string) error {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.DeleteTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", id))

	if !p.IsAdmin() {
		return &domain.ErrForbidden{Action: "delete transaction"}
	}

	if err := s.transactions.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.summaryCache.Delete(summaryCacheKey)
	s.logger.Warn("ledger row deleted",
		zap.String("transaction_id", id),
		zap.String("by", p.UserID))
	return nil
}
