package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ekencleng/kencleng-api/internal/domain"
	"github.com/ekencleng/kencleng-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Pembayaran — payments and ledger history
// ============================================================

func recordPaymentHandler(svc *service.PaymentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/households/{householdId}/payments")
		defer span.End()

		householdID := chi.URLParam(r, "householdId")
		span.SetAttributes(attribute.String("household.id", householdID))

		var req domain.RecordPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		tx, err := svc.RecordPayment(ctx, PrincipalFromContext(ctx), householdID, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	}
}

func householdTransactionsHandler(svc *service.PaymentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/households/{householdId}/transactions")
		defer span.End()

		filter, err := filterFromQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		filter.HouseholdID = chi.URLParam(r, "householdId")

		txs, err := svc.History(ctx, filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, txs)
	}
}

func listTransactionsHandler(svc *service.PaymentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions")
		defer span.End()

		filter, err := filterFromQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		txs, err := svc.History(ctx, filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, txs)
	}
}

func updateTransactionHandler(svc *service.PaymentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/transactions/{transactionId}")
		defer span.End()

		var req domain.UpdateTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		tx, err := svc.UpdateTransaction(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "transactionId"), req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

func deleteTransactionHandler(svc *service.PaymentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/transactions/{transactionId}")
		defer span.End()

		if err := svc.DeleteTransaction(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "transactionId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// filterFromQuery builds a transaction filter from query parameters.
func filterFromQuery(r *http.Request) (domain.TransactionFilter, error) {
	var filter domain.TransactionFilter
	q := r.URL.Query()

	filter.HouseholdID = q.Get("household_id")
	filter.PeriodID = q.Get("period_id")
	switch t := q.Get("type"); t {
	case "":
	case string(domain.TypeDebit), string(domain.TypeCredit):
		filter.Type = domain.TransactionType(t)
	default:
		return filter, &domain.ErrValidation{Field: "type", Message: "must be DEBIT or CREDIT"}
	}
	if v := q.Get("start_date"); v != "" {
		d, err := domain.ParseDate("start_date", v)
		if err != nil {
			return filter, err
		}
		filter.StartDate = d
	}
	if v := q.Get("end_date"); v != "" {
		d, err := domain.ParseDate("end_date", v)
		if err != nil {
			return filter, err
		}
		filter.EndDate = d
	}
	return filter, nil
}
