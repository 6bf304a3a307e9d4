package handler

import (
	"net/http"

	"github.com/ekencleng/kencleng-api/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Dasbor — portfolio aggregates
// ============================================================

func dashboardSummaryHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard/summary")
		defer span.End()

		summary, err := svc.Summary(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func recentPaymentsHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard/recent-payments")
		defer span.End()

		txs, err := svc.RecentPayments(ctx, parseLimit(r, 10))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, txs)
	}
}

func topDebtorsHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard/top-debtors")
		defer span.End()

		debtors, err := svc.TopDebtors(ctx, parseLimit(r, 5))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, debtors)
	}
}
