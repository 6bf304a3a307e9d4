package handler

import (
	"net/http"
	"time"

	"github.com/ekencleng/kencleng-api/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Cron — POST /v1/cron/daily-fee
// ============================================================

type cronResult struct {
	RowsInserted int    `json:"rows_inserted"`
	RunDate      string `json:"run_date"`
}

func cronDailyFeeHandler(svc *service.AccrualService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cron/daily-fee")
		defer span.End()

		now := time.Now()
		inserted, err := svc.Run(ctx, now)
		if err != nil {
			// Partial progress is preserved; the next run fills the rest.
			logger.Error("cron: accrual run failed",
				zap.Int("rows_inserted", inserted),
				zap.Error(err))
			handleServiceError(w, err, logger)
			return
		}

		span.SetAttributes(attribute.Int("accrual.rows", inserted))
		writeJSON(w, http.StatusOK, cronResult{
			RowsInserted: inserted,
			RunDate:      now.Format("2006-01-02"),
		})
	}
}
