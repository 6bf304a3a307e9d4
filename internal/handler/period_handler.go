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
// Periode — collection period CRUD + reports
// ============================================================

func listPeriodsHandler(svc *service.PeriodService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/periods")
		defer span.End()

		periods, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, periods)
	}
}

func getPeriodHandler(svc *service.PeriodService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/periods/{periodId}")
		defer span.End()

		period, err := svc.Get(ctx, chi.URLParam(r, "periodId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, period)
	}
}

func createPeriodHandler(svc *service.PeriodService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/periods")
		defer span.End()

		var req domain.CreatePeriodRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		span.SetAttributes(attribute.Int("period.month", req.Month), attribute.Int("period.year", req.Year))

		period, err := svc.Create(ctx, PrincipalFromContext(ctx), req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, period)
	}
}

func updatePeriodHandler(svc *service.PeriodService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/periods/{periodId}")
		defer span.End()

		var req domain.UpdatePeriodRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		period, err := svc.Update(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "periodId"), req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, period)
	}
}

func deletePeriodHandler(svc *service.PeriodService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/periods/{periodId}")
		defer span.End()

		if err := svc.Delete(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "periodId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type periodReportResponse struct {
	Period *domain.CollectionPeriod `json:"period"`
	Rows   []domain.PeriodReportRow `json:"rows"`
}

func periodReportHandler(svc *service.PeriodService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/periods/{periodId}/report")
		defer span.End()

		period, rows, err := svc.Report(ctx, chi.URLParam(r, "periodId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, periodReportResponse{Period: period, Rows: rows})
	}
}
