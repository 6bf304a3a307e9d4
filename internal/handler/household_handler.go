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
// Warga — household CRUD + balances
// ============================================================

func listHouseholdsHandler(svc *service.HouseholdService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/households")
		defer span.End()

		households, err := svc.ListWithBalances(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Int("households.count", len(households)))
		writeJSON(w, http.StatusOK, households)
	}
}

func getHouseholdHandler(svc *service.HouseholdService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/households/{householdId}")
		defer span.End()

		h, err := svc.GetWithBalance(ctx, chi.URLParam(r, "householdId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, h)
	}
}

func createHouseholdHandler(svc *service.HouseholdService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/households")
		defer span.End()

		var req domain.CreateHouseholdRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		h, err := svc.Create(ctx, PrincipalFromContext(ctx), req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, h)
	}
}

func updateHouseholdHandler(svc *service.HouseholdService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/households/{householdId}")
		defer span.End()

		var req domain.UpdateHouseholdRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		h, err := svc.Update(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "householdId"), req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, h)
	}
}

func deleteHouseholdHandler(svc *service.HouseholdService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/households/{householdId}")
		defer span.End()

		if err := svc.Delete(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "householdId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
