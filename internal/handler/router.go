package handler

import (
	"net/http"
	"time"

	"github.com/ekencleng/kencleng-api/internal/infra/observability"
	"github.com/ekencleng/kencleng-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router needs.
type Services struct {
	Households *service.HouseholdService
	Payments   *service.PaymentService
	Periods    *service.PeriodService
	Dashboard  *service.DashboardService
	Accrual    *service.AccrualService
	Auth       *service.AuthService
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, metrics *observability.Metrics, cronSecret string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLoggerMiddleware(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Periods, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Autentikasi
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
			r.Post("/refresh", authRefreshHandler(svcs.Auth, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Auth, logger))
				r.Post("/logout", authLogoutHandler(svcs.Auth, logger))
			})
		})

		// =============================================
		// Cron — machine-triggered daily fee accrual
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(CronSecretMiddleware(cronSecret, logger))
			r.Post("/cron/daily-fee", cronDailyFeeHandler(svcs.Accrual, logger))
		})

		// =============================================
		// Protected application routes
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// Warga (households)
			r.Get("/households", listHouseholdsHandler(svcs.Households, logger))
			r.Post("/households", createHouseholdHandler(svcs.Households, logger))
			r.Get("/households/{householdId}", getHouseholdHandler(svcs.Households, logger))
			r.Put("/households/{householdId}", updateHouseholdHandler(svcs.Households, logger))
			r.Delete("/households/{householdId}", deleteHouseholdHandler(svcs.Households, logger))
			r.Get("/households/{householdId}/transactions", householdTransactionsHandler(svcs.Payments, logger))
			r.Post("/households/{householdId}/payments", recordPaymentHandler(svcs.Payments, logger))

			// Periode kolekte (collection periods)
			r.Get("/periods", listPeriodsHandler(svcs.Periods, logger))
			r.Post("/periods", createPeriodHandler(svcs.Periods, logger))
			r.Get("/periods/{periodId}", getPeriodHandler(svcs.Periods, logger))
			r.Put("/periods/{periodId}", updatePeriodHandler(svcs.Periods, logger))
			r.Delete("/periods/{periodId}", deletePeriodHandler(svcs.Periods, logger))
			r.Get("/periods/{periodId}/report", periodReportHandler(svcs.Periods, logger))
			r.Get("/periods/{periodId}/report/export", periodReportExportHandler(svcs.Periods, logger))

			// Dasbor
			r.Get("/dashboard/summary", dashboardSummaryHandler(svcs.Dashboard, logger))
			r.Get("/dashboard/recent-payments", recentPaymentsHandler(svcs.Dashboard, logger))
			r.Get("/dashboard/top-debtors", topDebtorsHandler(svcs.Dashboard, logger))

			// Ledger history + admin overrides
			r.Get("/transactions", listTransactionsHandler(svcs.Payments, logger))
			r.Put("/transactions/{transactionId}", updateTransactionHandler(svcs.Payments, logger))
			r.Delete("/transactions/{transactionId}", deleteTransactionHandler(svcs.Payments, logger))

			// Ops metrics snapshot
			r.Get("/metrics/ops", opsMetricsHandler(metrics, logger))
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(periods *service.PeriodService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := withTimeout(r, 3*time.Second)
		defer cancel()

		status := "ok"
		code := http.StatusOK
		if _, err := periods.List(ctx); err != nil {
			logger.Warn("healthz: store unreachable", zap.Error(err))
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]string{"status": status})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func opsMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetOpsSnapshot())
	}
}
