// Command dailyfee runs one daily fee accrual pass and exits. It exists
// for schedulers that prefer shelling out to a binary over hitting the
// HTTP cron endpoint.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/ekencleng/kencleng-api/internal/config"
	"github.com/ekencleng/kencleng-api/internal/infra/observability"
	"github.com/ekencleng/kencleng-api/internal/infra/resilience"
	"github.com/ekencleng/kencleng-api/internal/infra/supabase"
	"github.com/ekencleng/kencleng-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	_ = config.LoadDotEnv(".env")
	cfg := config.Load()

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	metrics := observability.NewMetrics()
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	store := supabase.NewClient(
		&http.Client{Timeout: cfg.HTTPTimeout},
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		resilience.NewCircuitBreaker("supabase"),
		resilienceCfg,
		logger,
	)

	accrualSvc := service.NewAccrualService(store, store, metrics, logger, cfg.MaxConcurrency)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	inserted, err := accrualSvc.Run(ctx, time.Now())
	if err != nil {
		logger.Error("accrual run failed",
			zap.Int("rows_inserted", inserted),
			zap.Error(err))
		os.Exit(1)
	}

	logger.Info("accrual run finished", zap.Int("rows_inserted", inserted))
}
