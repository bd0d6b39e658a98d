package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/ripplecare/event-therapy-platform/internal/api/router"
	"github.com/ripplecare/event-therapy-platform/internal/app/bootstrap"
	"github.com/ripplecare/event-therapy-platform/internal/availability"
	"github.com/ripplecare/event-therapy-platform/internal/bookings"
	appconfig "github.com/ripplecare/event-therapy-platform/internal/config"
	"github.com/ripplecare/event-therapy-platform/internal/fulfillment"
	"github.com/ripplecare/event-therapy-platform/internal/observability/metrics"
	"github.com/ripplecare/event-therapy-platform/internal/pricing"
	"github.com/ripplecare/event-therapy-platform/internal/quotes"
	"github.com/ripplecare/event-therapy-platform/internal/reports"
	"github.com/ripplecare/event-therapy-platform/internal/settings"
	"github.com/ripplecare/event-therapy-platform/internal/therapists"
	"github.com/ripplecare/event-therapy-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting event-therapy-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := bootstrap.BuildPgxPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	reportDB, err := bootstrap.BuildReportDB(cfg)
	if err != nil {
		logger.Error("failed to open reporting database", "error", err)
		os.Exit(1)
	}
	defer reportDB.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}

	registry := prometheus.NewRegistry()
	engineMetrics := metrics.NewEngineMetrics(registry)

	// Stores.
	quoteStore := quotes.NewStore(pool)
	roster := therapists.NewStore(pool)
	ledger := bookings.NewLedger(pool)
	settingsStore := settings.NewStore(pool)
	settingsCache := settings.NewCache(settingsStore, redisClient, cfg.SettingsCacheTTL, logger)
	ruleStore := pricing.NewRuleStore(pool)
	reportStore := reports.NewStore(reportDB)

	// Engine.
	buffer := time.Duration(cfg.BookingBufferMinutes) * time.Minute
	checker := availability.NewChecker(quoteStore, roster, ledger, settingsCache, buffer, engineMetrics, logger.Named("availability"))
	calculator := pricing.NewCalculator(ruleStore, settingsCache, cfg.TaxRatePercent, logger.Named("pricing"))

	splitMode := bookings.SplitByQuote
	if cfg.PriceSplitMode == "day" {
		splitMode = bookings.SplitByDay
	}
	materializer := bookings.NewMaterializer(ledger, splitMode, logger.Named("bookings"))
	workflow := fulfillment.NewService(pool, quoteStore, ledger, materializer, calculator, engineMetrics, logger.Named("fulfillment"))

	routerCfg := &router.Config{
		Logger:              logger,
		AvailabilityHandler: availability.NewHandler(checker, cfg.AlternateProbeDays, cfg.AlternateMaxResults, logger),
		FulfillmentHandler:  fulfillment.NewHandler(workflow, logger),
		PricingHandler:      pricing.NewHandler(quoteStore, calculator, logger),
		ReportsHandler:      reports.NewHandler(reportStore, logger),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSec:     cfg.RateLimitPerSecond,
		RateLimitBurst:      cfg.RateLimitBurst,
		ReadyCheck:          readyCheck(pool, redisClient),
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

type pinger interface {
	Ping(ctx context.Context) error
}

func readyCheck(pool pinger, redisClient *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return err
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return err
			}
		}
		return nil
	}
}
