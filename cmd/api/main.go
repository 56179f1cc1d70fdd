package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mapleime/doctor-portal/internal/api/router"
	"github.com/mapleime/doctor-portal/internal/appointments"
	appconfig "github.com/mapleime/doctor-portal/internal/config"
	"github.com/mapleime/doctor-portal/internal/geo"
	"github.com/mapleime/doctor-portal/internal/mapleime"
	"github.com/mapleime/doctor-portal/internal/observability/metrics"
	"github.com/mapleime/doctor-portal/internal/ops"
	"github.com/mapleime/doctor-portal/internal/prefs"
	"github.com/mapleime/doctor-portal/internal/settings"
	"github.com/mapleime/doctor-portal/pkg/logging"
)

func main() {
	// A .env file is optional; containers inject real env vars.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting doctor-portal API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.GraphQLURL == "" {
		logger.Error("MAIN_SERVER_GRAPHQL_URL is required")
		os.Exit(1)
	}
	if cfg.SessionJWTSecret == "" {
		logger.Error("SESSION_JWT_SECRET is required")
		os.Exit(1)
	}

	// Redis backs notices, the urgent badge cache, and display prefs.
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := redis.NewClient(redisOpts)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
		cancelPing()
		os.Exit(1)
	}
	cancelPing()

	if cfg.DefaultTimeZone != "" {
		appointments.DefaultTimeZone = cfg.DefaultTimeZone
	}

	// Metrics
	upstreamMetrics := metrics.NewUpstreamMetrics(prometheus.DefaultRegisterer)
	actionMetrics := metrics.NewActionMetrics(prometheus.DefaultRegisterer)

	// Upstream Mapleime client
	apiClient := mapleime.NewClient(cfg.GraphQLURL, cfg.GraphQLToken, logger,
		mapleime.WithHTTPClient(&http.Client{Timeout: cfg.GraphQLTimeout}),
		mapleime.WithMetrics(upstreamMetrics),
	)

	// Stores and services
	noticeStore := appointments.NewNoticeStore(rdb, cfg.NoticeTTL)
	urgentCache := appointments.NewUrgentCountCache(rdb, cfg.UrgentCacheTTL)
	prefsStore := prefs.NewStore(rdb)
	executor := appointments.NewExecutor(apiClient, noticeStore, urgentCache, actionMetrics, logger)
	geoClient := geo.NewClient(cfg.NominatimBaseURL, cfg.NominatimUserAgent, logger)

	// Handlers
	appointmentsHandler := appointments.NewHandler(apiClient, executor, noticeStore, urgentCache, cfg.GlobalPendingLimit, logger)
	prefsHandler := prefs.NewHandler(prefsStore, logger)
	settingsHandler := settings.NewHandler(apiClient, logger)
	geoHandler := geo.NewHandler(geoClient, logger)
	opsHandler := ops.NewHandler(prometheus.DefaultGatherer)

	// Setup router
	r := router.New(&router.Config{
		Logger:              logger,
		AppointmentsHandler: appointmentsHandler,
		PrefsHandler:        prefsHandler,
		SettingsHandler:     settingsHandler,
		GeoHandler:          geoHandler,
		OpsHandler:          opsHandler,
		MetricsHandler:      promhttp.Handler(),
		SessionJWTSecret:    cfg.SessionJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSec:     cfg.RateLimitPerSec,
		RateLimitBurst:      cfg.RateLimitBurst,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := rdb.Close(); err != nil {
		logger.Warn("redis close failed", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
