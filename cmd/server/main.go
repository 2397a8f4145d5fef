package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/cooklang/cooklang-import/internal/api"
	"github.com/cooklang/cooklang-import/internal/cache"
	"github.com/cooklang/cooklang-import/internal/config"
	"github.com/cooklang/cooklang-import/internal/importer"
	"github.com/cooklang/cooklang-import/internal/logger"
	"github.com/cooklang/cooklang-import/internal/metrics"
	"github.com/cooklang/cooklang-import/internal/sentry"
	"github.com/cooklang/cooklang-import/internal/telemetry"
	"github.com/cooklang/cooklang-import/internal/worker"
)

func main() {
	defer sentry.Recover()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireService(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.Env,
			cfg.OtelExporterOTLPEndpoint, telemetry.ParseHeaders(cfg.OtelExporterOTLPHeaders))
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName, cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	} else if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize business metrics
	if err := metrics.Init(); err != nil {
		slog.Warn("Failed to init business metrics", "error", err)
	}

	// Initialize logger with OTel support
	slog.SetDefault(logger.New(cfg.Env))

	asynqClient := worker.NewClient(cfg.RedisURL)
	defer asynqClient.Close()

	inspector := worker.NewInspector(cfg.RedisURL)
	defer inspector.Close()

	imp, closeCache, err := cache.Wrap(importer.New(cfg), cfg.RedisURL, cfg.ResultCacheTTL)
	if err != nil {
		log.Fatalf("Failed to create result cache: %v", err)
	}
	defer closeCache()

	apiServer := api.NewServer(cfg, imp, asynqClient, inspector)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(apiServer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting server", "port", cfg.Port, "env", cfg.Env)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
