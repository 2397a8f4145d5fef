package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

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

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.RedisURL == "" {
		log.Fatalf("Invalid config: REDIS_URL is required")
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName+"-worker", cfg.ServiceVersion, cfg.Env,
			cfg.OtelExporterOTLPEndpoint, telemetry.ParseHeaders(cfg.OtelExporterOTLPHeaders))
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName+"-worker", cfg.ServiceVersion); err != nil {
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

	workerMetrics, err := worker.NewWorkerMetrics()
	if err != nil {
		slog.Warn("Failed to init worker metrics", "error", err)
	}

	imp, closeCache, err := cache.Wrap(importer.New(cfg), cfg.RedisURL, cfg.ResultCacheTTL)
	if err != nil {
		log.Fatalf("Failed to create result cache: %v", err)
	}
	defer closeCache()

	processor := worker.NewImportProcessor(
		imp,
		worker.NewCallbackNotifier(10*time.Second),
		workerMetrics,
	)

	srv := worker.NewServer(cfg.RedisURL, 10)
	mux := worker.NewServeMux(processor)

	slog.Info("Starting worker", "service", cfg.ServiceName)

	if err := srv.Start(mux); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down worker...")
	srv.Shutdown()
}
