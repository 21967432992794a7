// Package main provides the worker application entry point. The worker
// consumes ingest tasks from the queue and runs the full pipeline: fetch the
// document, extract text, reconcile fields, resolve location, enrich
// employers, and persist the cleaned record.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hiresight/resume-ingest/internal/adapter/ai"
	"github.com/hiresight/resume-ingest/internal/adapter/ai/openai"
	"github.com/hiresight/resume-ingest/internal/adapter/geocode"
	"github.com/hiresight/resume-ingest/internal/adapter/objectstore"
	"github.com/hiresight/resume-ingest/internal/adapter/observability"
	"github.com/hiresight/resume-ingest/internal/adapter/queue/redpanda"
	"github.com/hiresight/resume-ingest/internal/adapter/repo/postgres"
	"github.com/hiresight/resume-ingest/internal/adapter/textextractor/tika"
	"github.com/hiresight/resume-ingest/internal/clean"
	"github.com/hiresight/resume-ingest/internal/config"
	"github.com/hiresight/resume-ingest/internal/domain"
	"github.com/hiresight/resume-ingest/internal/enrich"
	"github.com/hiresight/resume-ingest/internal/extract"
	"github.com/hiresight/resume-ingest/internal/location"
	"github.com/hiresight/resume-ingest/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Expose job-queue and pipeline metrics on a dedicated endpoint so
	// Prometheus can scrape the worker process separately from the server.
	observability.InitMetrics()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":9090", mux); err != nil {
			slog.Error("worker metrics server error", slog.Any("error", err))
		}
	}()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	slog.Info("starting worker", slog.String("env", cfg.AppEnv))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("database connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer func() { _ = rdb.Close() }()

	jobRepo := postgres.NewJobRepo(pool)
	rawRepo := postgres.NewRawResumeRepo(pool)
	recordRepo := postgres.NewCleanedResumeRepo(pool)
	companyRepo := postgres.NewCompanyProfileRepo(pool)

	store, err := objectstore.NewMinioStore(ctx, cfg)
	if err != nil {
		slog.Error("object store init failed", slog.Any("error", err))
		os.Exit(1)
	}

	texts := tika.New(cfg.TikaURL)

	sections, err := extract.LoadSections(cfg.SectionConfigPath)
	if err != nil {
		slog.Error("section config load failed", slog.Any("error", err))
		os.Exit(1)
	}
	extractor := extract.New(sections)

	// Completion provider wrapped in a Redis read-through cache so identical
	// prompts across reprocessed documents hit the upstream API once.
	provider := ai.NewCachedProvider(openai.New(cfg), rdb, cfg.CompletionCacheTTL)
	completions := ai.NewCompletions(provider)

	cleaner := clean.New(completions, cfg.CleanMaxConcurrency)

	var geocoder domain.Geocoder
	if cfg.GeocoderBaseURL != "" {
		geocoder = geocode.New(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent)
	}
	resolver := location.NewResolver(completions, geocoder)

	enricher := enrich.New(completions, cfg.CleanMaxConcurrency)

	svc := usecase.NewProcessService(
		jobRepo, rawRepo, recordRepo, companyRepo,
		store, texts, extractor, cleaner, resolver, enricher,
	)

	consumer, err := redpanda.NewConsumer(
		cfg.KafkaBrokers,
		"resume-ingest-workers",
		cfg.ConsumerMaxConcurrency,
		svc.Process,
	)
	if err != nil {
		slog.Error("redpanda consumer init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer consumer.Close()

	slog.Info("worker consuming",
		slog.String("topic", redpanda.TopicIngest),
		slog.Int("max_concurrency", cfg.ConsumerMaxConcurrency))

	if err := consumer.Run(ctx); err != nil {
		slog.Error("consumer stopped", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("worker shut down")
}
