package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/docwell/docsearch/internal/analytics"
	"github.com/docwell/docsearch/internal/engine"
	"github.com/docwell/docsearch/internal/index"
	"github.com/docwell/docsearch/internal/ingest"
	"github.com/docwell/docsearch/internal/searchcache"
	"github.com/docwell/docsearch/internal/server"
	"github.com/docwell/docsearch/pkg/config"
	"github.com/docwell/docsearch/pkg/health"
	"github.com/docwell/docsearch/pkg/kafka"
	"github.com/docwell/docsearch/pkg/logger"
	"github.com/docwell/docsearch/pkg/metrics"
	"github.com/docwell/docsearch/pkg/middleware"
	"github.com/docwell/docsearch/pkg/postgres"
	pkgredis "github.com/docwell/docsearch/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/docsearch.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting docsearch service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(index.New())
	if cfg.Engine.LoadOnStart {
		if err := eng.LoadSnapshot(cfg.Engine.SnapshotPath); err != nil {
			slog.Warn("no snapshot loaded, starting with empty index",
				"path", cfg.Engine.SnapshotPath,
				"error", err,
			)
		}
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	var queryCache *searchcache.Cache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = searchcache.New(redisClient, cfg.Redis)
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	var collector *analytics.Collector
	var analyticsH *analytics.Handler
	if cfg.Analytics.Enabled && cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer producer.Close()
		collector = analytics.NewCollector(producer, cfg.Analytics.BufferSize)
		collector.Start(ctx)
		defer collector.Close()

		aggregator := analytics.NewAggregator()
		eventConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(aggregator))
		analyticsH = analytics.NewHandler(aggregator)
		go func() {
			if err := eventConsumer.Start(ctx); err != nil {
				slog.Error("analytics consumer error", "error", err)
			}
		}()

		if cfg.Postgres.Enabled {
			pg, err := postgres.New(cfg.Postgres)
			if err != nil {
				slog.Warn("postgres unavailable, analytics snapshots disabled", "error", err)
			} else {
				defer pg.Close()
				store := analytics.NewStore(pg)
				store.StartPeriodicSave(ctx, aggregator, cfg.Analytics.SnapshotInterval)
			}
		}
		slog.Info("analytics pipeline started", "topic", cfg.Kafka.Topics.AnalyticsEvents)
	}

	if cfg.Kafka.Enabled {
		ingestConsumer := ingest.NewConsumer(
			kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest, ingest.HandleMessage(eng)),
		)
		go func() {
			if err := ingestConsumer.Start(ctx); err != nil {
				slog.Error("ingest consumer error", "error", err)
			}
		}()
		slog.Info("document ingest consumer started", "topic", cfg.Kafka.Topics.DocumentIngest)
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		stats := eng.Statistics()
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents indexed", stats.TotalDocuments),
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := server.New(eng, queryCache, collector, m, cfg.Engine.SnapshotPath)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/documents", h.IndexDocuments)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", h.RemoveDocument)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("POST /api/v1/snapshot/save", h.SnapshotSave)
	mux.HandleFunc("POST /api/v1/snapshot/load", h.SnapshotLoad)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	if analyticsH != nil {
		mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	}
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("docsearch service listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("docsearch service stopped")
}
