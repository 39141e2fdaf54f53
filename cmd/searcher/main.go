package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hydrohaven/cs121-A3/internal/analytics"
	"github.com/Hydrohaven/cs121-A3/internal/searcher/cache"
	"github.com/Hydrohaven/cs121-A3/internal/searcher/executor"
	"github.com/Hydrohaven/cs121-A3/internal/searcher/handler"
	"github.com/Hydrohaven/cs121-A3/internal/searcher/snippet"
	"github.com/Hydrohaven/cs121-A3/internal/searcher/store"
	"github.com/Hydrohaven/cs121-A3/pkg/config"
	"github.com/Hydrohaven/cs121-A3/pkg/health"
	"github.com/Hydrohaven/cs121-A3/pkg/kafka"
	"github.com/Hydrohaven/cs121-A3/pkg/logger"
	"github.com/Hydrohaven/cs121-A3/pkg/metrics"
	"github.com/Hydrohaven/cs121-A3/pkg/middleware"
	"github.com/Hydrohaven/cs121-A3/pkg/postgres"
	pkgredis "github.com/Hydrohaven/cs121-A3/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "data_dir", cfg.Indexer.DataDir)

	// The whole offset table and corpus metadata load up front; a missing
	// index is fatal, run the indexer first.
	st, err := store.Open(cfg.Indexer.DataDir)
	if err != nil {
		slog.Error("failed to open index", "data_dir", cfg.Indexer.DataDir, "error", err)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("index loaded",
		"terms", st.TermCount(),
		"docs", st.Meta().TotalDocs,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		m.IndexTermsTotal.Set(float64(st.TermCount()))
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	var queryCache *cache.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	var collector *analytics.Collector
	var aggregator *analytics.Aggregator
	var analyticsH *analytics.Handler
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topic)
		defer producer.Close()
		collector = analytics.NewCollector(producer, cfg.Analytics.BufferSize)
		collector.Start(ctx)
		defer collector.Close()

		aggregator = analytics.NewAggregator(nil)
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topic, analytics.HandleEvent(aggregator))
		aggregator.SetConsumer(consumer)
		analyticsH = analytics.NewHandler(aggregator)
		go func() {
			if err := aggregator.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("analytics aggregator error", "error", err)
			}
		}()
		slog.Info("analytics pipeline started", "topic", cfg.Kafka.Topic)

		if cfg.Postgres.Enabled {
			db, err := postgres.New(cfg.Postgres)
			if err != nil {
				slog.Warn("postgres unavailable, snapshots disabled", "error", err)
			} else {
				defer db.Close()
				snapStore := analytics.NewStore(db)
				snapStore.StartPeriodicSave(ctx, aggregator, cfg.Analytics.SnapshotInterval)
			}
		}
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if st.TermCount() > 0 {
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d terms loaded", st.TermCount()),
			}
		}
		return health.ComponentHealth{Status: health.StatusDown, Message: "index empty"}
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

	ext := snippet.New(cfg.Search.SnippetRadius, cfg.Search.SnippetMaxLen)
	exec := executor.New(st, ext)
	h := handler.New(exec, queryCache, collector, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
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

	server := &http.Server{
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
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}
