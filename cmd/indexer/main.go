package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hydrohaven/cs121-A3/internal/analytics"
	"github.com/Hydrohaven/cs121-A3/internal/corpus"
	"github.com/Hydrohaven/cs121-A3/internal/indexer"
	"github.com/Hydrohaven/cs121-A3/pkg/config"
	"github.com/Hydrohaven/cs121-A3/pkg/kafka"
	"github.com/Hydrohaven/cs121-A3/pkg/logger"
	"github.com/Hydrohaven/cs121-A3/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	corpusRoot := flag.String("corpus", "", "corpus root directory (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *corpusRoot != "" {
		cfg.Corpus.RootDir = *corpusRoot
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexing run",
		"corpus", cfg.Corpus.RootDir,
		"data_dir", cfg.Indexer.DataDir,
		"memory_threshold", cfg.Indexer.MemoryThreshold,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	reader := corpus.NewReader(cfg.Corpus.RootDir)
	pipeline, err := indexer.New(cfg.Indexer, reader, m)
	if err != nil {
		slog.Error("failed to create indexing pipeline", "error", err)
		os.Exit(1)
	}

	report, err := pipeline.Run(ctx)
	if err != nil {
		slog.Error("indexing run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("indexing run complete",
		"docs_indexed", report.DocsIndexed,
		"unique_terms", report.UniqueTerms,
		"total_postings", report.TotalPostings,
		"segments", report.Segments,
		"index_size_bytes", report.IndexSizeBytes,
		"duration", report.Duration,
	)

	if cfg.Indexer.PublishRunReport && cfg.Kafka.Enabled {
		publishRunReport(cfg, report)
	}
}

// publishRunReport sends the run summary to the analytics topic so the
// aggregator picks up corpus growth between runs. Best-effort.
func publishRunReport(cfg *config.Config, report *indexer.RunReport) {
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topic)
	defer producer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event := analytics.IndexRunEvent{
		Type:          analytics.EventIndexRun,
		DocsIndexed:   report.DocsIndexed,
		DocsSkipped:   report.DocsSkipped,
		DuplicateDocs: report.DuplicateDocs,
		UniqueTerms:   report.UniqueTerms,
		TotalPostings: report.TotalPostings,
		Segments:      report.Segments,
		SizeBytes:     report.IndexSizeBytes,
		DurationMs:    report.Duration.Milliseconds(),
		Timestamp:     time.Now().UTC(),
	}
	if err := producer.Publish(ctx, kafka.Event{Key: "analytics", Value: event}); err != nil {
		slog.Warn("failed to publish run report", "error", err)
		return
	}
	slog.Info("run report published", "topic", cfg.Kafka.Topic)
}
