// Package indexer orchestrates the batch indexing pipeline: corpus walk →
// tokenize → bounded in-memory accumulation → partial segment spills →
// k-way merge → offset table and corpus metadata artifacts.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Hydrohaven/cs121-A3/internal/corpus"
	"github.com/Hydrohaven/cs121-A3/internal/indexer/index"
	"github.com/Hydrohaven/cs121-A3/internal/indexer/merge"
	"github.com/Hydrohaven/cs121-A3/internal/indexer/offsets"
	"github.com/Hydrohaven/cs121-A3/internal/indexer/segment"
	"github.com/Hydrohaven/cs121-A3/internal/indexer/tokenizer"
	"github.com/Hydrohaven/cs121-A3/pkg/config"
	"github.com/Hydrohaven/cs121-A3/pkg/metrics"
)

// Artifact file names inside the index data directory. The offset table's
// byte offsets are only valid against the exact final index file written by
// the same run.
const (
	FinalIndexFile = "final_index.jsonl"
	OffsetsFile    = "final_index.offsets.json"
	MetaFile       = "corpus_meta.json"
)

// RunReport summarises one completed indexing run.
type RunReport struct {
	DocsIndexed    int
	DocsSkipped    int
	DuplicateDocs  int
	UniqueTerms    int
	TotalPostings  int
	Segments       int
	IndexSizeBytes int64
	Duration       time.Duration
}

// Pipeline is the one-shot batch indexing job. It is not designed to run
// concurrently with itself against the same data directory, nor with a
// searcher serving from the directory it is writing.
type Pipeline struct {
	cfg     config.IndexerConfig
	reader  *corpus.Reader
	acc     *index.Accumulator
	writer  *segment.Writer
	meta    *corpus.Meta
	metrics *metrics.Metrics
	logger  *slog.Logger
	flushes int
}

// New creates a Pipeline reading from reader and writing artifacts into
// cfg.DataDir. m may be nil when no metrics are exported.
func New(cfg config.IndexerConfig, reader *corpus.Reader, m *metrics.Metrics) (*Pipeline, error) {
	if err := os.MkdirAll(cfg.PartialPath(), 0755); err != nil {
		return nil, fmt.Errorf("creating index data directory: %w", err)
	}
	return &Pipeline{
		cfg:    cfg,
		reader: reader,
		acc:    index.NewAccumulator(),
		writer: segment.NewWriter(cfg.PartialPath()),
		meta: &corpus.Meta{
			Docs: make(map[int]corpus.DocInfo),
		},
		metrics: m,
		logger:  slog.Default().With("component", "indexer"),
	}, nil
}

// Run executes the whole pipeline and returns its report. Per-document
// failures are skipped inside the corpus reader; failures from the merge
// onward are fatal because they would corrupt the sole serving artifact.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{}

	stats, err := p.reader.Walk(ctx, func(doc corpus.Document) error {
		return p.indexDocument(doc)
	})
	if err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	report.DocsIndexed = stats.Yielded
	report.DocsSkipped = stats.Unreadable + stats.Empty
	report.DuplicateDocs = stats.Duplicates
	if p.metrics != nil {
		p.metrics.DocsSkippedTotal.WithLabelValues("unreadable").Add(float64(stats.Unreadable))
		p.metrics.DocsSkippedTotal.WithLabelValues("empty").Add(float64(stats.Empty))
		p.metrics.DocsSkippedTotal.WithLabelValues("duplicate").Add(float64(stats.Duplicates))
	}

	// Final flush: whatever is left below the threshold still has to land
	// in exactly one segment.
	if !p.acc.Empty() {
		if err := p.flush(); err != nil {
			return nil, err
		}
	}

	segmentPaths, err := segment.List(p.cfg.PartialPath())
	if err != nil {
		return nil, err
	}
	if len(segmentPaths) == 0 {
		return nil, fmt.Errorf("corpus produced no indexable documents under %s", p.reader.Root())
	}
	report.Segments = len(segmentPaths)

	mergeStart := time.Now()
	mergeStats, err := merge.Merge(segmentPaths, filepath.Join(p.cfg.DataDir, FinalIndexFile))
	if err != nil {
		return nil, fmt.Errorf("merging segments: %w", err)
	}
	if p.metrics != nil {
		p.metrics.MergeDuration.Observe(time.Since(mergeStart).Seconds())
		p.metrics.IndexTermsTotal.Set(float64(mergeStats.Terms))
		p.metrics.IndexSizeBytes.Set(float64(mergeStats.SizeBytes))
	}
	report.UniqueTerms = mergeStats.Terms
	report.TotalPostings = mergeStats.Postings
	report.IndexSizeBytes = mergeStats.SizeBytes

	table, err := offsets.Build(filepath.Join(p.cfg.DataDir, FinalIndexFile))
	if err != nil {
		return nil, fmt.Errorf("building offset table: %w", err)
	}
	if err := table.Save(filepath.Join(p.cfg.DataDir, OffsetsFile)); err != nil {
		return nil, err
	}

	p.meta.TotalDocs = len(p.meta.Docs)
	if err := p.meta.Save(filepath.Join(p.cfg.DataDir, MetaFile)); err != nil {
		return nil, err
	}

	if !p.cfg.KeepPartials {
		if err := os.RemoveAll(p.cfg.PartialPath()); err != nil {
			p.logger.Warn("failed to remove partial segments", "error", err)
		}
	}

	report.Duration = time.Since(start)
	p.logger.Info("indexing run complete",
		"docs_indexed", report.DocsIndexed,
		"docs_skipped", report.DocsSkipped,
		"duplicates", report.DuplicateDocs,
		"unique_terms", report.UniqueTerms,
		"postings", report.TotalPostings,
		"segments", report.Segments,
		"index_size_bytes", report.IndexSizeBytes,
		"duration", report.Duration,
	)
	return report, nil
}

// indexDocument tokenizes one document into the accumulator and records its
// metadata, spilling a partial segment when the memory threshold is crossed.
func (p *Pipeline) indexDocument(doc corpus.Document) error {
	tokens := tokenizer.Tokenize(doc.Text)
	for _, tok := range tokens {
		p.acc.Add(doc.ID, tok.Term)
	}
	p.meta.Docs[doc.ID] = corpus.DocInfo{
		URL:    doc.URL,
		Length: len(tokens),
		Path:   doc.Path,
	}
	p.meta.TotalLen += int64(len(tokens))
	if p.metrics != nil {
		p.metrics.DocsIndexedTotal.Inc()
	}

	// Crossing the threshold is the expected spill trigger, not a failure.
	if p.acc.Size() >= p.cfg.MemoryThreshold {
		return p.flush()
	}
	return nil
}

// flush spills the accumulator as one sorted partial segment and resets it.
func (p *Pipeline) flush() error {
	snapshot := p.acc.Snapshot()
	if len(snapshot) == 0 {
		return nil
	}
	p.flushes++
	path, err := p.writer.Write(p.flushes, snapshot)
	if err != nil {
		if p.metrics != nil {
			p.metrics.SegmentFlushesTotal.WithLabelValues("error").Inc()
		}
		return fmt.Errorf("writing partial segment: %w", err)
	}
	p.logger.Info("partial segment flushed",
		"segment", filepath.Base(path),
		"terms", p.acc.TermCount(),
		"docs", p.acc.DocCount(),
		"approx_bytes", p.acc.Size(),
	)
	if p.metrics != nil {
		p.metrics.SegmentFlushesTotal.WithLabelValues("ok").Inc()
	}
	p.acc.Reset()
	return nil
}
