package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func feed(t *testing.T, agg *Aggregator, event any) {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	if err := HandleEvent(agg)(context.Background(), []byte("analytics"), data); err != nil {
		t.Fatalf("HandleEvent error: %v", err)
	}
}

func searchEvent(query string, hits int, latency int64, cacheHit bool) SearchEvent {
	return SearchEvent{
		Type:      EventSearch,
		Query:     query,
		TotalHits: hits,
		LatencyMs: latency,
		CacheHit:  cacheHit,
		Timestamp: time.Now().UTC(),
	}
}

func TestAggregatorCountsSearches(t *testing.T) {
	agg := NewAggregator(nil)
	feed(t, agg, searchEvent("fox", 3, 10, false))
	feed(t, agg, searchEvent("fox", 3, 5, true))
	feed(t, agg, searchEvent("xylophone", 0, 2, false))

	stats := agg.Stats()
	if stats.TotalSearches != 3 {
		t.Errorf("TotalSearches = %d, want 3", stats.TotalSearches)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("cache counters = %d/%d, want 1/2", stats.CacheHits, stats.CacheMisses)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("ZeroResultCount = %d, want 1", stats.ZeroResultCount)
	}
	if len(stats.ZeroResultQueries) != 1 || stats.ZeroResultQueries[0].Query != "xylophone" {
		t.Errorf("ZeroResultQueries = %v", stats.ZeroResultQueries)
	}
}

func TestAggregatorTopQueries(t *testing.T) {
	agg := NewAggregator(nil)
	for i := 0; i < 5; i++ {
		feed(t, agg, searchEvent("popular", 1, 1, false))
	}
	feed(t, agg, searchEvent("rare", 1, 1, false))

	stats := agg.Stats()
	if len(stats.TopQueries) == 0 || stats.TopQueries[0].Query != "popular" || stats.TopQueries[0].Count != 5 {
		t.Errorf("TopQueries = %v", stats.TopQueries)
	}
}

func TestAggregatorLatencyPercentiles(t *testing.T) {
	agg := NewAggregator(nil)
	for i := int64(1); i <= 100; i++ {
		feed(t, agg, searchEvent("q", 1, i, false))
	}
	stats := agg.Stats()
	if stats.P50LatencyMs < 45 || stats.P50LatencyMs > 55 {
		t.Errorf("P50 = %d, want ~50", stats.P50LatencyMs)
	}
	if stats.P95LatencyMs < 90 || stats.P99LatencyMs < stats.P95LatencyMs {
		t.Errorf("P95 = %d, P99 = %d", stats.P95LatencyMs, stats.P99LatencyMs)
	}
	if stats.AvgLatencyMs < 50 || stats.AvgLatencyMs > 51 {
		t.Errorf("AvgLatencyMs = %v, want 50.5", stats.AvgLatencyMs)
	}
}

func TestAggregatorIndexRunEvents(t *testing.T) {
	agg := NewAggregator(nil)
	feed(t, agg, IndexRunEvent{
		Type:        EventIndexRun,
		DocsIndexed: 1200,
		UniqueTerms: 45000,
		Timestamp:   time.Now().UTC(),
	})
	feed(t, agg, IndexRunEvent{
		Type:        EventIndexRun,
		DocsIndexed: 300,
		Timestamp:   time.Now().UTC(),
	})

	stats := agg.Stats()
	if stats.IndexRuns != 2 {
		t.Errorf("IndexRuns = %d, want 2", stats.IndexRuns)
	}
	if stats.DocsIndexed != 1500 {
		t.Errorf("DocsIndexed = %d, want 1500", stats.DocsIndexed)
	}
	if stats.TotalSearches != 0 {
		t.Errorf("index run events counted as searches: %d", stats.TotalSearches)
	}
}

func TestAggregatorIgnoresGarbage(t *testing.T) {
	agg := NewAggregator(nil)
	if err := HandleEvent(agg)(context.Background(), nil, []byte("not json")); err != nil {
		t.Errorf("garbage event should be skipped, not retried: %v", err)
	}
	if stats := agg.Stats(); stats.TotalSearches != 0 || stats.IndexRuns != 0 {
		t.Errorf("garbage event was counted: %+v", stats)
	}
}
