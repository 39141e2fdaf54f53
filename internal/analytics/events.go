// Package analytics collects search and indexing events, publishes them to
// Kafka, and aggregates them into queryable stats.
package analytics

import "time"

type EventType string

const (
	EventSearch     EventType = "search"
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
	EventIndexRun   EventType = "index_run"
	EventZeroResult EventType = "zero_result"
)

// SearchEvent records one executed query.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Terms     []string  `json:"terms"`
	TotalHits int       `json:"total_hits"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// IndexRunEvent records one completed indexing run.
type IndexRunEvent struct {
	Type          EventType `json:"type"`
	DocsIndexed   int       `json:"docs_indexed"`
	DocsSkipped   int       `json:"docs_skipped"`
	DuplicateDocs int       `json:"duplicate_docs"`
	UniqueTerms   int       `json:"unique_terms"`
	TotalPostings int       `json:"total_postings"`
	Segments      int       `json:"segments"`
	SizeBytes     int64     `json:"size_bytes"`
	DurationMs    int64     `json:"duration_ms"`
	Timestamp     time.Time `json:"timestamp"`
}
