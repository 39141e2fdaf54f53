// Package executor runs query plans against the loaded index: offset-table
// lookups, boolean combination, TF-IDF ranking, and snippet extraction.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Hydrohaven/cs121-A3/internal/corpus"
	"github.com/Hydrohaven/cs121-A3/internal/indexer/index"
	"github.com/Hydrohaven/cs121-A3/internal/searcher/parser"
	"github.com/Hydrohaven/cs121-A3/internal/searcher/ranker"
	"github.com/Hydrohaven/cs121-A3/internal/searcher/snippet"
	"github.com/Hydrohaven/cs121-A3/internal/searcher/store"
)

// Hit is one ranked search result.
type Hit struct {
	Rank    int     `json:"rank"`
	Doc     int     `json:"doc"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet,omitempty"`
}

// SearchResult is the executor's answer to one query.
type SearchResult struct {
	Query     string         `json:"query"`
	TotalHits int            `json:"total_hits"`
	Results   []Hit          `json:"results"`
	TermStats map[string]int `json:"term_stats,omitempty"`
	ElapsedMs float64        `json:"elapsed_ms"`
}

// Executor answers queries against one immutable Store.
type Executor struct {
	store    *store.Store
	snippets *snippet.Extractor
	logger   *slog.Logger
}

// New creates an Executor over the given store. ext may be nil to disable
// snippet extraction.
func New(st *store.Store, ext *snippet.Extractor) *Executor {
	return &Executor{
		store:    st,
		snippets: ext,
		logger:   slog.Default().With("component", "query-executor"),
	}
}

// Execute runs one query plan and returns at most limit ranked results.
// Terms missing from the index contribute zero postings; a query whose terms
// all miss returns an empty result set, not an error.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	start := time.Now()
	result := &SearchResult{
		Query:     plan.RawQuery,
		Results:   []Hit{},
		TermStats: make(map[string]int),
	}
	if len(plan.Terms) == 0 {
		result.ElapsedMs = elapsedMs(start)
		return result, nil
	}

	postingsPerTerm := make(map[string]ranker.TermPostings, len(plan.Terms))
	for _, term := range plan.Terms {
		if _, seen := postingsPerTerm[term]; seen {
			continue
		}
		postings, docFreq, err := e.store.Postings(term)
		if err != nil {
			return nil, fmt.Errorf("looking up term %q: %w", term, err)
		}
		if docFreq > 0 {
			postingsPerTerm[term] = ranker.TermPostings{DocFreq: docFreq, Postings: postings}
			result.TermStats[term] = docFreq
		}
	}

	excluded := make(map[int]struct{})
	for _, term := range plan.ExcludeTerms {
		postings, _, err := e.store.Postings(term)
		if err != nil {
			return nil, fmt.Errorf("looking up excluded term %q: %w", term, err)
		}
		for _, p := range postings {
			excluded[p.Doc] = struct{}{}
		}
	}

	var candidates map[int]struct{}
	switch plan.Type {
	case parser.QueryAND:
		// AND requires every query term to be present in the index at all.
		if len(postingsPerTerm) < distinct(plan.Terms) {
			result.ElapsedMs = elapsedMs(start)
			return result, nil
		}
		candidates = intersect(postingsPerTerm)
	case parser.QueryOR:
		candidates = union(postingsPerTerm)
	}
	for doc := range excluded {
		delete(candidates, doc)
	}

	filtered := make(map[string]ranker.TermPostings, len(postingsPerTerm))
	for term, tp := range postingsPerTerm {
		kept := make(index.PostingList, 0, len(tp.Postings))
		for _, p := range tp.Postings {
			if _, ok := candidates[p.Doc]; ok {
				kept = append(kept, p)
			}
		}
		if len(kept) > 0 {
			filtered[term] = ranker.TermPostings{DocFreq: tp.DocFreq, Postings: kept}
		}
	}

	meta := e.store.Meta()
	ranked := ranker.Rank(filtered, ranker.Params{
		TotalDocs: meta.TotalDocs,
		DocLength: func(doc int) int { return meta.Docs[doc].Length },
	}, limit)

	result.TotalHits = len(candidates)
	result.Results = e.buildHits(ranked, plan.Terms, meta)
	result.ElapsedMs = elapsedMs(start)

	e.logger.Debug("query executed",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"candidates", len(candidates),
		"returned", len(result.Results),
		"elapsed_ms", result.ElapsedMs,
	)
	return result, nil
}

// buildHits resolves URLs and snippets for the ranked documents.
func (e *Executor) buildHits(ranked []ranker.ScoredDoc, terms []string, meta *corpus.Meta) []Hit {
	hits := make([]Hit, 0, len(ranked))
	for i, sd := range ranked {
		info := meta.Docs[sd.Doc]
		hit := Hit{
			Rank:  i + 1,
			Doc:   sd.Doc,
			URL:   info.URL,
			Score: sd.Score,
		}
		if e.snippets != nil && info.Path != "" {
			text, err := corpus.LoadText(info.Path)
			if err != nil {
				e.logger.Warn("snippet source unavailable", "doc", sd.Doc, "path", info.Path, "error", err)
			} else {
				hit.Snippet = e.snippets.Extract(text, terms)
			}
		}
		hits = append(hits, hit)
	}
	return hits
}

func intersect(postingsPerTerm map[string]ranker.TermPostings) map[int]struct{} {
	if len(postingsPerTerm) == 0 {
		return make(map[int]struct{})
	}
	var shortest string
	shortestLen := int(^uint(0) >> 1)
	for term, tp := range postingsPerTerm {
		if len(tp.Postings) < shortestLen {
			shortestLen = len(tp.Postings)
			shortest = term
		}
	}
	candidates := make(map[int]struct{}, shortestLen)
	for _, p := range postingsPerTerm[shortest].Postings {
		candidates[p.Doc] = struct{}{}
	}
	for term, tp := range postingsPerTerm {
		if term == shortest {
			continue
		}
		docSet := make(map[int]struct{}, len(tp.Postings))
		for _, p := range tp.Postings {
			docSet[p.Doc] = struct{}{}
		}
		for doc := range candidates {
			if _, ok := docSet[doc]; !ok {
				delete(candidates, doc)
			}
		}
	}
	return candidates
}

func union(postingsPerTerm map[string]ranker.TermPostings) map[int]struct{} {
	result := make(map[int]struct{})
	for _, tp := range postingsPerTerm {
		for _, p := range tp.Postings {
			result[p.Doc] = struct{}{}
		}
	}
	return result
}

func distinct(terms []string) int {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return len(set)
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
