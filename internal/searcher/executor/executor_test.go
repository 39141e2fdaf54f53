package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Hydrohaven/cs121-A3/internal/corpus"
	"github.com/Hydrohaven/cs121-A3/internal/indexer"
	"github.com/Hydrohaven/cs121-A3/internal/searcher/parser"
	"github.com/Hydrohaven/cs121-A3/internal/searcher/snippet"
	"github.com/Hydrohaven/cs121-A3/internal/searcher/store"
	"github.com/Hydrohaven/cs121-A3/pkg/config"
)

// buildIndex runs the real indexing pipeline over an in-test corpus and
// returns an opened store for it.
func buildIndex(t *testing.T, pages map[string]string) *store.Store {
	t.Helper()
	root := t.TempDir()
	i := 0
	for url, body := range pages {
		data, err := json.Marshal(map[string]string{
			"url":      url,
			"content":  "<html><body>" + body + "</body></html>",
			"encoding": "utf-8",
		})
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(root, fmt.Sprintf("p%03d.json", i)), data, 0644); err != nil {
			t.Fatal(err)
		}
		i++
	}

	dataDir := t.TempDir()
	cfg := config.IndexerConfig{DataDir: dataDir, MemoryThreshold: 64 * 1024 * 1024}
	p, err := indexer.New(cfg, corpus.NewReader(root), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("indexing run failed: %v", err)
	}

	st, err := store.Open(dataDir)
	if err != nil {
		t.Fatalf("opening index: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func urlsOf(result *SearchResult) []string {
	urls := make([]string, len(result.Results))
	for i, hit := range result.Results {
		urls[i] = hit.URL
	}
	return urls
}

func TestExecuteANDRequiresAllTerms(t *testing.T) {
	st := buildIndex(t, map[string]string{
		"https://example.edu/both":  "quick brown fox jumping quickly over fences",
		"https://example.edu/fox":   "fox dens found near campus buildings",
		"https://example.edu/quick": "quick reference guide chapters",
	})
	exec := New(st, nil)

	result, err := exec.Execute(context.Background(), parser.Parse("quick fox"), 10)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if result.TotalHits != 1 {
		t.Errorf("TotalHits = %d, want 1", result.TotalHits)
	}
	if got := urlsOf(result); len(got) != 1 || got[0] != "https://example.edu/both" {
		t.Errorf("AND query returned %v", got)
	}
}

func TestExecuteORUnionsTerms(t *testing.T) {
	st := buildIndex(t, map[string]string{
		"https://example.edu/both":  "quick brown fox",
		"https://example.edu/fox":   "fox dens everywhere",
		"https://example.edu/quick": "quick reference guide",
		"https://example.edu/none":  "entirely unrelated material",
	})
	exec := New(st, nil)

	result, err := exec.Execute(context.Background(), parser.Parse("quick OR fox"), 10)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if result.TotalHits != 3 {
		t.Errorf("TotalHits = %d, want 3", result.TotalHits)
	}
}

func TestExecuteNOTExcludes(t *testing.T) {
	st := buildIndex(t, map[string]string{
		"https://example.edu/keep": "fox habitats studied extensively",
		"https://example.edu/drop": "fox hunting season regulations",
	})
	exec := New(st, nil)

	result, err := exec.Execute(context.Background(), parser.Parse("fox NOT hunting"), 10)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got := urlsOf(result); len(got) != 1 || got[0] != "https://example.edu/keep" {
		t.Errorf("NOT query returned %v", got)
	}
}

func TestExecuteAbsentTermEmptyNotError(t *testing.T) {
	st := buildIndex(t, map[string]string{
		"https://example.edu/a": "ordinary page content",
	})
	exec := New(st, nil)

	result, err := exec.Execute(context.Background(), parser.Parse("xylophone"), 10)
	if err != nil {
		t.Fatalf("Execute() on absent term errored: %v", err)
	}
	if result.TotalHits != 0 || len(result.Results) != 0 {
		t.Errorf("absent term produced hits: %+v", result)
	}
}

func TestExecuteANDWithOneAbsentTermIsEmpty(t *testing.T) {
	st := buildIndex(t, map[string]string{
		"https://example.edu/a": "ordinary page content",
	})
	exec := New(st, nil)

	result, err := exec.Execute(context.Background(), parser.Parse("ordinary xylophone"), 10)
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalHits != 0 {
		t.Errorf("AND with a missing term must match nothing, got %d hits", result.TotalHits)
	}
}

func TestExecuteLimitTruncatesButCountsAll(t *testing.T) {
	pages := make(map[string]string)
	for i := 0; i < 8; i++ {
		pages[fmt.Sprintf("https://example.edu/p%d", i)] = fmt.Sprintf("shared keyword appears with filler%d", i)
	}
	st := buildIndex(t, pages)
	exec := New(st, nil)

	result, err := exec.Execute(context.Background(), parser.Parse("keyword"), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Results) != 3 {
		t.Errorf("returned %d results, want 3", len(result.Results))
	}
	if result.TotalHits != 8 {
		t.Errorf("TotalHits = %d, want 8", result.TotalHits)
	}
	for i, hit := range result.Results {
		if hit.Rank != i+1 {
			t.Errorf("result %d has rank %d", i, hit.Rank)
		}
	}
}

func TestExecuteRepeatedQueryDeterministic(t *testing.T) {
	st := buildIndex(t, map[string]string{
		"https://example.edu/a": "ranking determinism matters for ranking tests",
		"https://example.edu/b": "ranking stability check",
		"https://example.edu/c": "determinism in distributed ranking",
	})
	exec := New(st, nil)
	plan := parser.Parse("ranking determinism")

	first, err := exec.Execute(context.Background(), plan, 10)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := exec.Execute(context.Background(), plan, 10)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(urlsOf(first), urlsOf(again)) {
			t.Fatalf("run %d returned different ordering:\n%v\n%v", i, urlsOf(first), urlsOf(again))
		}
	}
}

func TestExecuteScoresDescending(t *testing.T) {
	st := buildIndex(t, map[string]string{
		"https://example.edu/heavy":  "signal signal signal signal signal",
		"https://example.edu/light":  "signal mentioned once among many other unrelated words entirely",
		"https://example.edu/medium": "signal twice signal here",
	})
	exec := New(st, nil)

	result, err := exec.Execute(context.Background(), parser.Parse("signal"), 10)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(result.Results); i++ {
		if result.Results[i].Score > result.Results[i-1].Score {
			t.Errorf("scores not descending at position %d: %+v", i, result.Results)
		}
	}
}

func TestExecuteAttachesSnippets(t *testing.T) {
	st := buildIndex(t, map[string]string{
		"https://example.edu/a": "the anteater exhibit opens in spring with new habitats",
	})
	exec := New(st, snippet.New(5, 240))

	result, err := exec.Execute(context.Background(), parser.Parse("anteater"), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Results) != 1 {
		t.Fatalf("got %d results", len(result.Results))
	}
	if snip := result.Results[0].Snippet; !strings.Contains(snip, "anteater") {
		t.Errorf("snippet missing query context: %q", snip)
	}
}
