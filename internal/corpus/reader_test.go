package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePage(t *testing.T, dir, name, url, content string) string {
	t.Helper()
	data, err := json.Marshal(page{URL: url, Content: content, Encoding: "utf-8"})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func collectDocs(t *testing.T, root string) ([]Document, ReaderStats) {
	t.Helper()
	var docs []Document
	stats, err := NewReader(root).Walk(context.Background(), func(doc Document) error {
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	return docs, stats
}

func TestWalkExtractsText(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "page1.json", "https://example.edu/a",
		`<html><head><title>Courses</title><style>body{color:red}</style></head>
		<body><h1>Course catalog</h1><script>var x = "ignored";</script><p>Machine learning basics</p></body></html>`)

	docs, stats := collectDocs(t, dir)
	if stats.Yielded != 1 || len(docs) != 1 {
		t.Fatalf("yielded %d docs, want 1", len(docs))
	}
	doc := docs[0]
	if doc.URL != "https://example.edu/a" {
		t.Errorf("URL = %q", doc.URL)
	}
	for _, banned := range []string{"ignored", "color:red", "<h1>"} {
		if strings.Contains(doc.Text, banned) {
			t.Errorf("extracted text contains %q: %q", banned, doc.Text)
		}
	}
	for _, wanted := range []string{"Course catalog", "Machine learning basics"} {
		if !strings.Contains(doc.Text, wanted) {
			t.Errorf("extracted text missing %q: %q", wanted, doc.Text)
		}
	}
}

func TestWalkAssignsSequentialIDs(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "a.json", "https://example.edu/a", "<p>alpha content</p>")
	writePage(t, dir, "b.json", "https://example.edu/b", "<p>beta content</p>")
	writePage(t, dir, "c.json", "https://example.edu/c", "<p>gamma content</p>")

	docs, _ := collectDocs(t, dir)
	if len(docs) != 3 {
		t.Fatalf("got %d docs, want 3", len(docs))
	}
	for i, doc := range docs {
		if doc.ID != i {
			t.Errorf("doc %d has ID %d", i, doc.ID)
		}
	}
}

func TestWalkSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "good.json", "https://example.edu/ok", "<p>fine</p>")
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{truncated"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nourl.json"), []byte(`{"content":"<p>x</p>"}`), 0644); err != nil {
		t.Fatal(err)
	}

	docs, stats := collectDocs(t, dir)
	if len(docs) != 1 {
		t.Fatalf("got %d docs, want 1", len(docs))
	}
	if stats.Unreadable != 2 {
		t.Errorf("Unreadable = %d, want 2", stats.Unreadable)
	}
}

func TestWalkSkipsDuplicates(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "a.json", "https://example.edu/a", "<p>same text here</p>")
	writePage(t, dir, "b.json", "https://example.edu/b", "<p>same text here</p>")

	docs, stats := collectDocs(t, dir)
	if len(docs) != 1 {
		t.Errorf("got %d docs, want 1 (duplicate dropped)", len(docs))
	}
	if stats.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", stats.Duplicates)
	}
}

func TestWalkSkipsEmptyPages(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "empty.json", "https://example.edu/empty", "<html><body></body></html>")
	docs, stats := collectDocs(t, dir)
	if len(docs) != 0 || stats.Empty != 1 {
		t.Errorf("empty page not skipped: docs=%d empty=%d", len(docs), stats.Empty)
	}
}

func TestWalkIgnoresNonJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not a page"), 0644); err != nil {
		t.Fatal(err)
	}
	docs, stats := collectDocs(t, dir)
	if len(docs) != 0 || stats.Unreadable != 0 {
		t.Errorf("non-JSON file was processed: %+v", stats)
	}
}

func TestWalkPropagatesCallbackError(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "a.json", "https://example.edu/a", "<p>alpha</p>")
	sentinel := errors.New("stop here")
	_, err := NewReader(dir).Walk(context.Background(), func(doc Document) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("Walk() = %v, want wrapped sentinel", err)
	}
}

func TestLoadText(t *testing.T) {
	dir := t.TempDir()
	path := writePage(t, dir, "a.json", "https://example.edu/a", "<p>stored page text</p>")
	text, err := LoadText(path)
	if err != nil {
		t.Fatalf("LoadText() error: %v", err)
	}
	if text != "stored page text" {
		t.Errorf("LoadText() = %q", text)
	}
}

func TestMetaSaveLoad(t *testing.T) {
	meta := &Meta{
		TotalDocs: 2,
		TotalLen:  30,
		Docs: map[int]DocInfo{
			0: {URL: "https://example.edu/a", Length: 10, Path: "a.json"},
			1: {URL: "https://example.edu/b", Length: 20, Path: "b.json"},
		},
	}
	path := filepath.Join(t.TempDir(), "meta.json")
	if err := meta.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	loaded, err := LoadMeta(path)
	if err != nil {
		t.Fatalf("LoadMeta() error: %v", err)
	}
	if loaded.TotalDocs != 2 || loaded.Docs[1].URL != "https://example.edu/b" {
		t.Errorf("loaded meta mismatch: %+v", loaded)
	}
	if got := loaded.AvgDocLength(); got != 15 {
		t.Errorf("AvgDocLength() = %v, want 15", got)
	}
}

