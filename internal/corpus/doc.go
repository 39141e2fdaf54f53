// Package corpus reads the crawled document store: a directory tree of JSON
// files, one fetched page per file, as produced by the crawler. It assigns
// document IDs, extracts plain text from the stored HTML, eliminates exact
// duplicates, and owns the corpus metadata side artifact the searcher needs
// for scoring and snippets.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	apperrors "github.com/Hydrohaven/cs121-A3/pkg/errors"
)

// Document is one corpus record handed to the indexing pipeline: the markup
// is already stripped and Text is ready for tokenization.
type Document struct {
	ID   int
	URL  string
	Text string
	Path string
}

// DocInfo is the per-document metadata retained after indexing: everything
// scoring and snippet extraction need without re-reading the corpus.
type DocInfo struct {
	URL    string `json:"url"`
	Length int    `json:"len"`
	Path   string `json:"path"`
}

// Meta is the corpus metadata artifact produced by an indexing run and
// loaded once at searcher start. TotalDocs and per-document lengths feed
// inverse-document-frequency and length normalization.
type Meta struct {
	TotalDocs int             `json:"total_docs"`
	TotalLen  int64           `json:"total_len"`
	Docs      map[int]DocInfo `json:"docs"`
}

// AvgDocLength returns the mean token length across the corpus.
func (m *Meta) AvgDocLength() float64 {
	if m.TotalDocs == 0 {
		return 0
	}
	return float64(m.TotalLen) / float64(m.TotalDocs)
}

// Save writes the metadata artifact atomically. Map keys are sorted by
// encoding/json, so identical metadata serialises identically.
func (m *Meta) Save(path string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling corpus metadata: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("writing corpus metadata: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming corpus metadata: %w", err)
	}
	return nil
}

// LoadMeta reads a previously saved metadata artifact.
func LoadMeta(path string) (*Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("reading corpus metadata: %w", err)
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing corpus metadata: %w", err)
	}
	if meta.Docs == nil {
		meta.Docs = make(map[int]DocInfo)
	}
	return &meta, nil
}
