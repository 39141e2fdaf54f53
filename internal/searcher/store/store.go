// Package store holds the process-wide read-only serving state: the opened
// final index file, the loaded offset table, and the corpus metadata. It is
// loaded once at startup and shared by every concurrent query; lookups seek
// directly to a term's recorded offset and never scan the index linearly.
package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Hydrohaven/cs121-A3/internal/corpus"
	"github.com/Hydrohaven/cs121-A3/internal/indexer"
	"github.com/Hydrohaven/cs121-A3/internal/indexer/index"
	"github.com/Hydrohaven/cs121-A3/internal/indexer/offsets"
)

// Store is safe for concurrent use: the offset table and metadata are never
// mutated after Open, and postings decoding uses ReadAt-style section reads
// on the shared file handle.
type Store struct {
	file  *os.File
	table offsets.Table
	meta  *corpus.Meta
}

// Open loads the serving artifacts from an index data directory produced by
// a completed indexing run.
func Open(dataDir string) (*Store, error) {
	table, err := offsets.Load(filepath.Join(dataDir, indexer.OffsetsFile))
	if err != nil {
		return nil, fmt.Errorf("loading offset table: %w", err)
	}
	meta, err := corpus.LoadMeta(filepath.Join(dataDir, indexer.MetaFile))
	if err != nil {
		return nil, fmt.Errorf("loading corpus metadata: %w", err)
	}
	f, err := os.Open(filepath.Join(dataDir, indexer.FinalIndexFile))
	if err != nil {
		return nil, fmt.Errorf("opening final index: %w", err)
	}
	slog.Info("index loaded",
		"data_dir", dataDir,
		"terms", len(table),
		"docs", meta.TotalDocs,
	)
	return &Store{
		file:  f,
		table: table,
		meta:  meta,
	}, nil
}

// Postings returns the posting list and document frequency for a term. A
// term absent from the offset table yields a nil list, zero frequency, and
// no error.
func (s *Store) Postings(term string) (index.PostingList, int, error) {
	offset, ok := s.table.Lookup(term)
	if !ok {
		return nil, 0, nil
	}
	entry, err := offsets.ReadEntryAt(s.file, offset)
	if err != nil {
		return nil, 0, err
	}
	if entry.Term != term {
		return nil, 0, fmt.Errorf("offset table mismatch: looked up %q, found %q", term, entry.Term)
	}
	return entry.Postings, entry.DocFreq, nil
}

// Meta returns the corpus metadata loaded at startup.
func (s *Store) Meta() *corpus.Meta {
	return s.meta
}

// TermCount returns the number of unique terms in the index.
func (s *Store) TermCount() int {
	return len(s.table)
}

// Close closes the underlying index file.
func (s *Store) Close() error {
	return s.file.Close()
}
