// Package offsets builds and persists the term → byte-offset table over the
// final index. The table is what makes query-time lookups O(1): the searcher
// seeks straight to a term's line instead of scanning the file.
package offsets

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Hydrohaven/cs121-A3/internal/indexer/index"
	apperrors "github.com/Hydrohaven/cs121-A3/pkg/errors"
)

// Table maps each term to the byte offset of its line in the final index.
// Offsets are only valid against the exact index file they were built from.
type Table map[string]int64

// Build scans the final index once and records the starting byte offset of
// every term's line. Rebuilding from the same file always yields the same
// table.
func Build(indexPath string) (Table, error) {
	f, err := os.Open(indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrIndexNotFound, indexPath)
		}
		return nil, fmt.Errorf("opening final index: %w", err)
	}
	defer f.Close()

	table := make(Table)
	br := bufio.NewReaderSize(f, 1<<20)
	var offset int64
	record := 0
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			record++
			var entry struct {
				Term string `json:"t"`
			}
			if jsonErr := json.Unmarshal(line, &entry); jsonErr != nil {
				return nil, apperrors.CorruptSegment(indexPath, record, jsonErr)
			}
			if _, dup := table[entry.Term]; dup {
				return nil, apperrors.CorruptSegment(indexPath, record, fmt.Errorf("duplicate term %q", entry.Term))
			}
			table[entry.Term] = offset
			offset += int64(len(line))
		}
		if err == io.EOF {
			return table, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading final index: %w", err)
		}
	}
}

// Lookup returns the offset for term and whether it is present. An absent
// term is not an error; it simply has zero postings.
func (t Table) Lookup(term string) (int64, bool) {
	off, ok := t[term]
	return off, ok
}

// Save persists the table as JSON with sorted keys, so saving the same table
// twice produces byte-identical output.
func (t Table) Save(path string) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling offset table: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("writing offset table: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming offset table: %w", err)
	}
	return nil
}

// Load reads a previously saved table without rescanning the final index.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("reading offset table: %w", err)
	}
	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing offset table: %w", err)
	}
	return table, nil
}

// ReadEntryAt decodes the single TermEntry whose line starts at offset in r.
func ReadEntryAt(r io.ReaderAt, offset int64) (index.TermEntry, error) {
	var entry index.TermEntry
	sr := io.NewSectionReader(r, offset, 1<<62-offset)
	line, err := bufio.NewReaderSize(sr, 64<<10).ReadBytes('\n')
	if err != nil && err != io.EOF {
		return entry, fmt.Errorf("reading index entry at offset %d: %w", offset, err)
	}
	if err := json.Unmarshal(line, &entry); err != nil {
		return entry, fmt.Errorf("decoding index entry at offset %d: %w", offset, err)
	}
	return entry, nil
}
