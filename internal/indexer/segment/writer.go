// Package segment reads and writes partial index segments. A segment is a
// JSONL file with one TermEntry per line in ascending term order; the final
// index uses the exact same record format, so the Writer serves both.
package segment

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Hydrohaven/cs121-A3/internal/indexer/index"
)

// FileExt is the extension shared by partial segments and the final index.
const FileExt = ".jsonl"

// Writer serialises TermEntry slices into new segment files.
type Writer struct {
	dir string
}

// NewWriter creates a Writer that writes segments into the given directory.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write atomically creates segment file seg_NNNNN.jsonl containing the given
// entries, which must already be in ascending term order. It writes to a
// .tmp file first and renames on success.
func (w *Writer) Write(seq int, entries []index.TermEntry) (string, error) {
	if len(entries) == 0 {
		return "", fmt.Errorf("cannot write empty segment")
	}
	name := fmt.Sprintf("seg_%05d%s", seq, FileExt)
	finalPath := filepath.Join(w.dir, name)

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("creating segment directory: %w", err)
	}
	if err := writeEntries(finalPath, entries); err != nil {
		return "", err
	}
	return finalPath, nil
}

// writeEntries writes entries to path via a temp file, fsyncing before the
// rename so a crash never leaves a half-written segment in place.
func writeEntries(path string, entries []index.TermEntry) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp segment file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriterSize(f, 1<<20)
	enc := json.NewEncoder(bw)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("encoding entry for term %q: %w", entry.Term, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing segment file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing segment file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing segment file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming segment file: %w", err)
	}
	return nil
}

// List returns the segment files in dir in name order.
func List(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading segment directory: %w", err)
	}
	var paths []string
	for _, e := range dirEntries {
		if !e.IsDir() && filepath.Ext(e.Name()) == FileExt {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
