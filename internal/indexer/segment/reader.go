package segment

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Hydrohaven/cs121-A3/internal/indexer/index"
	apperrors "github.com/Hydrohaven/cs121-A3/pkg/errors"
)

// Cursor streams TermEntry records from one segment file. Records are read
// strictly forward; the merger holds one Cursor per input segment.
type Cursor struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
	current index.TermEntry
	record  int
	done    bool
}

// OpenCursor opens a segment for sequential reading and positions the cursor
// on the first record.
func OpenCursor(path string) (*Cursor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening segment %s: %w", path, err)
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<20), 64<<20)
	c := &Cursor{
		path:    path,
		file:    f,
		scanner: sc,
	}
	if err := c.Advance(); err != nil {
		f.Close()
		return nil, err
	}
	return c, nil
}

// Path returns the underlying segment file path.
func (c *Cursor) Path() string {
	return c.path
}

// Done reports whether the cursor has consumed every record.
func (c *Cursor) Done() bool {
	return c.done
}

// Current returns the record the cursor is positioned on. Only valid while
// Done() is false.
func (c *Cursor) Current() index.TermEntry {
	return c.current
}

// Advance moves to the next record. A record that fails to parse is a
// SegmentCorruption error carrying the segment path and record number.
func (c *Cursor) Advance() error {
	for c.scanner.Scan() {
		c.record++
		line := c.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry index.TermEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return apperrors.CorruptSegment(c.path, c.record, err)
		}
		if entry.Term == "" || len(entry.Postings) == 0 {
			return apperrors.CorruptSegment(c.path, c.record, fmt.Errorf("empty term or posting list"))
		}
		c.current = entry
		return nil
	}
	if err := c.scanner.Err(); err != nil {
		return apperrors.CorruptSegment(c.path, c.record, err)
	}
	c.done = true
	return nil
}

// Close closes the underlying file.
func (c *Cursor) Close() error {
	return c.file.Close()
}

// ReadAll loads every record of a segment into memory. Intended for tests
// and small files; the merge path streams through Cursors instead.
func ReadAll(path string) ([]index.TermEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening segment %s: %w", path, err)
	}
	defer f.Close()

	var entries []index.TermEntry
	dec := json.NewDecoder(bufio.NewReader(f))
	record := 0
	for {
		record++
		var entry index.TermEntry
		if err := dec.Decode(&entry); err == io.EOF {
			return entries, nil
		} else if err != nil {
			return nil, apperrors.CorruptSegment(path, record, err)
		}
		entries = append(entries, entry)
	}
}
