// Package merge performs the streaming k-way merge of partial segments into
// the final index. A min-heap keyed by each cursor's current term selects the
// smallest unconsumed term on every round, so only one record per segment is
// ever held in memory.
package merge

import (
	"bufio"
	"container/heap"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/Hydrohaven/cs121-A3/internal/indexer/index"
	"github.com/Hydrohaven/cs121-A3/internal/indexer/segment"
)

// Stats summarises a completed merge.
type Stats struct {
	Segments  int
	Terms     int
	Postings  int
	SizeBytes int64
}

// Merge combines the given partial segments into one final index file at
// outPath, ascending by term with one entry per term. Output goes to a .tmp
// file and is renamed into place only on success, so a failed run never
// leaves a valid-looking final index behind. A corrupt segment aborts the
// merge with an error naming the segment and record.
func Merge(segmentPaths []string, outPath string) (Stats, error) {
	var stats Stats
	if len(segmentPaths) == 0 {
		return stats, fmt.Errorf("no segments to merge")
	}
	logger := slog.Default().With("component", "merger")

	h := &cursorHeap{}
	defer func() {
		for _, c := range *h {
			c.Close()
		}
	}()
	for _, path := range segmentPaths {
		c, err := segment.OpenCursor(path)
		if err != nil {
			return stats, err
		}
		if c.Done() {
			c.Close()
			continue
		}
		*h = append(*h, c)
	}
	heap.Init(h)
	stats.Segments = len(segmentPaths)

	tmpPath := outPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return stats, fmt.Errorf("creating final index file: %w", err)
	}
	defer out.Close()
	bw := bufio.NewWriterSize(out, 1<<20)
	enc := json.NewEncoder(bw)

	for h.Len() > 0 {
		entry, err := popSmallestTerm(h)
		if err != nil {
			return stats, err
		}
		if err := enc.Encode(entry); err != nil {
			return stats, fmt.Errorf("writing entry for term %q: %w", entry.Term, err)
		}
		stats.Terms++
		stats.Postings += len(entry.Postings)
	}

	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("flushing final index: %w", err)
	}
	if err := out.Sync(); err != nil {
		return stats, fmt.Errorf("syncing final index: %w", err)
	}
	if err := out.Close(); err != nil {
		return stats, fmt.Errorf("closing final index: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return stats, fmt.Errorf("renaming final index: %w", err)
	}
	if info, err := os.Stat(outPath); err == nil {
		stats.SizeBytes = info.Size()
	}
	logger.Info("merge complete",
		"segments", stats.Segments,
		"terms", stats.Terms,
		"postings", stats.Postings,
		"size_bytes", stats.SizeBytes,
	)
	return stats, nil
}

// popSmallestTerm drains every cursor positioned on the lexicographically
// smallest term, combines their posting lists, and advances only those
// cursors.
func popSmallestTerm(h *cursorHeap) (index.TermEntry, error) {
	term := (*h)[0].Current().Term
	combined := make(map[int]int)
	for h.Len() > 0 && (*h)[0].Current().Term == term {
		c := (*h)[0]
		for _, p := range c.Current().Postings {
			combined[p.Doc] += p.Freq
		}
		if err := c.Advance(); err != nil {
			return index.TermEntry{}, err
		}
		if c.Done() {
			heap.Pop(h)
			c.Close()
		} else {
			heap.Fix(h, 0)
		}
	}

	postings := make(index.PostingList, 0, len(combined))
	for doc, freq := range combined {
		postings = append(postings, index.Posting{Doc: doc, Freq: freq})
	}
	sort.Slice(postings, func(i, j int) bool {
		return postings[i].Doc < postings[j].Doc
	})
	return index.TermEntry{
		Term:     term,
		DocFreq:  len(postings),
		Postings: postings,
	}, nil
}
