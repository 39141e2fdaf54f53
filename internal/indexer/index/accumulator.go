package index

import "sort"

// Accumulator is the in-memory posting store for the current flush cycle.
// It tracks an approximate byte size so the pipeline can decide when to
// spill a partial segment. The indexing pipeline is the sole writer; the
// accumulator is not safe for concurrent use.
type Accumulator struct {
	terms    map[string]map[int]int
	pairs    int
	size     int64
	docsSeen map[int]struct{}
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		terms:    make(map[string]map[int]int),
		docsSeen: make(map[int]struct{}),
	}
}

// Add records one occurrence of term in doc.
func (a *Accumulator) Add(doc int, term string) {
	postings, ok := a.terms[term]
	if !ok {
		postings = make(map[int]int)
		a.terms[term] = postings
		a.size += int64(len(term)) + 48
	}
	if _, ok := postings[doc]; !ok {
		a.size += 16
		a.pairs++
	}
	postings[doc]++
	a.docsSeen[doc] = struct{}{}
}

// Size returns the approximate memory footprint in bytes.
func (a *Accumulator) Size() int64 {
	return a.size
}

// Pairs returns the number of distinct (term, doc) pairs accumulated.
func (a *Accumulator) Pairs() int {
	return a.pairs
}

// TermCount returns the number of distinct terms accumulated.
func (a *Accumulator) TermCount() int {
	return len(a.terms)
}

// DocCount returns the number of distinct documents seen this cycle.
func (a *Accumulator) DocCount() int {
	return len(a.docsSeen)
}

// Empty reports whether nothing has been accumulated this cycle.
func (a *Accumulator) Empty() bool {
	return len(a.terms) == 0
}

// Snapshot returns the accumulated entries in ascending term order, with
// each posting list in ascending document order and the document frequency
// filled in. The accumulator is left unchanged.
func (a *Accumulator) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(a.terms))
	for term, docs := range a.terms {
		postings := make(PostingList, 0, len(docs))
		for doc, freq := range docs {
			postings = append(postings, Posting{Doc: doc, Freq: freq})
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].Doc < postings[j].Doc
		})
		entries = append(entries, TermEntry{
			Term:     term,
			DocFreq:  len(postings),
			Postings: postings,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// Reset clears the accumulator for the next flush cycle.
func (a *Accumulator) Reset() {
	a.terms = make(map[string]map[int]int)
	a.docsSeen = make(map[int]struct{})
	a.pairs = 0
	a.size = 0
}
