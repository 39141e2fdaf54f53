// Package index defines the core inverted-index data model: postings, term
// entries, and the bounded in-memory accumulator that feeds partial segments.
package index

// Posting is one (document, term frequency) association for a term.
type Posting struct {
	Doc  int `json:"d"`
	Freq int `json:"f"`
}

// PostingList is the ordered set of postings for one term, ascending by
// document ID.
type PostingList []Posting

// TermEntry is one line of a segment or of the final index: a term, its
// document frequency, and its posting list.
type TermEntry struct {
	Term     string      `json:"t"`
	DocFreq  int         `json:"df"`
	Postings PostingList `json:"p"`
}
