// Package snippet produces short extractive snippets showing query-term
// context from a document's stored text.
package snippet

import (
	"strings"

	"github.com/Hydrohaven/cs121-A3/internal/indexer/tokenizer"
)

const (
	defaultRadius = 15
	defaultMaxLen = 240
)

// Extractor builds snippets around the first query-term occurrence.
type Extractor struct {
	radius int
	maxLen int
}

// New creates an Extractor with the given word radius around the hit and
// maximum snippet length in bytes. Zero values take the defaults.
func New(radius, maxLen int) *Extractor {
	if radius <= 0 {
		radius = defaultRadius
	}
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}
	return &Extractor{radius: radius, maxLen: maxLen}
}

// Extract returns a window of words surrounding the first word of text that
// normalises to one of the query terms, with ellipses marking cut points.
// If no term matches (or the text is empty) it falls back to the leading
// words of the document.
func (e *Extractor) Extract(text string, queryTerms []string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	termSet := make(map[string]struct{}, len(queryTerms))
	for _, t := range queryTerms {
		termSet[t] = struct{}{}
	}

	hit := -1
	for i, word := range words {
		for _, tok := range tokenizer.Tokenize(word) {
			if _, ok := termSet[tok.Term]; ok {
				hit = i
				break
			}
		}
		if hit >= 0 {
			break
		}
	}
	if hit < 0 {
		hit = 0
	}

	lo := hit - e.radius
	if lo < 0 {
		lo = 0
	}
	hi := hit + e.radius + 1
	if hi > len(words) {
		hi = len(words)
	}

	var b strings.Builder
	if lo > 0 {
		b.WriteString("… ")
	}
	b.WriteString(strings.Join(words[lo:hi], " "))
	if hi < len(words) {
		b.WriteString(" …")
	}
	out := b.String()
	if runes := []rune(out); len(runes) > e.maxLen {
		out = strings.TrimSpace(string(runes[:e.maxLen])) + " …"
	}
	return out
}
