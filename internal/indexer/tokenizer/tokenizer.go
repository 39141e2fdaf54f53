// Package tokenizer turns raw document text into normalised index terms.
// It NFC-normalises and lower-cases input, splits on non-alphanumeric
// boundaries, removes stop-words, and applies Porter stemming. The exact
// same function runs at indexing time and at query time; a divergence
// between the two would silently break every lookup.
package tokenizer

import (
	"strings"
	"unicode"

	porterstemmer "github.com/reiver/go-porterstemmer"
	"golang.org/x/text/unicode/norm"
)

const minTokenLen = 2

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
}

// Token is a single normalised term and its position in the token stream.
type Token struct {
	Term     string
	Position int
}

// Tokenize breaks text into a slice of stemmed, lowercased Tokens with
// stop-words removed. It never fails: malformed or empty input yields an
// empty slice. Tokenizing the same text twice yields the same sequence.
func Tokenize(text string) []Token {
	text = norm.NFC.String(text)
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]Token, 0, len(words)/2)
	pos := 0
	for _, word := range words {
		if len(word) < minTokenLen {
			continue
		}
		if _, isStop := stopWords[word]; isStop {
			continue
		}
		stemmed := stem(word)
		if len(stemmed) < minTokenLen {
			continue
		}
		tokens = append(tokens, Token{
			Term:     stemmed,
			Position: pos,
		})
		pos++
	}
	return tokens
}

// Terms returns just the term strings of Tokenize(text).
func Terms(text string) []string {
	tokens := Tokenize(text)
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms
}

// stem applies the Porter stemmer. The library panics on some degenerate
// inputs, so the word is returned unstemmed if that happens.
func stem(word string) (stemmed string) {
	defer func() {
		if r := recover(); r != nil {
			stemmed = word
		}
	}()
	return porterstemmer.StemString(word)
}
