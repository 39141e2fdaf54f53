// Package parser turns a raw query string into a QueryPlan. Queries are
// AND-combined by default; OR and NOT operators switch the combination mode
// and exclude terms. Every term goes through the same tokenizer the indexer
// used.
package parser

import (
	"strings"

	"github.com/Hydrohaven/cs121-A3/internal/indexer/tokenizer"
)

type QueryType int

const (
	QueryAND QueryType = iota
	QueryOR
)

func (t QueryType) String() string {
	if t == QueryOR {
		return "OR"
	}
	return "AND"
}

type QueryPlan struct {
	Terms        []string
	ExcludeTerms []string
	Type         QueryType
	RawQuery     string
}

// Parse builds a QueryPlan from a raw query string. Words that normalise to
// nothing (stop words, too short) are dropped silently.
func Parse(query string) *QueryPlan {
	plan := &QueryPlan{
		Terms:        make([]string, 0),
		ExcludeTerms: make([]string, 0),
		Type:         QueryAND,
		RawQuery:     query,
	}
	if strings.TrimSpace(query) == "" {
		return plan
	}
	excludeNext := false
	for _, word := range strings.Fields(query) {
		switch strings.ToUpper(word) {
		case "AND":
			plan.Type = QueryAND
			continue
		case "OR":
			plan.Type = QueryOR
			continue
		case "NOT":
			excludeNext = true
			continue
		}
		for _, tok := range tokenizer.Tokenize(word) {
			if excludeNext {
				plan.ExcludeTerms = append(plan.ExcludeTerms, tok.Term)
			} else {
				plan.Terms = append(plan.Terms, tok.Term)
			}
		}
		excludeNext = false
	}
	return plan
}
