// Package ranker scores candidate documents with log-scaled TF-IDF,
// normalised by document length. The scheme is monotonic in term frequency,
// inverse in document frequency, and fully deterministic: equal scores are
// broken by ascending document ID so identical queries rank identically.
package ranker

import (
	"math"
	"sort"

	"github.com/Hydrohaven/cs121-A3/internal/indexer/index"
)

// ScoredDoc is one ranked result.
type ScoredDoc struct {
	Doc   int     `json:"doc"`
	Score float64 `json:"score"`
}

// TermPostings pairs a query term's document frequency with its (possibly
// filtered) posting list.
type TermPostings struct {
	DocFreq  int
	Postings index.PostingList
}

// Params carries the corpus-level statistics scoring needs.
type Params struct {
	TotalDocs int
	DocLength func(doc int) int
}

// Rank scores every document in the given posting lists and returns the top
// `limit` results in descending score order.
func Rank(postingsPerTerm map[string]TermPostings, params Params, limit int) []ScoredDoc {
	scores := make(map[int]float64)
	for _, tp := range postingsPerTerm {
		if tp.DocFreq == 0 || params.TotalDocs == 0 {
			continue
		}
		idf := math.Log(float64(params.TotalDocs) / float64(tp.DocFreq))
		for _, posting := range tp.Postings {
			scores[posting.Doc] += tfWeight(posting.Freq) * idf
		}
	}

	result := make([]ScoredDoc, 0, len(scores))
	for doc, score := range scores {
		if params.DocLength != nil {
			if dl := params.DocLength(doc); dl > 0 {
				score /= math.Sqrt(float64(dl))
			}
		}
		result = append(result, ScoredDoc{
			Doc:   doc,
			Score: math.Round(score*10000) / 10000,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].Doc < result[j].Doc
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// tfWeight is the sublinear term-frequency weight 1 + ln(tf).
func tfWeight(freq int) float64 {
	if freq <= 0 {
		return 0
	}
	return 1 + math.Log(float64(freq))
}
