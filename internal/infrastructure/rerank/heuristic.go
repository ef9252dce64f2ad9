package rerank

import (
	"context"
	"sort"
	"strings"
	"unicode"
)

// Heuristic implements ports.Reranker without a cross-encoder model,
// scoring each candidate by query/document token overlap. Tokenization
// covers any Unicode letter/digit so Arabic text scores the same way
// as Latin text, matching the qdrant sparse encoder's tokenizer.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) Rerank(_ context.Context, query string, candidates []string, topN int) ([]int, []float64, error) {
	if len(candidates) == 0 {
		return nil, nil, nil
	}
	if topN <= 0 || topN > len(candidates) {
		topN = len(candidates)
	}

	queryTokens := toTokenSet(query)
	type scored struct {
		index int
		score float64
	}
	all := make([]scored, len(candidates))
	for i, c := range candidates {
		all[i] = scored{index: i, score: tokenOverlap(queryTokens, toTokenSet(c))}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].index < all[j].index
	})

	head := all[:topN]
	indices := make([]int, len(head))
	scores := make([]float64, len(head))
	for i, s := range head {
		indices[i] = s.index
		scores[i] = s.score
	}
	return indices, scores, nil
}

func tokenOverlap(query, doc map[string]struct{}) float64 {
	if len(query) == 0 || len(doc) == 0 {
		return 0
	}
	matches := 0
	for token := range query {
		if _, ok := doc[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(query))
}

func toTokenSet(s string) map[string]struct{} {
	tokens := splitAlphaNumLower(s)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

func splitAlphaNumLower(s string) []string {
	if s == "" {
		return nil
	}
	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
