package engine

import (
	"sort"
	"strings"
)

const (
	suggestionMinTermLen  = 4
	suggestionThreshold   = 0.6
	maxSuggestionsPerTerm = 2
	maxSuggestions        = 3
)

// suggest proposes alternative full-query strings by swapping each query
// token for similar indexed tokens. Similarity is a crude character-set
// overlap ratio, |common chars| / max(len(a), len(b)), kept deliberately
// simple; it catches typos and close variants well enough for
// documentation corpora.
func (e *Engine) suggest(rawQuery string, tokens []string) []string {
	terms := e.idx.Terms()
	sort.Strings(terms)
	base := strings.ToLower(rawQuery)
	suggestions := make([]string, 0, maxSuggestions)
	seen := make(map[string]struct{})

	for _, token := range tokens {
		perTerm := 0
		for _, term := range terms {
			if len(suggestions) >= maxSuggestions || perTerm >= maxSuggestionsPerTerm {
				break
			}
			if len(term) < suggestionMinTermLen || term == token {
				continue
			}
			if charOverlap(token, term) <= suggestionThreshold {
				continue
			}
			suggested := strings.Replace(base, token, term, 1)
			if suggested == base {
				continue
			}
			if _, dup := seen[suggested]; dup {
				continue
			}
			seen[suggested] = struct{}{}
			suggestions = append(suggestions, suggested)
			perTerm++
		}
		if len(suggestions) >= maxSuggestions {
			break
		}
	}
	return suggestions
}

// charOverlap computes |shared distinct characters| / max(len(a), len(b)).
func charOverlap(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[rune]struct{}, len(a))
	for _, r := range a {
		setA[r] = struct{}{}
	}
	common := 0
	counted := make(map[rune]struct{}, len(b))
	for _, r := range b {
		if _, inA := setA[r]; inA {
			if _, done := counted[r]; !done {
				common++
				counted[r] = struct{}{}
			}
		}
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return float64(common) / float64(longest)
}
