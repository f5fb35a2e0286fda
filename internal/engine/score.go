package engine

import (
	"strings"

	"github.com/docwell/docsearch/internal/document"
	"github.com/docwell/docsearch/internal/textproc"
)

const (
	exactMatchBoost = 1.5
	typeBoost       = 1.2
)

// applyBoosts composes the relevance multipliers on top of the TF-IDF base
// score, in a fixed order: title boost, length normalisation, exact
// substring bonus, result-type boost. The factors are multiplicative, so a
// zero base stays zero; no boost can manufacture relevance from nothing.
func applyBoosts(base float64, doc *document.SearchDocument, rawQuery string, tokens []string, boostTitle float64) float64 {
	score := base

	if titleMatches(doc.Title, tokens) {
		score *= boostTitle
	}

	// Mild preference for shorter documents.
	score *= 1 + 0.1/(1+float64(doc.WordCount)/1000.0)

	lowered := strings.ToLower(rawQuery)
	if lowered != "" &&
		(strings.Contains(strings.ToLower(doc.Content), lowered) ||
			strings.Contains(strings.ToLower(doc.Title), lowered)) {
		score *= exactMatchBoost
	}

	if doc.ResultType == document.TypeAPIReference || doc.ResultType == document.TypeCodeExample {
		score *= typeBoost
	}
	return score
}

// titleMatches reports whether any query token appears among the title's
// tokens.
func titleMatches(title string, tokens []string) bool {
	titleTokens := textproc.Tokenize(title)
	if len(titleTokens) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(titleTokens))
	for _, t := range titleTokens {
		set[t] = struct{}{}
	}
	for _, token := range tokens {
		if _, ok := set[token]; ok {
			return true
		}
	}
	return false
}
