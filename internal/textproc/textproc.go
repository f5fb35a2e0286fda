// Package textproc provides the text-processing primitives of the search
// engine: tokenisation with stop-word removal, suffix stemming, n-gram
// phrase extraction, and TF-IDF computation over a document corpus. All
// functions are pure; the only shared state is the fixed stop-word set.
package textproc

import (
	"regexp"
	"strings"
)

var (
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
	wordPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "day": {}, "get": {}, "has": {},
	"him": {}, "his": {}, "how": {}, "its": {}, "may": {}, "new": {},
	"now": {}, "old": {}, "see": {}, "two": {}, "way": {}, "who": {},
	"did": {}, "yes": {}, "she": {}, "use": {}, "any": {}, "about": {},
	"after": {}, "again": {}, "also": {}, "been": {}, "before": {},
	"being": {}, "between": {}, "both": {}, "came": {}, "come": {},
	"could": {}, "each": {}, "from": {}, "have": {}, "here": {},
	"into": {}, "just": {}, "like": {}, "make": {}, "many": {},
	"more": {}, "most": {}, "much": {}, "must": {}, "only": {},
	"other": {}, "over": {}, "said": {}, "same": {}, "should": {},
	"since": {}, "some": {}, "still": {}, "such": {}, "take": {},
	"than": {}, "that": {}, "their": {}, "them": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {},
	"through": {}, "under": {}, "very": {}, "well": {}, "were": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "while": {},
	"will": {}, "with": {}, "would": {}, "your": {},
}

// Tokenize normalises text into a slice of lowercase word tokens. HTML-like
// tags are stripped first, then alphanumeric runs are extracted; tokens of
// two characters or fewer and stop words are discarded. The output is
// deterministic for a given input.
func Tokenize(text string) []string {
	text = tagPattern.ReplaceAllString(text, " ")
	text = strings.ToLower(text)
	words := wordPattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) <= 2 {
			continue
		}
		if _, isStop := stopWords[word]; isStop {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// IsStopWord reports whether word is in the fixed stop-word set.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}
