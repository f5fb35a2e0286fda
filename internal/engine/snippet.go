package engine

import (
	"strings"

	"github.com/docwell/docsearch/internal/document"
)

const (
	snippetMaxLen   = 150
	highlightRadius = 30
	maxHighlights   = 3
)

// buildSnippet picks the sentence of the content with the highest count of
// query-token occurrences (the first such sentence on ties) and truncates
// it to 150 characters with an ellipsis.
func buildSnippet(content string, tokens []string) string {
	sentences := splitSentences(content)
	if len(sentences) == 0 {
		return ""
	}
	best := sentences[0]
	bestCount := countTokenHits(sentences[0], tokens)
	for _, sentence := range sentences[1:] {
		if count := countTokenHits(sentence, tokens); count > bestCount {
			best = sentence
			bestCount = count
		}
	}
	best = strings.TrimSpace(best)
	if len(best) > snippetMaxLen {
		best = best[:snippetMaxLen] + "..."
	}
	return best
}

// buildHighlights returns up to three short excerpts: a title indicator
// when the title itself matches, then a window of ±30 characters around
// the first occurrence of each query token in the content.
func buildHighlights(doc *document.SearchDocument, tokens []string) []string {
	highlights := make([]string, 0, maxHighlights)

	if titleMatches(doc.Title, tokens) {
		highlights = append(highlights, "Title: "+doc.Title)
	}

	lowered := strings.ToLower(doc.Content)
	for _, token := range tokens {
		if len(highlights) >= maxHighlights {
			break
		}
		pos := strings.Index(lowered, token)
		if pos < 0 {
			continue
		}
		start := pos - highlightRadius
		if start < 0 {
			start = 0
		}
		end := pos + len(token) + highlightRadius
		if end > len(doc.Content) {
			end = len(doc.Content)
		}
		window := strings.TrimSpace(doc.Content[start:end])
		if window != "" {
			highlights = append(highlights, "..."+window+"...")
		}
	}
	return highlights
}

func splitSentences(content string) []string {
	sentences := strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := sentences[:0]
	for _, s := range sentences {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func countTokenHits(sentence string, tokens []string) int {
	lowered := strings.ToLower(sentence)
	count := 0
	for _, token := range tokens {
		count += strings.Count(lowered, token)
	}
	return count
}
