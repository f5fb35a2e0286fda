package textproc

import "strings"

const (
	// DefaultMinPhraseLen and DefaultMaxPhraseLen bound the n-gram sizes
	// stored in the phrase index.
	DefaultMinPhraseLen = 2
	DefaultMaxPhraseLen = 4
)

// ExtractPhrases generates every contiguous n-gram of the tokenised text
// for n in [minLen, maxLen], joined by single spaces. The expansion is
// intentionally exhaustive; documentation pages are short, and callers
// indexing very large content should cap its length before calling.
func ExtractPhrases(text string, minLen, maxLen int) []string {
	if minLen <= 0 {
		minLen = DefaultMinPhraseLen
	}
	if maxLen < minLen {
		maxLen = DefaultMaxPhraseLen
	}
	tokens := Tokenize(text)
	if len(tokens) < minLen {
		return nil
	}
	phrases := make([]string, 0, len(tokens)*(maxLen-minLen+1))
	for n := minLen; n <= maxLen; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			phrases = append(phrases, strings.Join(tokens[i:i+n], " "))
		}
	}
	return phrases
}
