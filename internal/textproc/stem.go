package textproc

import "strings"

// Suffixes tried in order by StemWord. Longer suffixes first so that
// "working" strips "ing" rather than "g".
var stemSuffixes = []string{"ing", "ed", "er", "est", "ly", "s"}

// StemWord strips a single common English suffix from word when the
// remainder stays longer than two characters; otherwise the word is
// returned unchanged. This is a deliberately crude heuristic, not a
// linguistic stemming algorithm. Recall matching and the suggestion
// generator depend on this exact behaviour, so it must not be swapped for
// a real stemmer without re-deriving their expected outputs.
func StemWord(word string) string {
	for _, suffix := range stemSuffixes {
		if strings.HasSuffix(word, suffix) {
			stripped := word[:len(word)-len(suffix)]
			if len(stripped) > 2 {
				return stripped
			}
		}
	}
	return word
}
