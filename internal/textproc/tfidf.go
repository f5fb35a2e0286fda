package textproc

import "math"

// ComputeTFIDF calculates TF-IDF weights for every term of every document.
// texts maps a document id to its scoring text (title and content combined
// by the caller). Term frequency is the term's occurrence count divided by
// the document's total token count; IDF is ln(totalDocs / docFrequency).
//
// The computation always covers the entire corpus passed in. It is not
// incremental: after any batch of additions or removals the caller must
// invoke it again over the full document set, or scores go stale.
func ComputeTFIDF(texts map[string]string) map[string]map[string]float64 {
	totalDocs := len(texts)
	scores := make(map[string]map[string]float64, totalDocs)
	if totalDocs == 0 {
		return scores
	}

	termCounts := make(map[string]map[string]int, totalDocs)
	tokenTotals := make(map[string]int, totalDocs)
	docFreq := make(map[string]int)

	for id, text := range texts {
		tokens := Tokenize(text)
		counts := make(map[string]int, len(tokens))
		for _, token := range tokens {
			counts[token]++
		}
		termCounts[id] = counts
		tokenTotals[id] = len(tokens)
		for term := range counts {
			docFreq[term]++
		}
	}

	for id, counts := range termCounts {
		total := tokenTotals[id]
		if total == 0 {
			scores[id] = map[string]float64{}
			continue
		}
		docScores := make(map[string]float64, len(counts))
		for term, count := range counts {
			tf := float64(count) / float64(total)
			idf := math.Log(float64(totalDocs) / float64(docFreq[term]))
			docScores[term] = tf * idf
		}
		scores[id] = docScores
	}
	return scores
}
