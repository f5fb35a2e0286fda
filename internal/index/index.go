// Package index owns all indexed search state: the document store, the
// inverted token index, the phrase index, and the TF-IDF score table. Every
// mutation goes through this package, and an RWMutex gives queries shared
// access while writers are exclusive.
package index

import (
	"strings"
	"sync"

	"github.com/docwell/docsearch/internal/document"
	"github.com/docwell/docsearch/internal/textproc"
)

// substringMatchMinLen is the minimum query-token length before substring
// matching against indexed tokens kicks in. Short tokens would match far
// too broadly.
const substringMatchMinLen = 5

// Index is the exclusive owner of the searchable corpus.
type Index struct {
	mu        sync.RWMutex
	documents map[string]document.SearchDocument
	inverted  map[string]map[string]struct{}
	phrases   map[string]map[string]struct{}
	tfidf     map[string]map[string]float64
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		documents: make(map[string]document.SearchDocument),
		inverted:  make(map[string]map[string]struct{}),
		phrases:   make(map[string]map[string]struct{}),
		tfidf:     make(map[string]map[string]float64),
	}
}

// Add stores the document and records its postings. Re-adding an existing
// id first purges the prior version's postings so the two versions never
// coexist in the inverted or phrase index. TF-IDF scores are NOT updated
// here; callers must invoke UpdateTFIDF after a batch of mutations.
func (ix *Index) Add(doc document.SearchDocument) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.documents[doc.ID]; exists {
		ix.removeLocked(doc.ID)
	}
	ix.documents[doc.ID] = doc

	indexText := doc.Content + " " + doc.Title + " " + strings.Join(doc.Tags, " ")
	for _, token := range textproc.Tokenize(indexText) {
		postings, ok := ix.inverted[token]
		if !ok {
			postings = make(map[string]struct{})
			ix.inverted[token] = postings
		}
		postings[doc.ID] = struct{}{}
	}

	for _, phrase := range textproc.ExtractPhrases(doc.Content, textproc.DefaultMinPhraseLen, textproc.DefaultMaxPhraseLen) {
		postings, ok := ix.phrases[phrase]
		if !ok {
			postings = make(map[string]struct{})
			ix.phrases[phrase] = postings
		}
		postings[doc.ID] = struct{}{}
	}
}

// Remove deletes the document and purges its id from every posting set and
// from the score table. It reports whether the document existed.
func (ix *Index) Remove(id string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if _, exists := ix.documents[id]; !exists {
		return false
	}
	ix.removeLocked(id)
	return true
}

func (ix *Index) removeLocked(id string) {
	delete(ix.documents, id)
	delete(ix.tfidf, id)
	for token, postings := range ix.inverted {
		delete(postings, id)
		if len(postings) == 0 {
			delete(ix.inverted, token)
		}
	}
	for phrase, postings := range ix.phrases {
		delete(postings, id)
		if len(postings) == 0 {
			delete(ix.phrases, phrase)
		}
	}
}

// SearchTokens returns the ids of documents matching ALL of the given
// tokens. A single token matches the union of its exact postings, its
// stemmed form's postings when the stem differs, and, for tokens of five
// or more characters, postings of any indexed token related by substring
// in either direction. The last rule trades precision for recall, which
// suits documentation search. If any token matches nothing the whole
// query matches nothing on this path.
func (ix *Index) SearchTokens(tokens []string) map[string]struct{} {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var result map[string]struct{}
	for _, token := range tokens {
		matches := ix.matchTokenLocked(token)
		if len(matches) == 0 {
			return map[string]struct{}{}
		}
		if result == nil {
			result = matches
			continue
		}
		for id := range result {
			if _, ok := matches[id]; !ok {
				delete(result, id)
			}
		}
		if len(result) == 0 {
			return result
		}
	}
	if result == nil {
		return map[string]struct{}{}
	}
	return result
}

func (ix *Index) matchTokenLocked(token string) map[string]struct{} {
	matches := make(map[string]struct{})
	for id := range ix.inverted[token] {
		matches[id] = struct{}{}
	}
	if stemmed := textproc.StemWord(token); stemmed != token {
		for id := range ix.inverted[stemmed] {
			matches[id] = struct{}{}
		}
	}
	if len(token) >= substringMatchMinLen {
		for indexed, postings := range ix.inverted {
			if indexed == token {
				continue
			}
			if strings.Contains(indexed, token) || strings.Contains(token, indexed) {
				for id := range postings {
					matches[id] = struct{}{}
				}
			}
		}
	}
	return matches
}

// SearchPhrases extracts n-gram phrases from the raw query text and returns
// the union of postings for every phrase present in the phrase index.
func (ix *Index) SearchPhrases(queryText string) map[string]struct{} {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	result := make(map[string]struct{})
	for _, phrase := range textproc.ExtractPhrases(queryText, textproc.DefaultMinPhraseLen, textproc.DefaultMaxPhraseLen) {
		for id := range ix.phrases[phrase] {
			result[id] = struct{}{}
		}
	}
	return result
}

// UpdateTFIDF recomputes the whole score table from the current document
// set, replacing it wholesale. Scoring text is title plus content.
func (ix *Index) UpdateTFIDF() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	texts := make(map[string]string, len(ix.documents))
	for id, doc := range ix.documents {
		texts[id] = doc.Title + " " + doc.Content
	}
	ix.tfidf = textproc.ComputeTFIDF(texts)
}

// Document returns a copy of the stored document.
func (ix *Index) Document(id string) (document.SearchDocument, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	doc, ok := ix.documents[id]
	return doc, ok
}

// TFIDFSum returns the sum of the document's TF-IDF weights for the given
// tokens, counting only tokens present in the document's score map. The
// sum can be zero even for a candidate that matched via stem, substring,
// or phrase.
func (ix *Index) TFIDFSum(id string, tokens []string) float64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	docScores, ok := ix.tfidf[id]
	if !ok {
		return 0
	}
	var sum float64
	for _, token := range tokens {
		sum += docScores[token]
	}
	return sum
}

// Terms returns every indexed token. The slice is a copy and safe to
// retain; order is unspecified.
func (ix *Index) Terms() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	terms := make([]string, 0, len(ix.inverted))
	for term := range ix.inverted {
		terms = append(terms, term)
	}
	return terms
}

// Stats is a point-in-time summary of index contents.
type Stats struct {
	TotalDocuments int
	TotalTerms     int
	TotalPhrases   int
	DocumentTypes  map[string]int
	Categories     map[string]int
	AvgWordCount   float64
}

// Snapshot of counts for the statistics endpoint.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	s := Stats{
		TotalDocuments: len(ix.documents),
		TotalTerms:     len(ix.inverted),
		TotalPhrases:   len(ix.phrases),
		DocumentTypes:  make(map[string]int),
		Categories:     make(map[string]int),
	}
	var totalWords int
	for _, doc := range ix.documents {
		s.DocumentTypes[string(doc.ResultType)]++
		if doc.Category != "" {
			s.Categories[doc.Category]++
		}
		totalWords += doc.WordCount
	}
	if s.TotalDocuments > 0 {
		s.AvgWordCount = float64(totalWords) / float64(s.TotalDocuments)
	}
	return s
}
