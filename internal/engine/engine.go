// Package engine orchestrates indexing and querying of the documentation
// corpus: filtering, composite relevance scoring, snippets and highlights,
// pagination, facet aggregation, query suggestions, and snapshot
// persistence. The engine itself is stateless per request; all corpus state
// lives in the injected index.
package engine

import (
	"log/slog"
	"sort"
	"time"

	"github.com/docwell/docsearch/internal/document"
	"github.com/docwell/docsearch/internal/index"
	"github.com/docwell/docsearch/internal/textproc"
	"github.com/docwell/docsearch/pkg/logger"
)

const (
	// DefaultPerPage is the page size used when a query does not set one.
	DefaultPerPage = 10
	// MaxPerPage caps the page size a caller may request.
	MaxPerPage = 100
	// DefaultBoostTitle is the title-match score multiplier used when the
	// query does not override it.
	DefaultBoostTitle = 2.0
)

// Engine answers structured search queries over a single injected Index.
// Constructing multiple engines over distinct indexes yields fully
// independent corpora, which is also what keeps tests isolated.
type Engine struct {
	idx    *index.Index
	logger *slog.Logger
}

// New creates an Engine over the given index.
func New(idx *index.Index) *Engine {
	return &Engine{
		idx:    idx,
		logger: logger.WithComponent("search-engine"),
	}
}

// Index exposes the underlying index for direct mutation paths such as
// single-document removal.
func (e *Engine) Index() *index.Index {
	return e.idx
}

// IndexDocuments adds or replaces each document and then performs a single
// TF-IDF recomputation over the whole corpus. The recompute happens once
// per batch, not per document; interleaved queries between the adds and the
// recompute may briefly score against the previous table, which is the
// documented batch contract. Returns the number of documents indexed.
func (e *Engine) IndexDocuments(docs []document.SearchDocument) int {
	for _, doc := range docs {
		e.idx.Add(doc)
	}
	e.idx.UpdateTFIDF()
	e.logger.Info("documents indexed", "count", len(docs))
	return len(docs)
}

// RemoveDocument deletes a document and refreshes TF-IDF scores. It reports
// whether the document existed.
func (e *Engine) RemoveDocument(id string) bool {
	removed := e.idx.Remove(id)
	if removed {
		e.idx.UpdateTFIDF()
		e.logger.Info("document removed", "doc_id", id)
	}
	return removed
}

// Search runs the full query pipeline. Absence of matches is never an
// error: degenerate queries produce a valid empty response with the query
// time still measured.
func (e *Engine) Search(q SearchQuery) *SearchResponse {
	start := time.Now()

	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	resp := &SearchResponse{
		Results: []SearchResult{},
		Page:    page,
		PerPage: perPage,
	}

	tokens := textproc.Tokenize(q.Query)
	if len(tokens) == 0 {
		resp.QueryTimeMs = elapsedMs(start)
		return resp
	}

	// Broaden then rank: the AND token path and the phrase path are
	// unioned so either can admit a candidate; precision comes from
	// scoring, not from the candidate set.
	candidates := e.idx.SearchTokens(tokens)
	for id := range e.idx.SearchPhrases(q.Query) {
		candidates[id] = struct{}{}
	}

	matched := e.collectFiltered(candidates, q.Filters)
	scored := e.scoreAll(matched, tokens, q)

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		// Deterministic tie-break; callers must not depend on the order
		// of equal scores.
		return scored[i].doc.ID < scored[j].doc.ID
	})

	resp.TotalResults = len(scored)
	resp.TotalPages = (len(scored) + perPage - 1) / perPage

	startIdx := (page - 1) * perPage
	endIdx := startIdx + perPage
	if startIdx > len(scored) {
		startIdx = len(scored)
	}
	if endIdx > len(scored) {
		endIdx = len(scored)
	}
	for _, cand := range scored[startIdx:endIdx] {
		resp.Results = append(resp.Results, e.buildResult(cand, tokens, q))
	}

	if len(q.Facets) > 0 {
		resp.Facets = aggregateFacets(scored, q.Facets)
	}
	resp.Suggestions = e.suggest(q.Query, tokens)

	resp.QueryTimeMs = elapsedMs(start)
	e.logger.Debug("search completed",
		"query", q.Query,
		"total_results", resp.TotalResults,
		"page", page,
		"query_time_ms", resp.QueryTimeMs,
	)
	return resp
}

type scoredDoc struct {
	doc   document.SearchDocument
	score float64
}

// collectFiltered resolves candidate ids to documents and applies the
// declared filters. Unrecognised filter fields are ignored so callers can
// pass forward-compatible filter maps.
func (e *Engine) collectFiltered(candidates map[string]struct{}, filters map[string]FilterValues) []document.SearchDocument {
	docs := make([]document.SearchDocument, 0, len(candidates))
	for id := range candidates {
		doc, ok := e.idx.Document(id)
		if !ok {
			continue
		}
		if matchesFilters(&doc, filters) {
			docs = append(docs, doc)
		}
	}
	return docs
}

func matchesFilters(doc *document.SearchDocument, filters map[string]FilterValues) bool {
	for field, values := range filters {
		if len(values) == 0 {
			continue
		}
		switch field {
		case FilterCategory:
			if !values.Contains(doc.Category) {
				return false
			}
		case FilterType:
			if !values.Contains(string(doc.ResultType)) {
				return false
			}
		case FilterTags:
			anyTag := false
			for _, v := range values {
				if doc.HasTag(v) {
					anyTag = true
					break
				}
			}
			if !anyTag {
				return false
			}
		}
	}
	return true
}

func (e *Engine) scoreAll(docs []document.SearchDocument, tokens []string, q SearchQuery) []scoredDoc {
	boostTitle := q.BoostTitle
	if boostTitle <= 0 {
		boostTitle = DefaultBoostTitle
	}
	scored := make([]scoredDoc, 0, len(docs))
	for _, doc := range docs {
		base := e.idx.TFIDFSum(doc.ID, tokens)
		scored = append(scored, scoredDoc{
			doc:   doc,
			score: applyBoosts(base, &doc, q.Query, tokens, boostTitle),
		})
	}
	return scored
}

func (e *Engine) buildResult(cand scoredDoc, tokens []string, q SearchQuery) SearchResult {
	doc := cand.doc
	result := SearchResult{
		DocumentID: doc.ID,
		Title:      doc.Title,
		URL:        doc.URL,
		Snippet:    buildSnippet(doc.Content, tokens),
		Score:      cand.score,
		ResultType: doc.ResultType,
		Category:   doc.Category,
		Tags:       doc.Tags,
		Metadata:   doc.Metadata,
	}
	if q.Highlight {
		result.Highlights = buildHighlights(&doc, tokens)
	}
	return result
}

// Statistics summarises the indexed corpus for the stats endpoint.
type Statistics struct {
	TotalDocuments      int            `json:"total_documents"`
	TotalTerms          int            `json:"total_terms"`
	TotalPhrases        int            `json:"total_phrases"`
	DocumentTypes       map[string]int `json:"document_types"`
	Categories          map[string]int `json:"categories"`
	AverageDocumentSize float64        `json:"average_document_size"`
}

// Statistics returns corpus-level counts.
func (e *Engine) Statistics() Statistics {
	s := e.idx.Stats()
	return Statistics{
		TotalDocuments:      s.TotalDocuments,
		TotalTerms:          s.TotalTerms,
		TotalPhrases:        s.TotalPhrases,
		DocumentTypes:       s.DocumentTypes,
		Categories:          s.Categories,
		AverageDocumentSize: s.AvgWordCount,
	}
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
