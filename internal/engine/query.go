package engine

import (
	"encoding/json"
	"fmt"

	"github.com/docwell/docsearch/internal/document"
)

// Recognised filter fields. Unknown fields in a query's filter map are
// ignored so callers can pass forward-compatible filter sets.
const (
	FilterCategory = "category"
	FilterType     = "type"
	FilterTags     = "tags"
)

// FilterValues is the set of accepted values for one filter field. It
// decodes from either a single JSON string or an array of strings.
type FilterValues []string

// UnmarshalJSON accepts "value" and ["a","b"] forms.
func (f *FilterValues) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*f = FilterValues{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("filter values must be a string or an array of strings")
	}
	*f = FilterValues(many)
	return nil
}

// Contains reports membership.
func (f FilterValues) Contains(value string) bool {
	for _, v := range f {
		if v == value {
			return true
		}
	}
	return false
}

// SearchQuery is a structured search request. Page is 1-based. BoostRecent
// is reserved: it is part of the wire contract but currently has no numeric
// effect on scoring.
type SearchQuery struct {
	Query       string                  `json:"query"`
	Filters     map[string]FilterValues `json:"filters,omitempty"`
	Facets      []string                `json:"facets,omitempty"`
	Page        int                     `json:"page"`
	PerPage     int                     `json:"per_page"`
	Highlight   bool                    `json:"highlight"`
	BoostTitle  float64                 `json:"boost_title"`
	BoostRecent float64                 `json:"boost_recent"`
}

// SearchResult is a single ranked hit.
type SearchResult struct {
	DocumentID string              `json:"document_id"`
	Title      string              `json:"title"`
	URL        string              `json:"url"`
	Snippet    string              `json:"snippet"`
	Score      float64             `json:"score"`
	ResultType document.ResultType `json:"result_type"`
	Category   string              `json:"category,omitempty"`
	Tags       []string            `json:"tags,omitempty"`
	Highlights []string            `json:"highlights,omitempty"`
	Metadata   map[string]any      `json:"metadata,omitempty"`
}

// FacetCount is one aggregated value for a faceted field, ranked by count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// SearchResponse is the paginated answer to a SearchQuery.
type SearchResponse struct {
	Results      []SearchResult          `json:"results"`
	TotalResults int                     `json:"total_results"`
	Page         int                     `json:"page"`
	PerPage      int                     `json:"per_page"`
	TotalPages   int                     `json:"total_pages"`
	QueryTimeMs  float64                 `json:"query_time_ms"`
	Facets       map[string][]FacetCount `json:"facets,omitempty"`
	Suggestions  []string                `json:"suggestions,omitempty"`
}
