// Package document defines the unit of indexable content produced by the
// documentation generator and consumed by the search engine.
package document

import (
	"encoding/json"
	"fmt"
	"time"
)

// ResultType is the closed enumeration of document kinds the engine indexes.
// Modelling it as a validated type keeps invalid categories out of facets
// and filters.
type ResultType string

const (
	TypePage         ResultType = "page"
	TypeSection      ResultType = "section"
	TypeCodeExample  ResultType = "code_example"
	TypeAPIReference ResultType = "api_reference"
)

// Valid reports whether t is one of the declared result types.
func (t ResultType) Valid() bool {
	switch t {
	case TypePage, TypeSection, TypeCodeExample, TypeAPIReference:
		return true
	}
	return false
}

// UnmarshalJSON rejects values outside the closed enumeration.
func (t *ResultType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding result type: %w", err)
	}
	rt := ResultType(s)
	if !rt.Valid() {
		return fmt.Errorf("invalid result type %q", s)
	}
	*t = rt
	return nil
}

// SearchDocument is a single indexable documentation page, section, code
// example, or API reference. The ID is caller-assigned and must be stable
// across re-indexing of the same logical page; re-adding an ID replaces the
// prior version in the index. Metadata is an opaque key-value container the
// engine passes through untouched.
type SearchDocument struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	URL          string         `json:"url"`
	Description  string         `json:"description,omitempty"`
	Category     string         `json:"category,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	ResultType   ResultType     `json:"result_type"`
	WordCount    int            `json:"word_count"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	LastModified time.Time      `json:"last_modified"`
}

// HasTag reports whether the document carries the given tag. Tag order is
// preserved for display but irrelevant for membership.
func (d *SearchDocument) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
