// Package ingest validates incoming documents and, when Kafka is enabled,
// consumes document events from the ingest topic into the search engine.
package ingest

import (
	"fmt"
	"strings"

	"github.com/docwell/docsearch/internal/document"
)

const (
	maxTitleLength   = 1024
	maxContentLength = 1 << 20
	maxIDLength      = 255
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateDocument checks the required fields and length caps of a document
// before it enters the index.
func ValidateDocument(doc *document.SearchDocument) error {
	errs := make(map[string]string)

	if strings.TrimSpace(doc.ID) == "" {
		errs["id"] = "id is required"
	} else if len(doc.ID) > maxIDLength {
		errs["id"] = fmt.Sprintf("id must be at most %d characters", maxIDLength)
	}
	title := strings.TrimSpace(doc.Title)
	if title == "" {
		errs["title"] = "title is required"
	} else if len(title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	if strings.TrimSpace(doc.Content) == "" {
		errs["content"] = "content is required and must not be empty"
	} else if len(doc.Content) > maxContentLength {
		errs["content"] = fmt.Sprintf("content must be at most %d bytes", maxContentLength)
	}
	if strings.TrimSpace(doc.URL) == "" {
		errs["url"] = "url is required"
	}
	if !doc.ResultType.Valid() {
		errs["result_type"] = fmt.Sprintf("result type %q is not one of page, section, code_example, api_reference", doc.ResultType)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// ValidateBatch validates every document of a batch, reporting the index of
// the first invalid one.
func ValidateBatch(docs []document.SearchDocument) error {
	for i := range docs {
		if err := ValidateDocument(&docs[i]); err != nil {
			return fmt.Errorf("document %d (%s): %w", i, docs[i].ID, err)
		}
	}
	return nil
}
