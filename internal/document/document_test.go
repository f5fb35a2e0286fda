package document

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestResultTypeValid(t *testing.T) {
	for _, rt := range []ResultType{TypePage, TypeSection, TypeCodeExample, TypeAPIReference} {
		if !rt.Valid() {
			t.Errorf("expected %q to be valid", rt)
		}
	}
	for _, rt := range []ResultType{"", "article", "PAGE"} {
		if rt.Valid() {
			t.Errorf("expected %q to be invalid", rt)
		}
	}
}

func TestResultTypeUnmarshal(t *testing.T) {
	var rt ResultType
	if err := json.Unmarshal([]byte(`"code_example"`), &rt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rt != TypeCodeExample {
		t.Errorf("got %q, want %q", rt, TypeCodeExample)
	}

	if err := json.Unmarshal([]byte(`"blog_post"`), &rt); err == nil {
		t.Error("expected error for unknown result type")
	}
	if err := json.Unmarshal([]byte(`42`), &rt); err == nil {
		t.Error("expected error for non-string result type")
	}
}

func TestSearchDocumentDecode(t *testing.T) {
	payload := `{
		"id": "guide-1",
		"title": "Getting Started",
		"content": "Install and configure the toolchain.",
		"url": "/docs/getting-started",
		"category": "guides",
		"tags": ["setup", "install"],
		"result_type": "page",
		"word_count": 6,
		"metadata": {"version": "2.1", "weight": 3}
	}`
	var doc SearchDocument
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID != "guide-1" || doc.ResultType != TypePage || doc.WordCount != 6 {
		t.Errorf("decoded document mismatch: %+v", doc)
	}
	if doc.Metadata["version"] != "2.1" {
		t.Errorf("metadata not passed through: %v", doc.Metadata)
	}

	// An invalid result type poisons the whole document decode.
	bad := strings.Replace(payload, `"page"`, `"wiki"`, 1)
	if err := json.Unmarshal([]byte(bad), &doc); err == nil {
		t.Error("expected error for document with invalid result type")
	}
}

func TestHasTag(t *testing.T) {
	doc := SearchDocument{Tags: []string{"setup", "install"}}
	if !doc.HasTag("install") {
		t.Error("expected HasTag to find existing tag")
	}
	if doc.HasTag("Install") {
		t.Error("tag matching is case sensitive")
	}
	if doc.HasTag("missing") {
		t.Error("expected HasTag to miss absent tag")
	}
}
