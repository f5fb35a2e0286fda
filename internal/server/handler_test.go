package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docwell/docsearch/internal/document"
	"github.com/docwell/docsearch/internal/engine"
	"github.com/docwell/docsearch/internal/index"
)

func newTestServer(t *testing.T, snapshotPath string, docs ...document.SearchDocument) *httptest.Server {
	t.Helper()
	eng := engine.New(index.New())
	if len(docs) > 0 {
		eng.IndexDocuments(docs)
	}
	h := New(eng, nil, nil, nil, snapshotPath)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/documents", h.IndexDocuments)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", h.RemoveDocument)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("POST /api/v1/snapshot/save", h.SnapshotSave)
	mux.HandleFunc("POST /api/v1/snapshot/load", h.SnapshotLoad)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func sampleDocs() []document.SearchDocument {
	return []document.SearchDocument{
		{
			ID: "a", Title: "Getting Started",
			Content:    "Getting started with the platform takes five minutes.",
			URL:        "/docs/a",
			Category:   "guides",
			ResultType: document.TypePage,
			WordCount:  9,
		},
		{
			ID: "b", Title: "API Reference",
			Content:    "Request and response parameters for the search api.",
			URL:        "/docs/b",
			Category:   "reference",
			ResultType: document.TypeAPIReference,
			WordCount:  8,
		},
	}
}

func decodeResponse(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestSearchGet(t *testing.T) {
	srv := newTestServer(t, "", sampleDocs()...)

	resp, err := http.Get(srv.URL + "/api/v1/search?q=getting+started&per_page=5")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body engine.SearchResponse
	decodeResponse(t, resp, &body)
	if body.TotalResults == 0 {
		t.Fatal("expected results for indexed corpus")
	}
	if body.Results[0].DocumentID != "a" {
		t.Errorf("top result = %q, want a", body.Results[0].DocumentID)
	}
	if body.PerPage != 5 {
		t.Errorf("per_page = %d, want 5", body.PerPage)
	}
}

func TestSearchGetWithFilter(t *testing.T) {
	srv := newTestServer(t, "", sampleDocs()...)

	resp, err := http.Get(srv.URL + "/api/v1/search?q=api&category=reference")
	if err != nil {
		t.Fatal(err)
	}
	var body engine.SearchResponse
	decodeResponse(t, resp, &body)
	for _, r := range body.Results {
		if r.Category != "reference" {
			t.Errorf("filter leaked document %q with category %q", r.DocumentID, r.Category)
		}
	}
}

func TestSearchPost(t *testing.T) {
	srv := newTestServer(t, "", sampleDocs()...)

	payload := `{
		"query": "getting started",
		"page": 1,
		"per_page": 10,
		"filters": {"category": "guides"},
		"facets": ["category"]
	}`
	resp, err := http.Post(srv.URL+"/api/v1/search", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body engine.SearchResponse
	decodeResponse(t, resp, &body)
	if body.TotalResults != 1 {
		t.Errorf("TotalResults = %d, want 1", body.TotalResults)
	}
	if len(body.Facets["category"]) == 0 {
		t.Errorf("expected category facet, got %v", body.Facets)
	}
}

func TestSearchPostInvalidBody(t *testing.T) {
	srv := newTestServer(t, "")
	resp, err := http.Post(srv.URL+"/api/v1/search", "application/json", strings.NewReader("{broken"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestIndexDocumentsEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	payload := `{"documents": [{
		"id": "new-1",
		"title": "New Page",
		"content": "Fresh searchable material about webhooks.",
		"url": "/docs/new-1",
		"result_type": "page"
	}]}`
	resp, err := http.Post(srv.URL+"/api/v1/documents", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]int
	decodeResponse(t, resp, &body)
	if body["indexed"] != 1 {
		t.Errorf("indexed = %d, want 1", body["indexed"])
	}

	search, err := http.Get(srv.URL + "/api/v1/search?q=webhooks")
	if err != nil {
		t.Fatal(err)
	}
	var found engine.SearchResponse
	decodeResponse(t, search, &found)
	if found.TotalResults != 1 {
		t.Errorf("indexed document not searchable: %d results", found.TotalResults)
	}
}

func TestIndexDocumentsValidation(t *testing.T) {
	srv := newTestServer(t, "")

	tests := []struct {
		name    string
		payload string
	}{
		{"empty batch", `{"documents": []}`},
		{"missing fields", `{"documents": [{"id": "x", "result_type": "page"}]}`},
		{"invalid json", `{broken`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/v1/documents", "application/json", strings.NewReader(tt.payload))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestRemoveDocumentEndpoint(t *testing.T) {
	srv := newTestServer(t, "", sampleDocs()...)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/documents/a", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	req2, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/documents/a", nil)
	if err != nil {
		t.Fatal(err)
	}
	again, err := http.DefaultClient.Do(req2)
	if err != nil {
		t.Fatal(err)
	}
	again.Body.Close()
	if again.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", again.StatusCode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t, "", sampleDocs()...)

	resp, err := http.Get(srv.URL + "/api/v1/stats")
	if err != nil {
		t.Fatal(err)
	}
	var stats engine.Statistics
	decodeResponse(t, resp, &stats)
	if stats.TotalDocuments != 2 {
		t.Errorf("TotalDocuments = %d, want 2", stats.TotalDocuments)
	}
}

func TestSnapshotEndpoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	srv := newTestServer(t, path, sampleDocs()...)

	save, err := http.Post(srv.URL+"/api/v1/snapshot/save", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	save.Body.Close()
	if save.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d, want 200", save.StatusCode)
	}

	load, err := http.Post(srv.URL+"/api/v1/snapshot/load", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	load.Body.Close()
	if load.StatusCode != http.StatusOK {
		t.Errorf("load status = %d, want 200", load.StatusCode)
	}

	missing := fmt.Sprintf(`{"path": %q}`, filepath.Join(t.TempDir(), "absent.json"))
	bad, err := http.Post(srv.URL+"/api/v1/snapshot/load", "application/json", strings.NewReader(missing))
	if err != nil {
		t.Fatal(err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("load of missing snapshot status = %d, want 400", bad.StatusCode)
	}
}

func TestCacheStatsDisabled(t *testing.T) {
	srv := newTestServer(t, "")
	resp, err := http.Get(srv.URL + "/api/v1/cache/stats")
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]string
	decodeResponse(t, resp, &body)
	if body["status"] != "disabled" {
		t.Errorf("expected disabled cache status, got %v", body)
	}
}
