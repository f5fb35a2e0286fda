package analytics

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestAggregatorRecordSearch(t *testing.T) {
	agg := NewAggregator()
	agg.RecordSearch(SearchEvent{Type: EventSearch, Query: "getting started", TotalResults: 5, LatencyMs: 2})
	agg.RecordSearch(SearchEvent{Type: EventCacheHit, Query: "getting started", TotalResults: 5, LatencyMs: 1, CacheHit: true})
	agg.RecordSearch(SearchEvent{Type: EventZeroResult, Query: "qwzx", TotalResults: 0, LatencyMs: 4})

	stats := agg.Stats()
	if stats.TotalSearches != 3 {
		t.Errorf("TotalSearches = %d, want 3", stats.TotalSearches)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("cache counters = %d/%d, want 1/2", stats.CacheHits, stats.CacheMisses)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("ZeroResultCount = %d, want 1", stats.ZeroResultCount)
	}
	if math.Abs(stats.AvgLatencyMs-7.0/3.0) > 1e-9 {
		t.Errorf("AvgLatencyMs = %g, want %g", stats.AvgLatencyMs, 7.0/3.0)
	}
	if stats.P50LatencyMs != 2 {
		t.Errorf("P50LatencyMs = %g, want 2", stats.P50LatencyMs)
	}

	if len(stats.TopQueries) == 0 || stats.TopQueries[0].Query != "getting started" || stats.TopQueries[0].Count != 2 {
		t.Errorf("TopQueries = %v", stats.TopQueries)
	}
	if len(stats.ZeroResultQueries) != 1 || stats.ZeroResultQueries[0].Query != "qwzx" {
		t.Errorf("ZeroResultQueries = %v", stats.ZeroResultQueries)
	}
}

func TestAggregatorRecordIndex(t *testing.T) {
	agg := NewAggregator()
	agg.RecordIndex(IndexEvent{Type: EventIndexBatch, DocumentCount: 40})
	agg.RecordIndex(IndexEvent{Type: EventIndexBatch, DocumentCount: 2})
	if got := agg.Stats().TotalDocsIndexed; got != 42 {
		t.Errorf("TotalDocsIndexed = %d, want 42", got)
	}
}

func TestAggregatorEmptyStats(t *testing.T) {
	stats := NewAggregator().Stats()
	if stats.TotalSearches != 0 || stats.AvgLatencyMs != 0 || stats.P99LatencyMs != 0 {
		t.Errorf("expected zeroed stats, got %+v", stats)
	}
	if len(stats.TopQueries) != 0 {
		t.Errorf("expected no top queries, got %v", stats.TopQueries)
	}
}

func TestHandleEvent(t *testing.T) {
	agg := NewAggregator()
	handler := HandleEvent(agg)

	searchPayload, err := json.Marshal(SearchEvent{
		Type:         EventSearch,
		Query:        "routing",
		TotalResults: 3,
		LatencyMs:    1.5,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := handler(context.Background(), []byte("analytics"), searchPayload); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	indexPayload, err := json.Marshal(IndexEvent{
		Type:          EventIndexBatch,
		DocumentCount: 7,
		Timestamp:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := handler(context.Background(), []byte("analytics"), indexPayload); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	// Garbage must be skipped without an error so the topic keeps moving.
	if err := handler(context.Background(), nil, []byte("{broken")); err != nil {
		t.Fatalf("handler returned error for garbage payload: %v", err)
	}

	stats := agg.Stats()
	if stats.TotalSearches != 1 {
		t.Errorf("TotalSearches = %d, want 1", stats.TotalSearches)
	}
	if stats.TotalDocsIndexed != 7 {
		t.Errorf("TotalDocsIndexed = %d, want 7", stats.TotalDocsIndexed)
	}
}

func TestTopQueriesRanking(t *testing.T) {
	counts := map[string]int64{"b": 3, "a": 3, "c": 1, "d": 9}
	ranked := topQueries(counts, 3)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(ranked))
	}
	if ranked[0].Query != "d" {
		t.Errorf("top query = %q, want d", ranked[0].Query)
	}
	// Equal counts rank alphabetically.
	if ranked[1].Query != "a" || ranked[2].Query != "b" {
		t.Errorf("tie order = %q, %q, want a, b", ranked[1].Query, ranked[2].Query)
	}
}
