// Package analytics records what people search for: a buffered collector
// publishes events to Kafka, an aggregator consumes them into rolling
// stats, and an optional store snapshots those stats to PostgreSQL.
package analytics

import "time"

// EventType tags the analytics event kinds.
type EventType string

const (
	EventSearch     EventType = "search"
	EventZeroResult EventType = "zero_result"
	EventCacheHit   EventType = "cache_hit"
	EventIndexBatch EventType = "index_batch"
)

// SearchEvent describes one executed search query.
type SearchEvent struct {
	Type         EventType `json:"type"`
	Query        string    `json:"query"`
	Tokens       []string  `json:"tokens,omitempty"`
	TotalResults int       `json:"total_results"`
	Page         int       `json:"page"`
	LatencyMs    float64   `json:"latency_ms"`
	CacheHit     bool      `json:"cache_hit"`
	Timestamp    time.Time `json:"timestamp"`
	RequestID    string    `json:"request_id,omitempty"`
}

// IndexEvent describes one indexing batch.
type IndexEvent struct {
	Type          EventType `json:"type"`
	DocumentCount int       `json:"document_count"`
	LatencyMs     float64   `json:"latency_ms"`
	Timestamp     time.Time `json:"timestamp"`
}
