package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/docwell/docsearch/pkg/kafka"
	"github.com/docwell/docsearch/pkg/logger"
)

// AggregatedStats is the rolling summary exposed by the analytics endpoint.
type AggregatedStats struct {
	TotalSearches     int64        `json:"total_searches"`
	TotalDocsIndexed  int64        `json:"total_docs_indexed"`
	CacheHits         int64        `json:"cache_hits"`
	CacheMisses       int64        `json:"cache_misses"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	AvgLatencyMs      float64      `json:"avg_latency_ms"`
	P50LatencyMs      float64      `json:"p50_latency_ms"`
	P95LatencyMs      float64      `json:"p95_latency_ms"`
	P99LatencyMs      float64      `json:"p99_latency_ms"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
}

// QueryCount pairs a query string with its occurrence count.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator keeps rolling stats over analytics events. It is fed either
// directly (RecordSearch/RecordIndex) or from Kafka via HandleEvent.
type Aggregator struct {
	mu                sync.RWMutex
	totalSearches     atomic.Int64
	totalDocsIndexed  atomic.Int64
	cacheHits         atomic.Int64
	cacheMisses       atomic.Int64
	zeroResults       atomic.Int64
	latencies         []float64
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	startTime         time.Time
	logger            *slog.Logger
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:         make([]float64, 0, 10000),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		startTime:         time.Now(),
		logger:            logger.WithComponent("analytics-aggregator"),
	}
}

// HandleEvent returns a Kafka MessageHandler that records search and index
// events into the aggregator. Undecodable events are logged and skipped.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[SearchEvent](value)
		if err == nil && (event.Type == EventSearch || event.Type == EventZeroResult || event.Type == EventCacheHit) {
			agg.RecordSearch(event)
			return nil
		}
		idxEvent, idxErr := kafka.DecodeJSON[IndexEvent](value)
		if idxErr == nil && idxEvent.Type == EventIndexBatch {
			agg.RecordIndex(idxEvent)
			return nil
		}
		agg.logger.Error("failed to decode analytics event", "error", err)
		return nil
	}
}

// RecordSearch folds one search event into the stats.
func (a *Aggregator) RecordSearch(event SearchEvent) {
	a.totalSearches.Add(1)
	if event.CacheHit {
		a.cacheHits.Add(1)
	} else {
		a.cacheMisses.Add(1)
	}
	if event.TotalResults == 0 {
		a.zeroResults.Add(1)
	}

	a.mu.Lock()
	a.latencies = append(a.latencies, event.LatencyMs)
	a.queryCounts[event.Query]++
	if event.TotalResults == 0 {
		a.zeroResultQueries[event.Query]++
	}
	a.mu.Unlock()
}

// RecordIndex folds one indexing batch event into the stats.
func (a *Aggregator) RecordIndex(event IndexEvent) {
	a.totalDocsIndexed.Add(int64(event.DocumentCount))
}

// Stats returns a copy of the current aggregated stats.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:    a.totalSearches.Load(),
		TotalDocsIndexed: a.totalDocsIndexed.Load(),
		CacheHits:        a.cacheHits.Load(),
		CacheMisses:      a.cacheMisses.Load(),
		ZeroResultCount:  a.zeroResults.Load(),
	}

	if len(a.latencies) > 0 {
		sorted := make([]float64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Float64s(sorted)

		var sum float64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = sum / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}

	stats.TopQueries = topQueries(a.queryCounts, 10)
	stats.ZeroResultQueries = topQueries(a.zeroResultQueries, 10)

	if minutes := time.Since(a.startTime).Minutes(); minutes > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / minutes
	}
	return stats
}

func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topQueries(counts map[string]int64, limit int) []QueryCount {
	ranked := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		ranked = append(ranked, QueryCount{Query: query, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Query < ranked[j].Query
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
