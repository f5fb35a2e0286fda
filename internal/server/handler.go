// Package server exposes the search engine over HTTP: query execution with
// caching and analytics, document indexing and removal, corpus statistics,
// and snapshot save/load.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/docwell/docsearch/internal/analytics"
	"github.com/docwell/docsearch/internal/document"
	"github.com/docwell/docsearch/internal/engine"
	"github.com/docwell/docsearch/internal/ingest"
	"github.com/docwell/docsearch/internal/searchcache"
	apperrors "github.com/docwell/docsearch/pkg/errors"
	"github.com/docwell/docsearch/pkg/logger"
	"github.com/docwell/docsearch/pkg/metrics"
)

// Handler wires the engine to HTTP. The cache, collector, and metrics are
// optional; a nil value disables that concern without changing behaviour.
type Handler struct {
	engine       *engine.Engine
	cache        *searchcache.Cache
	collector    *analytics.Collector
	metrics      *metrics.Metrics
	snapshotPath string
	logger       *slog.Logger
}

// New creates a Handler.
func New(eng *engine.Engine, cache *searchcache.Cache, collector *analytics.Collector, m *metrics.Metrics, snapshotPath string) *Handler {
	return &Handler{
		engine:       eng,
		cache:        cache,
		collector:    collector,
		metrics:      m,
		snapshotPath: snapshotPath,
		logger:       logger.WithComponent("search-handler"),
	}
}

// Search answers both GET (query parameters) and POST (JSON body) requests.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var query engine.SearchQuery
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	} else {
		query = queryFromParams(r)
	}

	var resp *engine.SearchResponse
	cacheHit := false
	if h.cache != nil {
		resp, cacheHit = h.cache.GetOrCompute(ctx, query, func() *engine.SearchResponse {
			return h.engine.Search(query)
		})
	} else {
		resp = h.engine.Search(query)
	}

	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0
	log.Info("search completed",
		"query", query.Query,
		"total_results", resp.TotalResults,
		"returned", len(resp.Results),
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)
	h.recordSearchMetrics(resp, cacheHit, latencyMs)
	if h.collector != nil {
		eventType := analytics.EventSearch
		switch {
		case cacheHit:
			eventType = analytics.EventCacheHit
		case resp.TotalResults == 0:
			eventType = analytics.EventZeroResult
		}
		h.collector.Track(analytics.SearchEvent{
			Type:         eventType,
			Query:        query.Query,
			TotalResults: resp.TotalResults,
			Page:         resp.Page,
			LatencyMs:    latencyMs,
			CacheHit:     cacheHit,
			Timestamp:    time.Now().UTC(),
			RequestID:    logger.RequestID(ctx),
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// indexRequest is the JSON body of the batch-index endpoint.
type indexRequest struct {
	Documents []document.SearchDocument `json:"documents"`
}

// IndexDocuments adds or replaces a batch of documents.
func (h *Handler) IndexDocuments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logger.FromContext(r.Context())

	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Documents) == 0 {
		h.writeError(w, http.StatusBadRequest, "documents must not be empty")
		return
	}
	if err := ingest.ValidateBatch(req.Documents); err != nil {
		var validationErr *ingest.ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	count := h.engine.IndexDocuments(req.Documents)
	h.invalidateCache(r)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0
	log.Info("batch indexed", "count", count, "latency_ms", latencyMs)
	if h.metrics != nil {
		h.metrics.DocsIndexedTotal.Add(float64(count))
		h.metrics.IndexedDocuments.Set(float64(h.engine.Statistics().TotalDocuments))
	}
	if h.collector != nil {
		h.collector.Track(analytics.IndexEvent{
			Type:          analytics.EventIndexBatch,
			DocumentCount: count,
			LatencyMs:     latencyMs,
			Timestamp:     time.Now().UTC(),
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"indexed": count})
}

// RemoveDocument deletes one document by id.
func (h *Handler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "document id is required")
		return
	}
	if !h.engine.RemoveDocument(id) {
		h.writeAppError(w, apperrors.Newf(apperrors.ErrDocumentNotFound, http.StatusNotFound, "no document with id %q", id))
		return
	}
	h.invalidateCache(r)
	if h.metrics != nil {
		h.metrics.DocsRemovedTotal.Inc()
		h.metrics.IndexedDocuments.Set(float64(h.engine.Statistics().TotalDocuments))
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"removed": id})
}

// Stats reports corpus-level statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.engine.Statistics())
}

// snapshotRequest optionally overrides the configured snapshot path.
type snapshotRequest struct {
	Path string `json:"path"`
}

// SnapshotSave persists the index to disk.
func (h *Handler) SnapshotSave(w http.ResponseWriter, r *http.Request) {
	path := h.snapshotPath
	if p := decodeSnapshotPath(r); p != "" {
		path = p
	}
	if err := h.engine.SaveSnapshot(path); err != nil {
		h.logger.Error("snapshot save failed", "path", path, "error", err)
		h.recordSnapshotMetric("save", "error")
		h.writeAppError(w, apperrors.New(apperrors.ErrSnapshotWrite, http.StatusInternalServerError, "snapshot save failed"))
		return
	}
	h.recordSnapshotMetric("save", "ok")
	h.writeJSON(w, http.StatusOK, map[string]string{"saved": path})
}

// SnapshotLoad replaces the index from a snapshot file. The live index is
// untouched when the load fails.
func (h *Handler) SnapshotLoad(w http.ResponseWriter, r *http.Request) {
	path := h.snapshotPath
	if p := decodeSnapshotPath(r); p != "" {
		path = p
	}
	if err := h.engine.LoadSnapshot(path); err != nil {
		h.logger.Error("snapshot load failed", "path", path, "error", err)
		h.recordSnapshotMetric("load", "error")
		h.writeAppError(w, apperrors.New(apperrors.ErrSnapshotCorrupt, http.StatusBadRequest, "snapshot load failed"))
		return
	}
	h.invalidateCache(r)
	h.recordSnapshotMetric("load", "ok")
	if h.metrics != nil {
		h.metrics.IndexedDocuments.Set(float64(h.engine.Statistics().TotalDocuments))
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"loaded": path})
}

// CacheStats reports query-cache hit rates.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": strconv.FormatFloat(hitRate, 'f', 1, 64) + "%",
	})
}

// CacheInvalidate flushes the query cache.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeAppError(w, apperrors.New(apperrors.ErrCacheUnavailable, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeAppError(w, apperrors.New(apperrors.ErrCacheUnavailable, http.StatusInternalServerError, "cache invalidation failed"))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) invalidateCache(r *http.Request) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation after mutation failed", "error", err)
	}
}

func (h *Handler) recordSearchMetrics(resp *engine.SearchResponse, cacheHit bool, latencyMs float64) {
	if h.metrics == nil {
		return
	}
	outcome := "hit"
	if resp.TotalResults == 0 {
		outcome = "zero_result"
	}
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latencyMs / 1000.0)
	h.metrics.SearchResultsCount.Observe(float64(resp.TotalResults))
}

func (h *Handler) recordSnapshotMetric(operation, status string) {
	if h.metrics != nil {
		h.metrics.SnapshotOpsTotal.WithLabelValues(operation, status).Inc()
	}
}

// queryFromParams builds a SearchQuery from GET parameters: q, page,
// per_page, highlight, boost_title, category, type, tags (comma separated),
// facets (comma separated).
func queryFromParams(r *http.Request) engine.SearchQuery {
	params := r.URL.Query()
	query := engine.SearchQuery{
		Query:   params.Get("q"),
		Filters: map[string]engine.FilterValues{},
	}
	if v := params.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil {
			query.Page = page
		}
	}
	if v := params.Get("per_page"); v != "" {
		if perPage, err := strconv.Atoi(v); err == nil {
			query.PerPage = perPage
		}
	}
	if v := params.Get("highlight"); v == "true" || v == "1" {
		query.Highlight = true
	}
	if v := params.Get("boost_title"); v != "" {
		if boost, err := strconv.ParseFloat(v, 64); err == nil {
			query.BoostTitle = boost
		}
	}
	if v := params.Get("category"); v != "" {
		query.Filters[engine.FilterCategory] = engine.FilterValues{v}
	}
	if v := params.Get("type"); v != "" {
		query.Filters[engine.FilterType] = engine.FilterValues{v}
	}
	if v := params.Get("tags"); v != "" {
		query.Filters[engine.FilterTags] = engine.FilterValues(strings.Split(v, ","))
	}
	if v := params.Get("facets"); v != "" {
		query.Facets = strings.Split(v, ",")
	}
	return query
}

func decodeSnapshotPath(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	var req snapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ""
	}
	return req.Path
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeAppError(w http.ResponseWriter, err *apperrors.AppError) {
	h.writeJSON(w, apperrors.HTTPStatusCode(err), map[string]string{"error": err.Message})
}
