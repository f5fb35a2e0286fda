// Package searchcache is a Redis-backed cache of whole search responses.
// Entries are keyed on a normalised form of the query so that differently
// ordered but equivalent requests share one entry, and singleflight
// collapses concurrent misses for the same key into one engine execution.
package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/docwell/docsearch/internal/engine"
	"github.com/docwell/docsearch/pkg/config"
	"github.com/docwell/docsearch/pkg/logger"
	pkgredis "github.com/docwell/docsearch/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "docsearch:"

// Cache stores search responses in Redis with a TTL.
type Cache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a Cache over an established Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *Cache {
	return &Cache{
		client: client,
		cfg:    cfg,
		logger: logger.WithComponent("search-cache"),
	}
}

// Get returns the cached response for the query, if present.
func (c *Cache) Get(ctx context.Context, q engine.SearchQuery) (*engine.SearchResponse, bool) {
	key := c.buildKey(q)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var resp engine.SearchResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &resp, true
}

// Set stores the response under the query's key.
func (c *Cache) Set(ctx context.Context, q engine.SearchQuery, resp *engine.SearchResponse) {
	key := c.buildKey(q)
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached response or computes and caches it,
// collapsing concurrent computations of the same key. The second return
// reports whether the response came from the cache.
func (c *Cache) GetOrCompute(
	ctx context.Context,
	q engine.SearchQuery,
	computeFn func() *engine.SearchResponse,
) (*engine.SearchResponse, bool) {
	if resp, ok := c.Get(ctx, q); ok {
		return resp, true
	}
	key := c.buildKey(q)
	val, _, _ := c.group.Do(key, func() (any, error) {
		if resp, ok := c.Get(ctx, q); ok {
			return resp, nil
		}
		resp := computeFn()
		c.Set(ctx, q, resp)
		return resp, nil
	})
	return val.(*engine.SearchResponse), false
}

// Invalidate removes every cached search response. Call after the corpus
// changes; cached pages would otherwise serve stale rankings until TTL
// expiry.
func (c *Cache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating search cache: %w", err)
	}
	c.logger.Info("search cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns hit and miss counters since process start.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) buildKey(q engine.SearchQuery) string {
	hash := sha256.Sum256([]byte(normalizeQuery(q)))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// normalizeQuery flattens a query into a canonical string: lowercased query
// text, sorted filter fields and values, sorted facets, and the paging and
// boost parameters that change the response shape.
func normalizeQuery(q engine.SearchQuery) string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(strings.TrimSpace(q.Query)))

	fields := make([]string, 0, len(q.Filters))
	for field := range q.Filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		values := append([]string(nil), q.Filters[field]...)
		sort.Strings(values)
		fmt.Fprintf(&sb, "|%s=%s", field, strings.Join(values, ","))
	}

	facets := append([]string(nil), q.Facets...)
	sort.Strings(facets)
	if len(facets) > 0 {
		fmt.Fprintf(&sb, "|facets=%s", strings.Join(facets, ","))
	}
	fmt.Fprintf(&sb, "|page=%d|per_page=%d|hl=%t|bt=%g", q.Page, q.PerPage, q.Highlight, q.BoostTitle)
	return sb.String()
}
