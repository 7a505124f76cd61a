// Package tools implements the cached data adapters the analysis agents are
// equipped with. Each tool normalizes one external financial-data source into
// a small fixed set of named fields behind a TTL cache, and never lets a
// provider error escape as anything but a readable message.
package tools

import (
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finsight/internal/cache"
	"github.com/ternarybob/finsight/internal/interfaces"
)

const (
	// DataTTL bounds cached profile, financials, and history entries.
	DataTTL = 1800 * time.Second

	// SearchTTL bounds cached symbol-search results.
	SearchTTL = 3600 * time.Second

	// MaxCacheEntries caps each adapter's cache.
	MaxCacheEntries = 100
)

// cachedTool provides the shared cache-lookup plumbing for the data tools.
type cachedTool struct {
	name   string
	cache  *cache.Cache
	logger arbor.ILogger
}

func newCachedTool(name string, ttl time.Duration, logger arbor.ILogger, opts ...cache.Option) cachedTool {
	return cachedTool{
		name:   name,
		cache:  cache.New(MaxCacheEntries, ttl, opts...),
		logger: logger,
	}
}

// lookup returns a cached successful result for key, if present and fresh.
func (t *cachedTool) lookup(key string) (*interfaces.ToolResult, bool) {
	v, ok := t.cache.Get(key)
	if !ok {
		return nil, false
	}
	fields, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	t.logger.Debug().
		Str("tool", t.name).
		Str("key", key).
		Msg("Cache hit")
	return &interfaces.ToolResult{Fields: fields, Cached: true}, true
}

// store caches a successful result's fields under key.
func (t *cachedTool) store(key string, fields map[string]interface{}) {
	t.cache.Set(key, fields)
}
