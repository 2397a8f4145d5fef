// Package cache keeps finished URL imports so repeated requests for the same
// page skip fetching and conversion.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/cooklang/cooklang-import/internal/importer"
)

// Store holds import results by key.
type Store interface {
	// Get returns nil when the key is missing or unreadable.
	Get(ctx context.Context, key string) (*importer.Result, error)
	Set(ctx context.Context, key string, result *importer.Result, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Importer runs one import.
type Importer interface {
	Import(ctx context.Context, req importer.Request) (*importer.Result, error)
}

// Key returns the cache key for req. Only URL imports that use the
// configured credentials are cacheable.
func Key(req importer.Request) (string, bool) {
	if req.Source() != importer.SourceURL || req.APIKey != "" {
		return "", false
	}
	raw := fmt.Sprintf("%s|%t|%s|%s", req.URL, req.ExtractOnly, req.Provider, req.Model)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(raw))), true
}

// CachingImporter serves repeated URL imports from a Store.
type CachingImporter struct {
	next  Importer
	store Store
	ttl   time.Duration
}

func NewCachingImporter(next Importer, store Store, ttl time.Duration) *CachingImporter {
	return &CachingImporter{next: next, store: store, ttl: ttl}
}

func (c *CachingImporter) Import(ctx context.Context, req importer.Request) (*importer.Result, error) {
	key, ok := Key(req)
	if !ok {
		return c.next.Import(ctx, req)
	}

	if cached, err := c.store.Get(ctx, key); err == nil && cached != nil {
		slog.DebugContext(ctx, "Import served from cache", "url", req.URL)
		return cached, nil
	}

	result, err := c.next.Import(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, key, result, c.ttl); err != nil {
		slog.WarnContext(ctx, "Failed to cache import result", "url", req.URL, "error", err)
	}
	return result, nil
}
