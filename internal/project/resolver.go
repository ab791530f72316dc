package project

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
)

// DefaultCacheTTL bounds how long a resolved root is trusted. Marker files
// rarely move, but a short TTL picks up a freshly created wrapper.
const DefaultCacheTTL = 30 * time.Second

// Resolver memoizes ResolveRoot by starting directory.
type Resolver struct {
	cache *ristretto.Cache[string, string]
	ttl   time.Duration
}

// NewResolver creates a caching resolver. A non-positive ttl uses DefaultCacheTTL.
func NewResolver(ttl time.Duration) (*Resolver, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: 10_000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create project root cache: %w", err)
	}
	return &Resolver{cache: c, ttl: ttl}, nil
}

// Resolve returns the project root for filePath, consulting the cache first.
// A nil Resolver resolves without caching.
func (r *Resolver) Resolve(filePath string) string {
	if r == nil {
		return ResolveRoot(filePath)
	}
	key := startDir(filePath)
	if root, ok := r.cache.Get(key); ok {
		logger.DebugTagf("project", "root cache hit for %s: %s", key, root)
		return root
	}
	root := ResolveRoot(filepath.Join(key, filepath.Base(filePath)))
	r.cache.SetWithTTL(key, root, int64(len(root)), r.ttl)
	r.cache.Wait()
	logger.DebugTagf("project", "resolved root for %s: %s", key, root)
	return root
}

// Invalidate drops every cached root.
func (r *Resolver) Invalidate() {
	if r != nil {
		r.cache.Clear()
	}
}

// Close releases the cache.
func (r *Resolver) Close() {
	if r != nil {
		r.cache.Close()
	}
}
