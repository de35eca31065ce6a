package interfaces

import (
	"context"

	"go-remote-handlebars/internal/models"
)

// LoadFunc fetches and compiles a value on a cache miss. The returned directives
// (nil when the source carried none) decide how long the value stays cached.
type LoadFunc[V any] func(ctx context.Context) (V, *models.FreshnessDirectives, error)

// Cache is a keyed read-through store with fresh and stale windows
type Cache[V any] interface {
	Get(key string) (*models.CacheEntry[V], bool) // pure lookup, never loads
	IsStale(key string) bool                      // true while the entry is in its stale-while-revalidate window
	ReadThrough(ctx context.Context, key string, load LoadFunc[V]) (V, error)
}

// TemplateCache stores compiled templates keyed by URL or absolute path
type TemplateCache = Cache[models.CompiledTemplate]

// PartialsCache stores resolved partial sets keyed by their directory list
type PartialsCache = Cache[models.PartialMap]
