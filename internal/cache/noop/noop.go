package noop

import (
	"context"

	"go-remote-handlebars/internal/interfaces"
	"go-remote-handlebars/internal/models"
)

// Ensure NoOpCache implements interfaces.Cache
var (
	_ interfaces.TemplateCache = (*NoOpCache[models.CompiledTemplate])(nil)
	_ interfaces.PartialsCache = (*NoOpCache[models.PartialMap])(nil)
)

// NoOpCache is the store used by calls that disable caching: it never
// consults nor populates anything
type NoOpCache[V any] struct{}

// NewNoOpCache creates a new no-operation cache instance
func NewNoOpCache[V any]() *NoOpCache[V] {
	return &NoOpCache[V]{}
}

// Get always returns cache miss
func (n *NoOpCache[V]) Get(key string) (*models.CacheEntry[V], bool) {
	return nil, false
}

// IsStale always returns false
func (n *NoOpCache[V]) IsStale(key string) bool {
	return false
}

// ReadThrough always invokes the loader and stores nothing
func (n *NoOpCache[V]) ReadThrough(ctx context.Context, key string, load interfaces.LoadFunc[V]) (V, error) {
	value, _, err := load(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	return value, nil
}
