// Package memory implements the in-process template store: a read-through
// cache with per-entry fresh and stale-while-revalidate windows and an
// optional least-recently-used size bound.
package memory

import (
	"container/list"
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"go-remote-handlebars/internal/freshness"
	"go-remote-handlebars/internal/interfaces"
	"go-remote-handlebars/internal/metrics"
	"go-remote-handlebars/internal/models"
)

// Ensure Cache implements interfaces.Cache
var (
	_ interfaces.TemplateCache = (*Cache[models.CompiledTemplate])(nil)
	_ interfaces.PartialsCache = (*Cache[models.PartialMap])(nil)
)

// Cache is safe for concurrent use. Concurrent misses and refreshes of the same
// key share a single load.
type Cache[V any] struct {
	name       string
	policy     freshness.Policy
	maxEntries int
	clock      clock.Clock
	logger     *zap.Logger

	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front is the most recently used
	refreshing map[string]struct{}

	loads singleflight.Group
}

type item[V any] struct {
	key   string
	entry *models.CacheEntry[V]
}

// loaded wraps a value so that nil interface values survive singleflight
type loaded[V any] struct {
	value V
}

// New creates a cache whose entry lifetimes are decided by policy
func New[V any](policy freshness.Policy, opts ...Option) *Cache[V] {
	o := &options{
		name:   "memory",
		clock:  clock.New(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Cache[V]{
		name:       o.name,
		policy:     policy,
		maxEntries: o.maxEntries,
		clock:      o.clock,
		logger:     o.logger,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		refreshing: make(map[string]struct{}),
	}
}

// NewForever creates an unbounded cache whose entries never expire
func NewForever[V any](opts ...Option) *Cache[V] {
	return New[V](freshness.ForeverPolicy(), append(opts, WithMaxEntries(0))...)
}

// Get returns a fresh or stale-but-usable entry. It never loads.
func (c *Cache[V]) Get(key string) (*models.CacheEntry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.lookup(key)
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*item[V]).entry, true
}

// IsStale reports whether key is in its stale-while-revalidate window
func (c *Cache[V]) IsStale(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.lookup(key)
	if !ok {
		return false
	}
	return elem.Value.(*item[V]).entry.IsStale(c.clock.Now())
}

// ReadThrough returns the cached value for key, loading it on a miss.
//
// A stale entry is returned immediately and a single background refresh is
// started; a failed refresh is logged and never reaches the caller. A failed
// load is returned to the caller and nothing is stored.
func (c *Cache[V]) ReadThrough(ctx context.Context, key string, load interfaces.LoadFunc[V]) (V, error) {
	metrics.RecordCacheRequest(c.name)

	if entry, ok := c.Get(key); ok {
		fresh := entry.IsFresh(c.clock.Now())
		metrics.RecordCacheHit(c.name, fresh)
		if !fresh {
			c.revalidate(ctx, key, load)
		}
		c.logger.Debug("Template cache hit", zap.String("store", c.name), zap.String("key", key), zap.Bool("fresh", fresh))
		return entry.Value, nil
	}

	metrics.RecordCacheMiss(c.name)
	c.logger.Debug("Template cache miss", zap.String("store", c.name), zap.String("key", key))

	// the load is shared by every caller waiting on key, so no single caller may cancel it
	loadCtx := context.WithoutCancel(ctx)
	res, err, _ := c.loads.Do(key, func() (any, error) {
		return c.load(loadCtx, key, load)
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(loaded[V]).value, nil
}

// Len returns the number of entries currently held, including stale ones
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// load runs the loader and stores the result according to the policy
func (c *Cache[V]) load(ctx context.Context, key string, load interfaces.LoadFunc[V]) (loaded[V], error) {
	value, directives, err := load(ctx)
	if err != nil {
		return loaded[V]{}, err
	}

	ttl, cacheable := c.policy.Resolve(directives)
	if !cacheable {
		c.remove(key)
		c.logger.Debug("Template not cacheable", zap.String("store", c.name), zap.String("key", key))
		return loaded[V]{value: value}, nil
	}

	c.set(key, models.NewCacheEntry(value, c.clock.Now(), ttl))
	return loaded[V]{value: value}, nil
}

// revalidate starts a background refresh of key unless one is already running
func (c *Cache[V]) revalidate(ctx context.Context, key string, load interfaces.LoadFunc[V]) {
	c.mu.Lock()
	if _, running := c.refreshing[key]; running {
		c.mu.Unlock()
		return
	}
	c.refreshing[key] = struct{}{}
	c.mu.Unlock()

	refreshCtx := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			c.mu.Lock()
			delete(c.refreshing, key)
			c.mu.Unlock()
		}()

		_, err, _ := c.loads.Do(key, func() (any, error) {
			return c.load(refreshCtx, key, load)
		})
		metrics.RecordCacheRefresh(c.name, err)
		if err != nil {
			c.logger.Warn("Background template refresh failed, serving stale entry",
				zap.String("store", c.name),
				zap.String("key", key),
				zap.Error(err))
		}
	}()
}

// lookup returns the element for key, dropping it when expired. Caller holds mu.
func (c *Cache[V]) lookup(key string) (*list.Element, bool) {
	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if elem.Value.(*item[V]).entry.IsExpired(c.clock.Now()) {
		c.removeElement(elem)
		return nil, false
	}
	return elem, true
}

// set inserts or replaces the entry for key, evicting the least recently used
// entry first when the size bound is reached
func (c *Cache[V]) set(key string, entry *models.CacheEntry[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*item[V]).entry = entry
		c.order.MoveToFront(elem)
		return
	}

	if c.maxEntries > 0 {
		for c.order.Len() >= c.maxEntries {
			oldest := c.order.Back()
			if oldest == nil {
				break
			}
			c.logger.Debug("Evicting least recently used template",
				zap.String("store", c.name),
				zap.String("key", oldest.Value.(*item[V]).key))
			c.removeElement(oldest)
			metrics.RecordCacheEviction(c.name)
		}
	}

	c.entries[key] = c.order.PushFront(&item[V]{key: key, entry: entry})
	metrics.UpdateCacheEntries(c.name, c.order.Len())
}

func (c *Cache[V]) remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeElement(elem)
	}
}

// removeElement unlinks elem. Caller holds mu.
func (c *Cache[V]) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.entries, elem.Value.(*item[V]).key)
	metrics.UpdateCacheEntries(c.name, c.order.Len())
}
