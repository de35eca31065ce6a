// Package render composes a view, an optional layout and a set of partials
// into a final document. Each Engine owns its caches: a remote store with
// TTLs, a forever store for local files and a forever store for partial sets.
package render

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-remote-handlebars/internal/cache"
	"go-remote-handlebars/internal/cache/memory"
	"go-remote-handlebars/internal/compiler/handlebars"
	"go-remote-handlebars/internal/freshness"
	"go-remote-handlebars/internal/interfaces"
	"go-remote-handlebars/internal/loader"
	"go-remote-handlebars/internal/models"
	"go-remote-handlebars/internal/partials"
)

// Engine renders templates. It is safe for concurrent use.
type Engine struct {
	cfg      Config
	remote   *memory.Cache[models.CompiledTemplate]
	local    *memory.Cache[models.CompiledTemplate]
	sets     *memory.Cache[models.PartialMap]
	loader   *loader.Loader
	partials *partials.Resolver
	keys     interfaces.KeyBuilder
	logger   *zap.Logger
}

// NewEngine creates an Engine with its own stores. cfg should start from
// DefaultConfig: a zero MaxAge and StaleWhileRevalidate mean remote templates
// served without cache-control directives are never cached.
func NewEngine(
	cfg Config,
	transport interfaces.Transport,
	fs interfaces.FileSystem,
	compiler interfaces.Compiler,
	logger *zap.Logger,
) *Engine {
	if cfg.Placeholder == "" {
		cfg.Placeholder = DefaultPlaceholder
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = handlebars.Extensions
	}

	common := []memory.Option{memory.WithClock(cfg.Clock), memory.WithLogger(logger)}
	remote := memory.New[models.CompiledTemplate](
		freshness.NewPolicy(cfg.MaxAge, cfg.StaleWhileRevalidate),
		append(common, memory.WithName(cfg.storeName("remote")), memory.WithMaxEntries(cfg.Size))...,
	)
	local := memory.NewForever[models.CompiledTemplate](append(common, memory.WithName(cfg.storeName("local")))...)
	sets := memory.NewForever[models.PartialMap](append(common, memory.WithName(cfg.storeName("partials")))...)

	return &Engine{
		cfg:      cfg,
		remote:   remote,
		local:    local,
		sets:     sets,
		loader:   loader.NewLoader(remote, local, transport, fs, compiler, logger),
		partials: partials.NewResolver(sets, fs, compiler, cfg.Extensions, logger),
		keys:     cache.NewKeyBuilder(),
		logger:   logger,
	}
}

// Template resolves a single template resource
func (e *Engine) Template(ctx context.Context, res models.Resource, opts models.LoadOptions) (models.CompiledTemplate, error) {
	return e.loader.Load(ctx, res, opts)
}

// Layout resolves res, or the configured layout when res is nil
func (e *Engine) Layout(ctx context.Context, res *models.Resource, opts models.LoadOptions) (models.CompiledTemplate, error) {
	if res == nil {
		res = e.cfg.Layout
	}
	if res == nil || res.IsZero() {
		return nil, fmt.Errorf("%w: no layout given and no default layout configured", models.ErrConfig)
	}
	return e.loader.Load(ctx, *res, opts)
}

// Partials resolves dirs, or the configured partial directories when dirs is empty
func (e *Engine) Partials(ctx context.Context, dirs []string, opts models.LoadOptions) (models.PartialMap, error) {
	if len(dirs) == 0 {
		dirs = e.cfg.PartialsDirs
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("%w: no partial directories given and none configured", models.ErrConfig)
	}
	return e.partials.Resolve(ctx, dirs, opts)
}

// IsStale reports whether a remote template is being served from its
// stale-while-revalidate window
func (e *Engine) IsStale(url string) bool {
	key, err := e.keys.URLKey(url)
	if err != nil {
		return false
	}
	return e.remote.IsStale(key)
}

// Stats returns the number of entries held by each store
func (e *Engine) Stats() map[string]int {
	return map[string]int{
		"remote":   e.remote.Len(),
		"local":    e.local.Len(),
		"partials": e.sets.Len(),
	}
}
