// Package partials resolves partial directories into a name to template map.
package partials

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-remote-handlebars/internal/cache"
	"go-remote-handlebars/internal/cache/noop"
	"go-remote-handlebars/internal/interfaces"
	"go-remote-handlebars/internal/metrics"
	"go-remote-handlebars/internal/models"
)

// Resolver scans partial directories and compiles every template it finds
type Resolver struct {
	store      interfaces.PartialsCache
	bypass     interfaces.PartialsCache
	fs         interfaces.FileSystem
	compiler   interfaces.Compiler
	keys       interfaces.KeyBuilder
	extensions []string
	logger     *zap.Logger
}

// NewResolver creates a Resolver. store should never expire its entries:
// partial sets are cached until the process exits.
func NewResolver(
	store interfaces.PartialsCache,
	fs interfaces.FileSystem,
	compiler interfaces.Compiler,
	extensions []string,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		store:      store,
		bypass:     noop.NewNoOpCache[models.PartialMap](),
		fs:         fs,
		compiler:   compiler,
		keys:       cache.NewKeyBuilder(),
		extensions: extensions,
		logger:     logger,
	}
}

// Resolve returns the partials found under dirs. A partial in a later directory
// overrides a partial of the same name in an earlier one. The returned map is
// shared with the cache and must not be modified.
func (r *Resolver) Resolve(ctx context.Context, dirs []string, opts models.LoadOptions) (models.PartialMap, error) {
	key, err := r.keys.PartialsKey(dirs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrConfig, err)
	}

	store := r.store
	if opts.DisableCache {
		store = r.bypass
	}

	return store.ReadThrough(ctx, key, func(ctx context.Context) (models.PartialMap, *models.FreshnessDirectives, error) {
		partials, err := r.scan(ctx, dirs)
		return partials, nil, err
	})
}

// scan resolves every directory concurrently and merges the results in input order
func (r *Resolver) scan(ctx context.Context, dirs []string) (models.PartialMap, error) {
	defer metrics.TimeFetch("partials")()

	perDir := make([]models.PartialMap, len(dirs))
	g, ctx := errgroup.WithContext(ctx)
	for i, dir := range dirs {
		g.Go(func() error {
			partials, err := r.scanDir(ctx, dir)
			if err != nil {
				return err
			}
			perDir[i] = partials
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecordFetchError("partials")
		return nil, err
	}

	merged := models.PartialMap{}
	for _, partials := range perDir {
		merged.Merge(partials)
	}

	r.logger.Debug("Resolved partials", zap.Strings("dirs", dirs), zap.Int("count", len(merged)))
	return merged, nil
}

func (r *Resolver) scanDir(ctx context.Context, dir string) (models.PartialMap, error) {
	files, err := r.fs.ListFilesRecursive(dir, r.extensions)
	if err != nil {
		return nil, fmt.Errorf("list partials in %s: %w", dir, models.EnsureKind(err, models.ErrRead))
	}

	templates := make([]models.CompiledTemplate, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, rel := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			full := filepath.Join(dir, filepath.FromSlash(rel))
			data, err := r.fs.ReadFile(full)
			if err != nil {
				return fmt.Errorf("read partial %s: %w", full, models.EnsureKind(err, models.ErrRead))
			}
			tpl, err := r.compiler.Compile(string(data))
			if err != nil {
				return fmt.Errorf("compile partial %s: %w", full, models.EnsureKind(err, models.ErrCompile))
			}
			templates[i] = tpl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	partials := make(models.PartialMap, len(files))
	for i, rel := range files {
		partials[Name(rel)] = templates[i]
	}
	return partials, nil
}

// Name derives a partial name from a '/'-separated path relative to its
// directory: "nested/partial.hbs" becomes "nested/partial"
func Name(rel string) string {
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, path.Ext(rel))
}
