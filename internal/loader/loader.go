// Package loader resolves a single named template resource, remote or local,
// to a compiled template through the instance's stores.
package loader

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"go-remote-handlebars/internal/cache"
	"go-remote-handlebars/internal/cache/noop"
	"go-remote-handlebars/internal/freshness"
	"go-remote-handlebars/internal/interfaces"
	"go-remote-handlebars/internal/metrics"
	"go-remote-handlebars/internal/models"
)

// AcceptHeader is sent with every remote template request
const AcceptHeader = "text/x-handlebars-template"

// Loader resolves resources to compiled templates
type Loader struct {
	remote    interfaces.TemplateCache
	local     interfaces.TemplateCache
	bypass    interfaces.TemplateCache
	transport interfaces.Transport
	fs        interfaces.FileSystem
	compiler  interfaces.Compiler
	keys      interfaces.KeyBuilder
	logger    *zap.Logger
}

// NewLoader creates a Loader. remote holds fetched templates with TTLs, local
// holds file templates forever.
func NewLoader(
	remote, local interfaces.TemplateCache,
	transport interfaces.Transport,
	fs interfaces.FileSystem,
	compiler interfaces.Compiler,
	logger *zap.Logger,
) *Loader {
	return &Loader{
		remote:    remote,
		local:     local,
		bypass:    noop.NewNoOpCache[models.CompiledTemplate](),
		transport: transport,
		fs:        fs,
		compiler:  compiler,
		keys:      cache.NewKeyBuilder(),
		logger:    logger,
	}
}

// Load returns the compiled template for res. Precompiled resources are returned
// verbatim; with opts.DisableCache the stores are neither read nor written.
func (l *Loader) Load(ctx context.Context, res models.Resource, opts models.LoadOptions) (models.CompiledTemplate, error) {
	switch res.Kind() {
	case models.ResourceKindPrecompiled:
		return res.Template, nil

	case models.ResourceKindRemote:
		key, err := l.keys.URLKey(res.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrConfig, err)
		}
		return l.store(l.remote, opts).ReadThrough(ctx, key, func(ctx context.Context) (models.CompiledTemplate, *models.FreshnessDirectives, error) {
			return l.fetchRemote(ctx, res)
		})

	case models.ResourceKindLocal:
		path, err := l.keys.PathKey(res.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrConfig, err)
		}
		return l.store(l.local, opts).ReadThrough(ctx, path, func(ctx context.Context) (models.CompiledTemplate, *models.FreshnessDirectives, error) {
			tpl, err := l.readLocal(path)
			return tpl, nil, err
		})

	default:
		return nil, fmt.Errorf("%w: template resource is required", models.ErrConfig)
	}
}

func (l *Loader) store(s interfaces.TemplateCache, opts models.LoadOptions) interfaces.TemplateCache {
	if opts.DisableCache {
		return l.bypass
	}
	return s
}

// fetchRemote performs the GET and compiles the body. The Cache-Control header
// of the response decides the entry lifetime.
func (l *Loader) fetchRemote(ctx context.Context, res models.Resource) (models.CompiledTemplate, *models.FreshnessDirectives, error) {
	defer metrics.TimeFetch("remote")()

	header := http.Header{}
	for name, values := range res.Header {
		header[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	}
	header.Set("Accept", AcceptHeader)

	resp, err := l.transport.Fetch(ctx, &models.Request{URL: res.URL, Header: header})
	if err != nil {
		metrics.RecordFetchError("remote")
		return nil, nil, models.EnsureKind(err, models.ErrFetch)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		metrics.RecordFetchError("remote")
		l.logger.Debug("Remote template request failed", zap.String("url", res.URL), zap.Int("status", resp.StatusCode))
		return nil, nil, &models.StatusError{URL: res.URL, StatusCode: resp.StatusCode}
	}

	tpl, err := l.compiler.Compile(string(resp.Body))
	if err != nil {
		metrics.RecordFetchError("remote")
		return nil, nil, fmt.Errorf("compile %s: %w", res.URL, models.EnsureKind(err, models.ErrCompile))
	}

	return tpl, freshness.ParseCacheControl(resp.Header.Get("Cache-Control")), nil
}

func (l *Loader) readLocal(path string) (models.CompiledTemplate, error) {
	defer metrics.TimeFetch("local")()

	data, err := l.fs.ReadFile(path)
	if err != nil {
		metrics.RecordFetchError("local")
		return nil, fmt.Errorf("read %s: %w", path, models.EnsureKind(err, models.ErrRead))
	}

	tpl, err := l.compiler.Compile(string(data))
	if err != nil {
		metrics.RecordFetchError("local")
		return nil, fmt.Errorf("compile %s: %w", path, models.EnsureKind(err, models.ErrCompile))
	}
	return tpl, nil
}
