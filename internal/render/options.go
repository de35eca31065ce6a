package render

import (
	"time"

	"github.com/benbjohnson/clock"

	"go-remote-handlebars/internal/freshness"
	"go-remote-handlebars/internal/models"
)

// DefaultPlaceholder is the context key receiving the rendered view when a layout is used
const DefaultPlaceholder = "content"

// Config holds the instance level defaults. Start from DefaultConfig: the
// zero value has no freshness window, so remote templates without
// cache-control directives would not be cached.
type Config struct {
	// Name tells engines of one process apart in the store label of the
	// metrics: stores are labelled "<name>:remote" instead of "remote"
	Name string
	// Layout wraps every view unless a call overrides it. Nil means no layout.
	Layout *models.Resource
	// Placeholder is the context key the rendered view is written to. Defaults to "content".
	Placeholder string
	// Helpers are registered on every render
	Helpers map[string]any
	// PartialsDirs are scanned in order, later directories override earlier ones
	PartialsDirs []string
	// Extensions recognised when scanning partial directories
	Extensions []string

	// MaxAge and StaleWhileRevalidate are the defaults for remote templates
	// whose responses carry no cache-control directives
	MaxAge               time.Duration
	StaleWhileRevalidate time.Duration
	// Size bounds the number of remote templates kept. Zero means unbounded.
	Size int

	// Clock drives cache expiry, nil means the wall clock
	Clock clock.Clock
}

// DefaultConfig returns a Config with the documented defaults
func DefaultConfig() Config {
	return Config{
		Placeholder:          DefaultPlaceholder,
		MaxAge:               freshness.DefaultMaxAge,
		StaleWhileRevalidate: freshness.DefaultStaleWhileRevalidate,
	}
}

// Options are per-render overrides of Config
type Options struct {
	// Layout replaces the configured layout for this call. A zero Resource disables it.
	Layout *models.Resource
	// NoLayout renders the view alone even when a layout is configured
	NoLayout bool
	// Placeholder replaces the configured placeholder key
	Placeholder string
	// Helpers are added to, and override, the configured helpers
	Helpers map[string]any
	// PartialsDirs replaces the configured partial directories
	PartialsDirs []string
	// Data is exposed to templates as @-variables
	Data map[string]any
	// DisableCache fetches and compiles everything for this call without touching the stores
	DisableCache bool
}

func (c Config) storeName(store string) string {
	if c.Name == "" {
		return store
	}
	return c.Name + ":" + store
}

func (o Options) loadOptions() models.LoadOptions {
	return models.LoadOptions{DisableCache: o.DisableCache}
}
