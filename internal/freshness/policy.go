package freshness

import (
	"time"

	"go-remote-handlebars/internal/models"
)

const (
	// DefaultMaxAge is the instance default freshness lifetime
	DefaultMaxAge = 60 * time.Second
	// DefaultStaleWhileRevalidate is the instance default stale window
	DefaultStaleWhileRevalidate = time.Duration(0)
)

// Policy reconciles server supplied directives with instance defaults
type Policy struct {
	DefaultMaxAge               time.Duration
	DefaultStaleWhileRevalidate time.Duration
	Forever                     bool // entries without directives never expire
}

// NewPolicy returns a TTL policy with the given defaults
func NewPolicy(maxAge, staleWhileRevalidate time.Duration) Policy {
	return Policy{
		DefaultMaxAge:               maxAge,
		DefaultStaleWhileRevalidate: staleWhileRevalidate,
	}
}

// ForeverPolicy returns the policy of the local resource store
func ForeverPolicy() Policy {
	return Policy{Forever: true}
}

// Resolve returns the effective TTL for a value loaded with the given directives.
// The boolean is false when the value must not be cached at all.
//
// Priority:
//  1. no-store, no-cache or must-revalidate: do not cache
//  2. max-age present: use it, stale-while-revalidate from directives or the default
//  3. otherwise: instance defaults
func (p Policy) Resolve(d *models.FreshnessDirectives) (models.TTL, bool) {
	if d != nil && (d.NoStore || d.NoCache || d.MustRevalidate) {
		return models.TTL{}, false
	}

	if d != nil && d.MaxAge != nil {
		ttl := models.TTL{Fresh: *d.MaxAge, Stale: p.DefaultStaleWhileRevalidate}
		if d.StaleWhileRevalidate != nil {
			ttl.Stale = *d.StaleWhileRevalidate
		}
		return ttl, ttl.Fresh+ttl.Stale > 0
	}

	if p.Forever {
		return models.ForeverTTL, true
	}

	ttl := models.TTL{Fresh: p.DefaultMaxAge, Stale: p.DefaultStaleWhileRevalidate}
	return ttl, ttl.Fresh+ttl.Stale > 0
}
