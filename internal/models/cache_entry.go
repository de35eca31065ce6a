package models

import (
	"time"
)

// TTL represents cache time-to-live configuration
type TTL struct {
	Fresh   time.Duration // How long the value is considered fresh
	Stale   time.Duration // How long a stale value can still be served (stale-while-revalidate)
	Forever bool          // Entry never expires, Fresh and Stale are ignored
}

// ForeverTTL is the TTL used by stores holding local resources
var ForeverTTL = TTL{Forever: true}

// CacheEntry holds a cached value together with its freshness window.
//
//	[CreatedAt, ExpiresAt)   fresh
//	[ExpiresAt, StaleUntil)  stale but usable
//	[StaleUntil, ...)        expired, never returned
type CacheEntry[V any] struct {
	Value      V
	CreatedAt  time.Time
	ExpiresAt  time.Time
	StaleUntil time.Time
	Forever    bool
}

// NewCacheEntry builds an entry created at now with the given TTL
func NewCacheEntry[V any](value V, now time.Time, ttl TTL) *CacheEntry[V] {
	entry := &CacheEntry[V]{
		Value:     value,
		CreatedAt: now,
		Forever:   ttl.Forever,
	}
	if !ttl.Forever {
		entry.ExpiresAt = now.Add(ttl.Fresh)
		entry.StaleUntil = entry.ExpiresAt.Add(ttl.Stale)
	}
	return entry
}

// IsFresh reports whether the entry can be served without revalidation
func (e *CacheEntry[V]) IsFresh(now time.Time) bool {
	return e.Forever || now.Before(e.ExpiresAt)
}

// IsStale reports whether now falls into the stale-while-revalidate window
func (e *CacheEntry[V]) IsStale(now time.Time) bool {
	if e.Forever {
		return false
	}
	return !now.Before(e.ExpiresAt) && now.Before(e.StaleUntil)
}

// IsExpired reports whether the entry is past its stale window and must not be used
func (e *CacheEntry[V]) IsExpired(now time.Time) bool {
	if e.Forever {
		return false
	}
	return !now.Before(e.StaleUntil)
}
