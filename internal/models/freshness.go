package models

import "time"

// FreshnessDirectives are the cache-control directives relevant to template caching.
// A nil *FreshnessDirectives means the response carried no cache-control header.
type FreshnessDirectives struct {
	MaxAge               *time.Duration
	StaleWhileRevalidate *time.Duration
	NoStore              bool
	NoCache              bool
	MustRevalidate       bool
}
