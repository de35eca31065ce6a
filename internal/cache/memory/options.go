package memory

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Option configures a Cache
type Option func(*options)

type options struct {
	name       string
	maxEntries int
	clock      clock.Clock
	logger     *zap.Logger
}

// WithName sets the store name used in logs and metric labels
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithMaxEntries bounds the number of entries. Zero or less means unbounded.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maxEntries = n
	}
}

// WithClock replaces the wall clock, mainly for tests
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
