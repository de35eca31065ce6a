package models

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the render core wraps one of these.
var (
	ErrFetch   = errors.New("fetch error")
	ErrRead    = errors.New("read error")
	ErrCompile = errors.New("compile error")
	ErrConfig  = errors.New("config error")
)

// StatusError is returned when a remote template responds with status >= 400
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: GET %s: unexpected status %d", ErrFetch, e.URL, e.StatusCode)
}

// Unwrap makes errors.Is(err, ErrFetch) hold
func (e *StatusError) Unwrap() error {
	return ErrFetch
}

// EnsureKind returns err unchanged when it already wraps an error kind,
// otherwise it wraps err with kind
func EnsureKind(err error, kind error) error {
	for _, k := range []error{ErrFetch, ErrRead, ErrCompile, ErrConfig} {
		if errors.Is(err, k) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", kind, err)
}
