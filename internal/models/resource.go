package models

import (
	"net/http"
	"strings"
)

// ResourceKind identifies where a template comes from
type ResourceKind string

const (
	ResourceKindNone        ResourceKind = "none"
	ResourceKindRemote      ResourceKind = "remote"
	ResourceKindLocal       ResourceKind = "local"
	ResourceKindPrecompiled ResourceKind = "precompiled"
)

// Resource names a single template: a URL (optionally with request headers),
// a local file path, or an already compiled template
type Resource struct {
	URL      string
	Header   http.Header
	Path     string
	Template CompiledTemplate
}

// Remote returns a resource fetched from url
func Remote(url string) Resource {
	return Resource{URL: url}
}

// RemoteRequest returns a resource fetched from url with extra request headers
func RemoteRequest(url string, header http.Header) Resource {
	return Resource{URL: url, Header: header}
}

// Local returns a resource read from the file at path
func Local(path string) Resource {
	return Resource{Path: path}
}

// Precompiled wraps a template that bypasses fetching and caching
func Precompiled(tpl CompiledTemplate) Resource {
	return Resource{Template: tpl}
}

// Kind reports the resource kind. A compiled template wins over URL and path.
func (r Resource) Kind() ResourceKind {
	switch {
	case r.Template != nil:
		return ResourceKindPrecompiled
	case r.URL != "":
		return ResourceKindRemote
	case r.Path != "":
		return ResourceKindLocal
	default:
		return ResourceKindNone
	}
}

// IsZero reports whether the resource names nothing
func (r Resource) IsZero() bool {
	return r.Kind() == ResourceKindNone
}

// String returns the identifier used in logs and errors
func (r Resource) String() string {
	switch r.Kind() {
	case ResourceKindRemote:
		return r.URL
	case ResourceKindLocal:
		return r.Path
	case ResourceKindPrecompiled:
		return "<precompiled>"
	default:
		return "<none>"
	}
}

// Request is the descriptor handed to a Transport
type Request struct {
	URL    string
	Header http.Header
}

// Response is what a Transport returns for a completed exchange
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ParseResource maps a configuration string to a resource: http(s) URLs are
// remote, anything else is a local path, and an empty string names nothing
func ParseResource(s string) Resource {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch {
	case s == "":
		return Resource{}
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return Remote(s)
	default:
		return Local(s)
	}
}
