package cache

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strings"

	"go-remote-handlebars/internal/interfaces"
)

// Ensure KeyBuilderImpl implements interfaces.KeyBuilder
var _ interfaces.KeyBuilder = (*KeyBuilderImpl)(nil)

// partialsKeyPrefix keeps partial set keys apart from template path keys
const partialsKeyPrefix = "partials:"

// KeyBuilderImpl implements the KeyBuilder interface
type KeyBuilderImpl struct{}

// NewKeyBuilder creates a new KeyBuilder instance
func NewKeyBuilder() interfaces.KeyBuilder {
	return &KeyBuilderImpl{}
}

// URLKey lowercases scheme and host, strips default ports and fragments.
// Path and query are kept verbatim since servers may treat them case-sensitively.
func (kb *KeyBuilderImpl) URLKey(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", errors.New("url cannot be empty")
	}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q must be absolute", rawURL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	hostname := strings.ToLower(u.Hostname())
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	switch {
	case port != "":
		u.Host = net.JoinHostPort(hostname, port)
	case strings.Contains(hostname, ":"):
		u.Host = "[" + hostname + "]"
	default:
		u.Host = hostname
	}
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}

// PathKey returns the cleaned absolute path
func (kb *KeyBuilderImpl) PathKey(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("path cannot be empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	return abs, nil
}

// PartialsKey concatenates the absolute directories in order. Order matters:
// later directories override earlier ones, so [a b] and [b a] are different sets.
func (kb *KeyBuilderImpl) PartialsKey(dirs []string) (string, error) {
	if len(dirs) == 0 {
		return "", errors.New("partial directories cannot be empty")
	}

	parts := make([]string, len(dirs))
	for i, dir := range dirs {
		abs, err := kb.PathKey(dir)
		if err != nil {
			return "", fmt.Errorf("failed to build key for directory %d: %w", i, err)
		}
		parts[i] = abs
	}

	return partialsKeyPrefix + strings.Join(parts, string(filepath.ListSeparator)), nil
}
