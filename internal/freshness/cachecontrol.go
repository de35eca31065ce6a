package freshness

import (
	"strconv"
	"strings"
	"time"

	"go-remote-handlebars/internal/models"
)

// ParseCacheControl extracts the directives template caching cares about from a
// Cache-Control header value. An empty header yields nil so instance defaults apply.
func ParseCacheControl(header string) *models.FreshnessDirectives {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}

	directives := &models.FreshnessDirectives{}
	for _, part := range strings.Split(header, ",") {
		name, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.Trim(strings.TrimSpace(value), `"`)

		switch name {
		case "no-store":
			directives.NoStore = true
		case "no-cache":
			directives.NoCache = true
		case "must-revalidate":
			directives.MustRevalidate = true
		case "max-age":
			if d, ok := parseSeconds(value); ok {
				directives.MaxAge = &d
			}
		case "stale-while-revalidate":
			if d, ok := parseSeconds(value); ok {
				directives.StaleWhileRevalidate = &d
			}
		}
	}
	return directives
}

// parseSeconds parses a non-negative delta-seconds value
func parseSeconds(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}
