package app

import (
	"net/url"
	"strings"
)

// extractOriginHost returns the "host[:port]" portion of an origin URL.
func extractOriginHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

// matchOriginPattern reports whether host matches the given wildcard pattern.
// Patterns are exact hosts, "*.example.com" or "localhost:*".
func matchOriginPattern(pattern, host string) bool {
	pattern = strings.ToLower(extractOriginHost(pattern))
	host = strings.ToLower(host)
	if pattern == host {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		return strings.HasSuffix(host, pattern[1:])
	}
	if strings.HasSuffix(pattern, ":*") {
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	}
	return false
}

func originAllowed(patterns []string, origin string) bool {
	host := extractOriginHost(origin)
	for _, p := range patterns {
		if matchOriginPattern(p, host) {
			return true
		}
	}
	return false
}
