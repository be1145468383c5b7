package ratelimit

import (
	"strings"
)

// MatchEndpoint returns the first configuration whose method and path pattern
// match the request, or nil when the default limit applies.
//
// Patterns use the path syntax of the server's ServeMux routes: "{id}" matches
// one non-empty segment, "{rest...}" matches the remainder and a trailing
// "{$}" matches only a path ending in a slash. Any other segment must match
// exactly, so "/api/resumes" does not cover "/api/resumes/abc".
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	for i := range configs {
		config := &configs[i]
		if config.Method != "" && config.Method != method {
			continue
		}
		if matchPattern(config.Path, path) {
			return config
		}
	}
	return nil
}

func matchPattern(pattern, path string) bool {
	if !strings.HasPrefix(pattern, "/") || !strings.HasPrefix(path, "/") {
		return false
	}

	patternSegs := strings.Split(pattern[1:], "/")
	pathSegs := strings.Split(path[1:], "/")
	for i, seg := range patternSegs {
		switch {
		case seg == "{$}":
			return i == len(pathSegs)-1 && pathSegs[i] == ""
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "...}"):
			return i < len(pathSegs)
		case i >= len(pathSegs):
			return false
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}"):
			if pathSegs[i] == "" {
				return false
			}
		case seg != pathSegs[i]:
			return false
		}
	}
	return len(patternSegs) == len(pathSegs)
}
