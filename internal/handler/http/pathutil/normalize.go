// Package pathutil keeps metric labels bounded by collapsing dynamic path segments.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// Source IDs are catalog slugs such as "bbc-news" or "ars-technica".
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/sources/[A-Za-z0-9._-]+/articles$`), Template: "/sources/:id/articles"},
	{Pattern: regexp.MustCompile(`^/sources/[A-Za-z0-9._-]+$`), Template: "/sources/:id"},
}

// staticPaths are the routes that carry no identifier.
var staticPaths = []string{
	"/headlines", "/search", "/sources", "/favorites", "/favorites/all",
	"/favorites/status", "/favorites/toggle", "/favorites/export", "/cache",
	"/articles/content", "/countries", "/health", "/ready", "/live", "/metrics",
}

// unmatched is the label for paths no route serves. Scanners hitting random
// URLs would otherwise create a new series per path.
const unmatched = "/:other"

// NormalizePath maps a request path onto its route template.
//
//	NormalizePath("/sources/bbc-news")          // "/sources/:id"
//	NormalizePath("/sources/bbc-news/articles") // "/sources/:id/articles"
//	NormalizePath("/headlines?page=2")          // "/headlines"
//	NormalizePath("/favorites/")                // "/favorites"
//	NormalizePath("/wp-login.php")              // "/:other"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, s := range staticPaths {
		if path == s {
			return path
		}
	}
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	if path == "/" {
		return path
	}
	return unmatched
}

// GetExpectedCardinality returns the number of distinct labels NormalizePath can produce.
func GetExpectedCardinality() int {
	// +2 for "/" and unmatched
	return len(staticPaths) + len(pathPatterns) + 2
}
