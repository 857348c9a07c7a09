package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`\s+`)

// Generate creates a URL-friendly identifier from the given name by
// lowercasing it and collapsing runs of whitespace into single hyphens.
//
// Examples:
//   - "Winter Collection" → "winter-collection"
//   - "  Men's Shoes " → "men's-shoes"
func Generate(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	return slugRegexp.ReplaceAllString(slug, "-")
}
