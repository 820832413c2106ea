package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Make creates a URL-friendly slug from a tour name.
//
// Examples:
//   - "The Forest Hiker" → "the-forest-hiker"
//   - "Sea   Explorer!" → "sea-explorer"
func Make(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
