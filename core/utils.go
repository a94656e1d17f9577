package core

import (
	"regexp"
	"strings"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

var (
	slugInvalidRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashRegex    = regexp.MustCompile(`-{2,}`)
)

// Slugify turns `s` into a URL-safe slug: lowercased, non-alphanumerics
// collapsed to single dashes.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = slugInvalidRegex.ReplaceAllString(s, "-")
	s = slugDashRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
