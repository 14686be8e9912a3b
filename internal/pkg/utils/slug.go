package utils

import (
	"regexp"
	"strings"
)

var slugInvalidRuns = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a display name into a URL-safe slug: lowercase, runs of
// non-alphanumeric characters collapsed to a single hyphen, leading and
// trailing hyphens stripped.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugInvalidRuns.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}
