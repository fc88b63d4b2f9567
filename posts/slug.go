package posts

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonWordRe    = regexp.MustCompile(`[^\w-]+`)
	dashesRe     = regexp.MustCompile(`--+`)
)

// Slugify turns a title into the URL segment used by /blog/:slug.
func Slugify(title string) string {
	slug := strings.TrimSpace(strings.ToLower(title))
	slug = whitespaceRe.ReplaceAllString(slug, "-")
	slug = nonWordRe.ReplaceAllString(slug, "")
	return dashesRe.ReplaceAllString(slug, "-")
}
