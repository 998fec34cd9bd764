package extract

import (
	"regexp"
	"strings"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reArtifacts  = regexp.MustCompile(`[^\w\s.,/-]`)
)

// Normalize collapses whitespace runs to single spaces and replaces
// characters outside [word, whitespace, '.', ',', '/', '-'] with a space.
// Pure and idempotent.
func Normalize(s string) string {
	s = reWhitespace.ReplaceAllString(s, " ")
	s = reArtifacts.ReplaceAllString(s, " ")
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
