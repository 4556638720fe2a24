package posters

import (
	"regexp"
	"strings"
)

var trailingYearRegex = regexp.MustCompile(`\s*\(\d{4}\)\s*$`)

// NormalizeTitle strips a trailing parenthesized year ("Dune (2021)" ->
// "Dune") so the title can be used as a search query.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(trailingYearRegex.ReplaceAllString(title, ""))
}
