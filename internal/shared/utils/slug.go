package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// GenerateSlug turns arbitrary text into a lowercase, hyphen-separated,
// filesystem- and URL-safe slug. Diacritics fold to their base letter
// ("Crème Brûlée" -> "creme-brulee"); everything else non-alphanumeric is
// dropped.
func GenerateSlug(input string) string {
	folded := removeDiacritics(input)
	lower := strings.ToLower(folded)
	hyphenated := strings.ReplaceAll(lower, " ", "-")
	cleaned := nonSlugChars.ReplaceAllString(hyphenated, "")
	normalized := hyphenRuns.ReplaceAllString(cleaned, "-")
	return strings.Trim(normalized, "-")
}

// removeDiacritics decomposes to NFD and strips combining marks.
func removeDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return out
}
