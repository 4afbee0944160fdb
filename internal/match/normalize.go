package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	punctPattern    = regexp.MustCompile(`[^\pL\pN\s]`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

// normalize lowercases the input, strips diacritics so "Jose" finds "José",
// replaces punctuation with spaces, and collapses runs of whitespace.
func normalize(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = punctPattern.ReplaceAllString(folded, " ")
	folded = spacePattern.ReplaceAllString(folded, " ")
	return strings.TrimSpace(folded)
}
