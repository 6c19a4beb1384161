package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var reSpaces = regexp.MustCompile(`\s+`)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CollapseSpaces trims the string and collapses internal whitespace runs to
// a single space.
func CollapseSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// CapitalizeFirst uppercases the first rune of the string.
func CapitalizeFirst(input string) string {
	r := []rune(input)
	if len(r) == 0 {
		return input
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// FoldKey derives the cache key for a lookup term: lowercase, collapsed
// whitespace, accents stripped (jalapeño and jalapeno hit the same row).
func FoldKey(term string) string {
	folded, _, _ := transform.String(stripAccents, strings.ToLower(CollapseSpaces(term)))
	return folded
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }
