package pipeline

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/rules"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/util"
)

var (
	parenNote   = regexp.MustCompile(`\(([^)]*)\)`)
	halfAndHalf = regexp.MustCompile(`(?i)1/2\s*(?:&|and)\s*1/2`)
	dzPrefix    = regexp.MustCompile(`(?i)^dz\b`)
	trailingX   = regexp.MustCompile(`(?i)\s+x\s?(\d+)$`)
	leadingNum  = regexp.MustCompile(`^(\d+(?:-\d+)?)\s+(.+)$`)
	orPhrase    = regexp.MustCompile(`(?i)^(.+?)\s+or\s+(.+)$`)
	veggiesWord = regexp.MustCompile(`(?i)\bveggies\b`)
)

// Extract turns one expanded entry into its terminal record. The quantity
// rules run in a fixed priority order (trailing xN, number+unit, bare
// number); reordering them changes observable output.
func Extract(entry internal.ExpandedEntry, rs *rules.Ruleset) internal.ParsedItem {
	if entry.Directive != nil {
		return internal.ParsedItem{
			Raw:       entry.Raw,
			Directive: entry.Directive,
			Section:   entry.Section,
		}
	}

	text, notes := extractNotes(entry.ItemText)

	// Shorthand: "1/2 & 1/2" and a leading "dz" dozen marker.
	text = halfAndHalf.ReplaceAllString(text, "half and half")
	dozen := false
	if loc := dzPrefix.FindStringIndex(text); loc != nil {
		text = strings.TrimSpace(text[loc[1]:])
		dozen = true
	}

	qty, name := extractQty(text, rs)
	if dozen {
		if qty != "" {
			qty += " dozen"
		} else {
			qty = "dozen"
		}
	}
	if qty == "" && entry.SharedQty != nil {
		qty = *entry.SharedQty
	}

	if expansion, ok := rs.Abbreviation(name); ok {
		name = expansion
	}

	term := lookupTerm(name, rs)

	name = util.CollapseSpaces(name)
	if name == strings.ToLower(name) {
		name = util.CapitalizeFirst(name)
	}

	return internal.ParsedItem{
		Raw:        entry.Raw,
		Name:       &name,
		Qty:        qty,
		Notes:      strings.Join(notes, "; "),
		LookupTerm: &term,
		Category:   entry.Category,
		Section:    entry.Section,
	}
}

// extractNotes pulls every balanced (...) span out of the text. Stray
// unbalanced parentheses are left in place.
func extractNotes(text string) (string, []string) {
	notes := []string{}
	for {
		m := parenNote.FindStringSubmatchIndex(text)
		if m == nil {
			break
		}
		note := strings.TrimSpace(text[m[2]:m[3]])
		if note != "" {
			notes = append(notes, note)
		}
		text = text[:m[0]] + " " + text[m[1]:]
	}
	return util.CollapseSpaces(text), notes
}

func extractQty(text string, rs *rules.Ruleset) (qty, name string) {
	if m := trailingX.FindStringSubmatch(text); m != nil {
		return m[1], strings.TrimSpace(trailingX.ReplaceAllString(text, ""))
	}

	if q, rest, ok := rs.MatchQtyUnit(text); ok {
		return q, rest
	}

	if m := leadingNum.FindStringSubmatch(text); m != nil {
		if !looksLikeProductCode(m[2]) {
			return m[1], strings.TrimSpace(m[2])
		}
	}

	return "", text
}

// looksLikeProductCode guards the bare-number rule: a short lowercase word
// right after the digits ("7 up") may be a product name fused with a number,
// so the number stays in the name.
func looksLikeProductCode(rest string) bool {
	word := rest
	if idx := strings.IndexFunc(word, unicode.IsSpace); idx >= 0 {
		word = word[:idx]
	}
	runes := []rune(word)
	if len(runes) == 0 || len(runes) > 2 {
		return false
	}
	return unicode.IsLower(runes[0])
}

// lookupTerm derives the normalized search key from a display name.
func lookupTerm(name string, rs *rules.Ruleset) string {
	term := name
	if m := orPhrase.FindStringSubmatch(term); m != nil {
		term = resolveOr(m[1], m[2])
	}
	term = rs.StripPrefixes(term)
	term = rs.StripSuffixes(term)
	term = veggiesWord.ReplaceAllString(term, "vegetables")
	return strings.ToLower(util.CollapseSpaces(term))
}

// resolveOr reduces "<A> or <B>" to a single noun: the shared trailing word
// if both halves end the same, otherwise the longer half's last word, with
// B verbatim as the last resort.
func resolveOr(a, b string) string {
	aWords := strings.Fields(a)
	bWords := strings.Fields(b)
	if len(aWords) == 0 || len(bWords) == 0 {
		return b
	}
	lastA := strings.ToLower(aWords[len(aWords)-1])
	lastB := strings.ToLower(bWords[len(bWords)-1])
	if lastA == lastB {
		return lastB
	}
	if len(bWords) > 1 {
		return bWords[len(bWords)-1]
	}
	if len(aWords) > 1 {
		return aWords[len(aWords)-1]
	}
	return b
}
