// Package rules holds the curated word tables the normalization pipeline
// runs on: header and directive patterns, category nouns, quantity units,
// protected compound phrases, abbreviations, and strip lists. The tables are
// configuration, not code; Load replaces any section from a YAML file
// without touching pipeline logic.
package rules

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tables is the external, YAML-loadable shape of the rule data. Every list
// is ordered; evaluation order is a behavioral contract, not a style choice.
type Tables struct {
	// AisleHeaders and Departments recognize section header lines, tried in
	// this order. AisleHeaders entries are regex fragments ("aisle\s*\d+"),
	// Departments entries are literal phrases.
	AisleHeaders []string `yaml:"aisle_headers"`
	Departments  []string `yaml:"departments"`

	// Directives are regex fragments matching vague non-item phrases.
	Directives []string `yaml:"directives"`

	// Categories are literal nouns accepted as an inline "Noun:" label.
	Categories []string `yaml:"categories"`

	// SharedUnits and QtyUnits are regex fragments. QtyUnits order encodes
	// the quantity-rule priority ("packs? of" must precede "packs?").
	SharedUnits []string `yaml:"shared_units"`
	QtyUnits    []string `yaml:"qty_units"`

	// Compounds are lowercase phrases that must never be split on "and".
	Compounds []string `yaml:"compounds"`

	// Abbreviations expand a whole name when it matches a key exactly.
	Abbreviations map[string]string `yaml:"abbreviations"`

	// Prefixes and Suffixes are stripped from lookup terms.
	Prefixes []string `yaml:"prefixes"`
	Suffixes []string `yaml:"suffixes"`
}

// DefaultTables returns the built-in rule data.
func DefaultTables() Tables {
	return Tables{
		AisleHeaders: []string{`aisle\s*\d+`},
		Departments: []string{
			"produce", "dairy", "meat", "seafood", "deli", "bakery",
			"frozen", "pantry", "snacks", "beverages", "household",
			"cleaning supplies", "personal care", "paper goods",
			"canned goods", "condiments", "baking", "pharmacy",
		},
		Directives: []string{
			`surprise (?:me|us)`,
			`whatever(?: (?:looks|sounds) good)?`,
			`anything(?: (?:works|is fine))?`,
			`(?:your|dealer'?s) (?:choice|pick)`,
			`something (?:sweet|salty|healthy|for (?:dinner|dessert|breakfast))`,
			`use your (?:best )?judge?ment`,
			`etc`,
		},
		Categories: []string{
			"fruit", "fruits", "veggies", "vegetables", "produce",
			"dairy", "meat", "meats", "cereal", "cereals", "snacks",
			"drinks", "beverages", "bread", "breads", "cheese", "cheeses",
			"frozen", "breakfast", "lunch", "dinner", "baking",
		},
		SharedUnits: []string{
			`bags?`, `cans?`, `box(?:es)?`, `packs?`, `ct`, `lbs?`,
			`bottles?`, `jars?`, `bunch(?:es)?`,
		},
		QtyUnits: []string{
			`large packs? of`, `packs? of`, `cans?`, `box(?:es)?`,
			`bags?`, `packs?`, `bottles?`, `jars?`, `bunch(?:es)?`,
		},
		Compounds: []string{
			"half and half", "1/2 and 1/2", "mac and cheese",
			"macaroni and cheese", "peanut butter and jelly",
			"salt and pepper", "sweet and sour", "pork and beans",
			"rice and beans", "chips and salsa",
		},
		Abbreviations: map[string]string{
			"oj":   "orange juice",
			"dz":   "dozen",
			"pb":   "peanut butter",
			"tp":   "toilet paper",
			"evoo": "extra virgin olive oil",
		},
		Prefixes: []string{
			"extra virgin", "fresh", "organic", "large", "small",
			"medium", "baby", "whole", "skim", "low fat", "fat free",
			"unsalted", "salted", "sliced", "shredded", "canned", "ripe",
		},
		Suffixes: []string{
			"we eat", "in a bag", "cans", "for the week", "to try",
		},
	}
}

// Ruleset is the compiled, immutable form of the tables. Build one at
// startup and share it freely; it is never mutated after construction.
type Ruleset struct {
	Tables Tables

	headerPatterns    []*regexp.Regexp
	directivePatterns []*regexp.Regexp
	categoryPattern   *regexp.Regexp
	sharedQtyPattern  *regexp.Regexp
	sharedQtyBare     *regexp.Regexp
	qtyUnitPattern    *regexp.Regexp
	prefixPatterns    []*regexp.Regexp
	suffixPatterns    []*regexp.Regexp
	abbreviations     map[string]string
	compounds         []string
}

// Default compiles the built-in tables.
func Default() *Ruleset {
	rs, err := New(DefaultTables())
	if err != nil {
		panic(err)
	}
	return rs
}

// Load reads a YAML tables file and compiles it. Empty sections fall back
// to the built-in data, so a file can override just one list.
func Load(path string) (*Ruleset, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	var t Tables
	if err := yaml.Unmarshal(blob, &t); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}
	return New(mergeDefaults(t))
}

// New compiles a Ruleset from tables.
func New(t Tables) (*Ruleset, error) {
	rs := &Ruleset{
		Tables:        t,
		abbreviations: map[string]string{},
		compounds:     append([]string(nil), t.Compounds...),
	}
	for k, v := range t.Abbreviations {
		rs.abbreviations[strings.ToLower(strings.TrimSpace(k))] = v
	}

	for _, frag := range t.AisleHeaders {
		re, err := regexp.Compile(`(?i)^(` + frag + `)\s*(?:\([^)]*\))?\s*(?::|$)`)
		if err != nil {
			return nil, fmt.Errorf("aisle header %q: %w", frag, err)
		}
		rs.headerPatterns = append(rs.headerPatterns, re)
	}
	for _, dept := range t.Departments {
		re, err := regexp.Compile(`(?i)^(` + regexp.QuoteMeta(dept) + `)\s*(?:\([^)]*\))?\s*(?::|$)`)
		if err != nil {
			return nil, fmt.Errorf("department %q: %w", dept, err)
		}
		rs.headerPatterns = append(rs.headerPatterns, re)
	}

	for _, frag := range t.Directives {
		re, err := regexp.Compile(`(?i)^(?:` + frag + `)[.!]?$`)
		if err != nil {
			return nil, fmt.Errorf("directive %q: %w", frag, err)
		}
		rs.directivePatterns = append(rs.directivePatterns, re)
	}

	var err error
	rs.categoryPattern, err = regexp.Compile(
		`(?i)^(` + alternation(t.Categories, true) + `)\s*(?:\([^)]*\))?\s*:\s*(.*)$`)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}

	sharedUnits := alternation(t.SharedUnits, false)
	rs.sharedQtyPattern, err = regexp.Compile(
		`(?i)^(\d+\s*(?:` + sharedUnits + `)\s+each)\s*:\s*(.*)$`)
	if err != nil {
		return nil, fmt.Errorf("shared units: %w", err)
	}
	rs.sharedQtyBare = regexp.MustCompile(
		`(?i)^\d+\s*(?:` + sharedUnits + `)\s+each$`)

	rs.qtyUnitPattern, err = regexp.Compile(
		`(?i)^(\d+(?:-\d+)?)\s+(` + alternation(t.QtyUnits, false) + `)\s+(.+)$`)
	if err != nil {
		return nil, fmt.Errorf("qty units: %w", err)
	}

	for _, p := range t.Prefixes {
		re, err := regexp.Compile(`(?i)^(?:` + regexp.QuoteMeta(p) + `)\s+`)
		if err != nil {
			return nil, fmt.Errorf("prefix %q: %w", p, err)
		}
		rs.prefixPatterns = append(rs.prefixPatterns, re)
	}
	for _, s := range t.Suffixes {
		re, err := regexp.Compile(`(?i)\s+(?:` + regexp.QuoteMeta(s) + `)$`)
		if err != nil {
			return nil, fmt.Errorf("suffix %q: %w", s, err)
		}
		rs.suffixPatterns = append(rs.suffixPatterns, re)
	}

	return rs, nil
}

// MatchHeader tests a trimmed line against the header rules in table order.
// On match it returns the section label: the line with any trailing
// parenthetical removed and everything from the first colon on cut off.
func (rs *Ruleset) MatchHeader(line string) (string, bool) {
	for _, re := range rs.headerPatterns {
		if re.MatchString(line) {
			return sectionLabel(line), true
		}
	}
	return "", false
}

// MatchDirective reports whether the whole text is a vague directive phrase
// and returns it as written (whitespace-trimmed).
func (rs *Ruleset) MatchDirective(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	for _, re := range rs.directivePatterns {
		if re.MatchString(trimmed) {
			return trimmed, true
		}
	}
	return "", false
}

// MatchCategory matches a fixed category noun prefix ("Cereal:", possibly
// with a parenthetical before the colon) and returns the noun as written
// plus the remainder of the line.
func (rs *Ruleset) MatchCategory(text string) (category, remainder string, ok bool) {
	m := rs.categoryPattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// MatchSharedQty matches a leading "<n> <unit> each:" phrase and returns the
// phrase without the colon plus the remainder.
func (rs *Ruleset) MatchSharedQty(text string) (phrase, remainder string, ok bool) {
	m := rs.sharedQtyPattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// IsSharedQtyPhrase reports whether the text is exactly a shared-quantity
// phrase ("2 cans each"), used by the fallback category heuristic.
func (rs *Ruleset) IsSharedQtyPhrase(text string) bool {
	return rs.sharedQtyBare.MatchString(strings.TrimSpace(text))
}

// IsProtectedCompound reports whether the segment contains a compound phrase
// that must not be split on "and".
func (rs *Ruleset) IsProtectedCompound(segment string) bool {
	lower := strings.ToLower(segment)
	for _, c := range rs.compounds {
		if strings.Contains(lower, c) {
			return true
		}
	}
	return false
}

// MatchQtyUnit matches a leading "<n>[-m] <unit>" quantity and returns the
// quantity text ("2 cans") and the remaining name.
func (rs *Ruleset) MatchQtyUnit(text string) (qty, rest string, ok bool) {
	m := rs.qtyUnitPattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return m[1] + " " + m[2], strings.TrimSpace(m[3]), true
}

// Abbreviation returns the expansion for a whole-name abbreviation.
func (rs *Ruleset) Abbreviation(name string) (string, bool) {
	exp, ok := rs.abbreviations[strings.ToLower(strings.TrimSpace(name))]
	return exp, ok
}

// StripPrefixes removes leading adjective prefixes, repeatedly, in table
// order ("fresh organic basil" -> "basil").
func (rs *Ruleset) StripPrefixes(term string) string {
	for {
		stripped := term
		for _, re := range rs.prefixPatterns {
			stripped = re.ReplaceAllString(stripped, "")
		}
		if stripped == term {
			return term
		}
		term = stripped
	}
}

// StripSuffixes removes trailing qualifier phrases, repeatedly, in table
// order ("granola bars we eat" -> "granola bars").
func (rs *Ruleset) StripSuffixes(term string) string {
	for {
		stripped := term
		for _, re := range rs.suffixPatterns {
			stripped = re.ReplaceAllString(stripped, "")
		}
		if stripped == term {
			return term
		}
		term = stripped
	}
}

var (
	trailingParen = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

func sectionLabel(line string) string {
	label := line
	if idx := strings.Index(label, ":"); idx >= 0 {
		label = label[:idx]
	}
	label = trailingParen.ReplaceAllString(label, "")
	return strings.TrimSpace(label)
}

// alternation joins fragments into a regex alternation. Literal entries are
// quoted and sorted longest-first so "fruits" wins over "fruit".
func alternation(entries []string, literal bool) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		if literal {
			parts = append(parts, regexp.QuoteMeta(e))
		} else {
			parts = append(parts, e)
		}
	}
	if literal {
		sort.Slice(parts, func(i, j int) bool { return len(parts[i]) > len(parts[j]) })
	}
	return strings.Join(parts, "|")
}

func mergeDefaults(t Tables) Tables {
	def := DefaultTables()
	if len(t.AisleHeaders) == 0 {
		t.AisleHeaders = def.AisleHeaders
	}
	if len(t.Departments) == 0 {
		t.Departments = def.Departments
	}
	if len(t.Directives) == 0 {
		t.Directives = def.Directives
	}
	if len(t.Categories) == 0 {
		t.Categories = def.Categories
	}
	if len(t.SharedUnits) == 0 {
		t.SharedUnits = def.SharedUnits
	}
	if len(t.QtyUnits) == 0 {
		t.QtyUnits = def.QtyUnits
	}
	if len(t.Compounds) == 0 {
		t.Compounds = def.Compounds
	}
	if len(t.Abbreviations) == 0 {
		t.Abbreviations = def.Abbreviations
	}
	if len(t.Prefixes) == 0 {
		t.Prefixes = def.Prefixes
	}
	if len(t.Suffixes) == 0 {
		t.Suffixes = def.Suffixes
	}
	return t
}
