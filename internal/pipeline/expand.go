package pipeline

import (
	"regexp"
	"strings"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/rules"
)

var (
	andSplit = regexp.MustCompile(`(?i)\s+and\s+`)
	andWord  = regexp.MustCompile(`(?i)\band\b`)
)

// Expand turns one items block into zero or more entries. The category and
// shared-quantity labels are extracted once per line and shared by every
// entry expanded from it; they never persist across lines.
func Expand(block internal.Block, rs *rules.Ruleset) []internal.ExpandedEntry {
	if block.Kind == internal.BlockHeader {
		return nil
	}

	text := strings.TrimSpace(block.Text)
	if text == "" {
		return nil
	}

	if phrase, ok := rs.MatchDirective(text); ok {
		return []internal.ExpandedEntry{{
			Raw:       block.Raw,
			Section:   block.Section,
			Directive: &phrase,
		}}
	}

	var category, sharedQty *string

	if cat, rest, ok := rs.MatchCategory(text); ok {
		category = &cat
		text = rest
	} else if cat, rest, ok := fallbackCategory(text, rs); ok {
		category = &cat
		text = rest
	}

	if phrase, rest, ok := rs.MatchSharedQty(text); ok {
		sharedQty = &phrase
		text = rest
	}

	out := []internal.ExpandedEntry{}
	for _, segment := range strings.Split(text, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		if phrase, ok := rs.MatchDirective(segment); ok {
			out = append(out, internal.ExpandedEntry{
				Raw:       block.Raw,
				Section:   block.Section,
				Directive: &phrase,
			})
			continue
		}

		segment = strings.TrimSuffix(segment, ".")
		for _, fragment := range splitOnAnd(segment, rs) {
			fragment = strings.TrimSpace(fragment)
			if fragment == "" {
				continue
			}
			out = append(out, internal.ExpandedEntry{
				Raw:       block.Raw,
				Section:   block.Section,
				ItemText:  fragment,
				Category:  category,
				SharedQty: sharedQty,
			})
		}
	}

	return out
}

// fallbackCategory treats "Label: a, b" as an ad-hoc category when the label
// is not a shared-quantity phrase and the tail actually enumerates items.
func fallbackCategory(text string, rs *rules.Ruleset) (category, remainder string, ok bool) {
	idx := strings.Index(text, ":")
	if idx <= 0 {
		return "", "", false
	}
	label := strings.TrimSpace(text[:idx])
	tail := strings.TrimSpace(text[idx+1:])
	if label == "" || tail == "" {
		return "", "", false
	}
	if rs.IsSharedQtyPhrase(label) {
		return "", "", false
	}
	if !strings.Contains(tail, ",") && !andWord.MatchString(tail) {
		return "", "", false
	}
	return label, tail, true
}

func splitOnAnd(segment string, rs *rules.Ruleset) []string {
	if rs.IsProtectedCompound(segment) {
		return []string{segment}
	}
	return andSplit.Split(segment, -1)
}
