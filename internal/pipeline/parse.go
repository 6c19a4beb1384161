package pipeline

import (
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/rules"
)

// ParseDocument runs the full normalization pipeline over one document and
// returns every record, items and directives interleaved in source order.
// Filtering directives out is the caller's concern.
func ParseDocument(doc string, rs *rules.Ruleset) []internal.ParsedItem {
	items := []internal.ParsedItem{}
	for _, block := range Classify(doc, rs) {
		for _, entry := range Expand(block, rs) {
			items = append(items, Extract(entry, rs))
		}
	}
	return items
}
