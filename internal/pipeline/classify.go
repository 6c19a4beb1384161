package pipeline

import (
	"strings"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/rules"
)

// Classify splits a document into blocks. Header lines set the running
// section; any inline text after a header's colon is re-emitted as its own
// items block carrying the section just set. Blank lines are dropped.
func Classify(doc string, rs *rules.Ruleset) []internal.Block {
	out := []internal.Block{}
	var section *string

	for _, line := range splitLines(doc) {
		if label, ok := rs.MatchHeader(line); ok {
			sec := label
			section = &sec
			out = append(out, internal.Block{
				Kind:    internal.BlockHeader,
				Text:    line,
				Section: section,
				Raw:     line,
			})
			if rest := afterColon(line); rest != "" {
				out = append(out, internal.Block{
					Kind:    internal.BlockItems,
					Text:    rest,
					Section: section,
					Raw:     line,
				})
			}
			continue
		}

		out = append(out, internal.Block{
			Kind:    internal.BlockItems,
			Text:    line,
			Section: section,
			Raw:     line,
		})
	}

	return out
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func afterColon(line string) string {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(line[idx+1:])
}
