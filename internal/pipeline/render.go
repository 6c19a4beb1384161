package pipeline

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal"
)

// UnknownBucket is where items without a resolved location land when
// grouping for render.
const UnknownBucket = "Unknown"

type AisleGroup struct {
	Label string
	Items []internal.ResolvedItem
}

// GroupByAisle buckets resolved items by aisle label for rendering.
// Directives are excluded (RenderMarkdown lists them separately). Groups are
// sorted with numeric aisle labels in numeric order, everything else
// alphabetically after them, and the Unknown bucket last. Items keep source
// order within a group; grouping is strictly a render-time concern.
func GroupByAisle(items []internal.ResolvedItem) []AisleGroup {
	byLabel := map[string][]internal.ResolvedItem{}
	for _, item := range items {
		if item.IsDirective() {
			continue
		}
		label := UnknownBucket
		if item.Location != nil {
			label = item.Location.Aisle
		}
		byLabel[label] = append(byLabel[label], item)
	}

	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return aisleLess(labels[i], labels[j]) })

	out := make([]AisleGroup, 0, len(labels))
	for _, label := range labels {
		out = append(out, AisleGroup{Label: label, Items: byLabel[label]})
	}
	return out
}

// RenderMarkdown emits the shopping run as a Markdown checklist, one section
// per aisle, with shopper directives collected at the end.
func RenderMarkdown(title string, items []internal.ResolvedItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", title)

	for _, group := range GroupByAisle(items) {
		fmt.Fprintf(&b, "\n## %s\n\n", group.Label)
		for _, item := range group.Items {
			b.WriteString(renderLine(item))
		}
	}

	directives := []string{}
	for _, item := range items {
		if item.IsDirective() {
			directives = append(directives, *item.Directive)
		}
	}
	if len(directives) > 0 {
		b.WriteString("\n## Shopper's call\n\n")
		for _, d := range directives {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}

	return b.String()
}

// RenderHTML converts the Markdown rendering to HTML.
func RenderHTML(title string, items []internal.ResolvedItem) (string, error) {
	md := RenderMarkdown(title, items)
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderLine(item internal.ResolvedItem) string {
	name := ""
	if item.Name != nil {
		name = *item.Name
	}
	line := "- [ ] "
	if item.Qty != "" {
		line += item.Qty + " "
	}
	line += name
	if item.Notes != "" {
		line += " (" + item.Notes + ")"
	}
	if item.Location != nil && item.Location.Zone != nil {
		line += " [" + *item.Location.Zone + "]"
	}
	return line + "\n"
}

// aisleLess orders "Aisle 2" before "Aisle 10" and keeps Unknown last.
func aisleLess(a, b string) bool {
	if a == UnknownBucket {
		return false
	}
	if b == UnknownBucket {
		return true
	}
	an, aOK := trailingNumber(a)
	bn, bOK := trailingNumber(b)
	if aOK && bOK && an != bn {
		return an < bn
	}
	if aOK != bOK {
		return aOK
	}
	return a < b
}

func trailingNumber(label string) (int, bool) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, false
	}
	return n, true
}
