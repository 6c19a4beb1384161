package pipeline

import (
	"strings"
	"testing"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/rules"
)

const sampleList = `milk
Dz eggs x2

Produce:
3-4 avocados (dark green ones)
yellow or white potatoes
surprise us

Pantry
Cereal: Cheerios and Frosted Flakes
2 cans each: corn, peas
`

func TestParseDocument(t *testing.T) {
	items := ParseDocument(sampleList, rules.Default())

	names := []string{}
	for _, item := range items {
		if item.IsDirective() {
			names = append(names, "directive:"+*item.Directive)
			continue
		}
		names = append(names, *item.Name)
	}

	want := []string{
		"Milk",
		"Eggs",
		"Avocados",
		"Yellow or white potatoes",
		"directive:surprise us",
		"Cheerios",
		"Frosted Flakes",
		"Corn",
		"Peas",
	}
	if strings.Join(names, "|") != strings.Join(want, "|") {
		t.Fatalf("got %v want %v", names, want)
	}

	bySection := map[string]*string{}
	for _, item := range items {
		key := item.Raw
		bySection[key] = item.Section
	}
	if bySection["milk"] != nil {
		t.Fatal("pre-header item must have no section")
	}
	if sec := bySection["3-4 avocados (dark green ones)"]; sec == nil || *sec != "Produce" {
		t.Fatalf("section: %v", sec)
	}
	if sec := bySection["Cereal: Cheerios and Frosted Flakes"]; sec == nil || *sec != "Pantry" {
		t.Fatalf("section: %v", sec)
	}
}

func TestParseDocumentExclusiveShape(t *testing.T) {
	for _, item := range ParseDocument(sampleList, rules.Default()) {
		if item.IsDirective() {
			if item.Name != nil || item.LookupTerm != nil || item.Qty != "" {
				t.Fatalf("directive carries item fields: %+v", item)
			}
			continue
		}
		if item.Name == nil || item.LookupTerm == nil {
			t.Fatalf("item missing name or term: %+v", item)
		}
	}
}

func TestParseDocumentStable(t *testing.T) {
	first := ParseDocument(sampleList, rules.Default())
	second := ParseDocument(sampleList, rules.Default())
	if len(first) != len(second) {
		t.Fatalf("len %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Raw != b.Raw || a.Qty != b.Qty || a.Notes != b.Notes {
			t.Fatalf("item %d differs: %+v vs %+v", i, a, b)
		}
		if (a.Name == nil) != (b.Name == nil) || (a.Name != nil && *a.Name != *b.Name) {
			t.Fatalf("item %d name differs", i)
		}
	}
}
