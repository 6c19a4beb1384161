package pipeline

import (
	"testing"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/rules"
)

func itemsBlock(text string) internal.Block {
	return internal.Block{Kind: internal.BlockItems, Text: text, Raw: text}
}

func TestExpandFixedCategory(t *testing.T) {
	entries := Expand(itemsBlock("Cereal: Cheerios and Frosted Flakes"), rules.Default())

	if len(entries) != 2 {
		t.Fatalf("entries=%+v", entries)
	}
	for i, want := range []string{"Cheerios", "Frosted Flakes"} {
		if entries[i].ItemText != want {
			t.Fatalf("entry %d: got %q want %q", i, entries[i].ItemText, want)
		}
		if entries[i].Category == nil || *entries[i].Category != "Cereal" {
			t.Fatalf("entry %d category: %+v", i, entries[i])
		}
	}
}

func TestExpandFallbackCategory(t *testing.T) {
	entries := Expand(itemsBlock("Stuff for tacos: shells, salsa and shredded cheese"), rules.Default())

	if len(entries) != 3 {
		t.Fatalf("entries=%+v", entries)
	}
	for i, want := range []string{"shells", "salsa", "shredded cheese"} {
		if entries[i].ItemText != want {
			t.Fatalf("entry %d: got %q", i, entries[i].ItemText)
		}
		if entries[i].Category == nil || *entries[i].Category != "Stuff for tacos" {
			t.Fatalf("entry %d category: %+v", i, entries[i])
		}
	}
}

func TestExpandFallbackCategoryNeedsEnumeration(t *testing.T) {
	// A colon with a single-item tail is just an item with punctuation.
	entries := Expand(itemsBlock("Note: get receipts"), rules.Default())
	if len(entries) != 1 || entries[0].Category != nil {
		t.Fatalf("entries=%+v", entries)
	}
	if entries[0].ItemText != "Note: get receipts" {
		t.Fatalf("got %q", entries[0].ItemText)
	}
}

func TestExpandSharedQty(t *testing.T) {
	entries := Expand(itemsBlock("2 cans each: corn, peas, green beans"), rules.Default())

	if len(entries) != 3 {
		t.Fatalf("entries=%+v", entries)
	}
	for i, want := range []string{"corn", "peas", "green beans"} {
		if entries[i].ItemText != want {
			t.Fatalf("entry %d: got %q", i, entries[i].ItemText)
		}
		if entries[i].SharedQty == nil || *entries[i].SharedQty != "2 cans each" {
			t.Fatalf("entry %d shared qty: %+v", i, entries[i])
		}
	}
}

func TestExpandProtectedCompound(t *testing.T) {
	entries := Expand(itemsBlock("mac and cheese, salt and pepper grinders"), rules.Default())

	if len(entries) != 2 {
		t.Fatalf("entries=%+v", entries)
	}
	if entries[0].ItemText != "mac and cheese" {
		t.Fatalf("got %q", entries[0].ItemText)
	}
	if entries[1].ItemText != "salt and pepper grinders" {
		t.Fatalf("got %q", entries[1].ItemText)
	}
}

func TestExpandDirectives(t *testing.T) {
	entries := Expand(itemsBlock("surprise us"), rules.Default())
	if len(entries) != 1 || entries[0].Directive == nil || *entries[0].Directive != "surprise us" {
		t.Fatalf("entries=%+v", entries)
	}

	entries = Expand(itemsBlock("apples, whatever looks good"), rules.Default())
	if len(entries) != 2 {
		t.Fatalf("entries=%+v", entries)
	}
	if entries[0].ItemText != "apples" || entries[0].Directive != nil {
		t.Fatalf("first entry: %+v", entries[0])
	}
	if entries[1].Directive == nil || *entries[1].Directive != "whatever looks good" {
		t.Fatalf("second entry: %+v", entries[1])
	}
}

func TestExpandSkipsHeadersAndTrailingPeriod(t *testing.T) {
	header := internal.Block{Kind: internal.BlockHeader, Text: "Dairy:", Raw: "Dairy:"}
	if entries := Expand(header, rules.Default()); entries != nil {
		t.Fatalf("entries=%+v", entries)
	}

	entries := Expand(itemsBlock("milk."), rules.Default())
	if len(entries) != 1 || entries[0].ItemText != "milk" {
		t.Fatalf("entries=%+v", entries)
	}
}
