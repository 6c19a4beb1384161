package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatchHeader(t *testing.T) {
	rs := Default()

	cases := []struct {
		name  string
		line  string
		want  string
		match bool
	}{
		{name: "department with colon", line: "Dairy:", want: "Dairy", match: true},
		{name: "department bare", line: "Produce", want: "Produce", match: true},
		{name: "aisle number", line: "Aisle 7:", want: "Aisle 7", match: true},
		{name: "parenthetical stripped", line: "Frozen (check freezer first):", want: "Frozen", match: true},
		{name: "multiword department", line: "cleaning supplies", want: "cleaning supplies", match: true},
		{name: "item is not a header", line: "2 cans of corn", match: false},
		{name: "category noun with items is not a header", line: "Cereal: Cheerios", match: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := rs.MatchHeader(tc.line)
			if ok != tc.match {
				t.Fatalf("match=%v want %v", ok, tc.match)
			}
			if ok && got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestMatchDirective(t *testing.T) {
	rs := Default()

	for _, phrase := range []string{
		"surprise us", "Surprise me!", "whatever looks good",
		"your choice", "something sweet", "use your best judgement", "etc.",
	} {
		if _, ok := rs.MatchDirective(phrase); !ok {
			t.Fatalf("%q should be a directive", phrase)
		}
	}
	if _, ok := rs.MatchDirective("2 bags of chips"); ok {
		t.Fatal("item matched as directive")
	}
	if _, ok := rs.MatchDirective("surprise us with cookies"); ok {
		t.Fatal("partial match must not count")
	}
}

func TestMatchCategoryLongestFirst(t *testing.T) {
	rs := Default()

	cat, rest, ok := rs.MatchCategory("Cereals: Cheerios, Frosted Flakes")
	if !ok || cat != "Cereals" || rest != "Cheerios, Frosted Flakes" {
		t.Fatalf("got cat=%q rest=%q ok=%v", cat, rest, ok)
	}
	// "fruits" must win over its prefix "fruit".
	cat, rest, ok = rs.MatchCategory("fruits: apples and pears")
	if !ok || cat != "fruits" || rest != "apples and pears" {
		t.Fatalf("got cat=%q rest=%q ok=%v", cat, rest, ok)
	}
	if _, _, ok := rs.MatchCategory("eggs and bacon"); ok {
		t.Fatal("no colon must not match")
	}
}

func TestMatchSharedQty(t *testing.T) {
	rs := Default()

	phrase, rest, ok := rs.MatchSharedQty("2 cans each: corn, peas, green beans")
	if !ok || phrase != "2 cans each" || rest != "corn, peas, green beans" {
		t.Fatalf("got phrase=%q rest=%q ok=%v", phrase, rest, ok)
	}
	if !rs.IsSharedQtyPhrase("3 boxes each") {
		t.Fatal("bare shared phrase should match")
	}
	if rs.IsSharedQtyPhrase("snacks") {
		t.Fatal("plain word matched as shared phrase")
	}
}

func TestMatchQtyUnitPriority(t *testing.T) {
	rs := Default()

	// "packs of" must consume the whole unit, not stop at "packs".
	qty, rest, ok := rs.MatchQtyUnit("2 packs of gum")
	if !ok || qty != "2 packs of" || rest != "gum" {
		t.Fatalf("got qty=%q rest=%q ok=%v", qty, rest, ok)
	}
	qty, rest, ok = rs.MatchQtyUnit("3-4 cans tomato soup")
	if !ok || qty != "3-4 cans" || rest != "tomato soup" {
		t.Fatalf("got qty=%q rest=%q ok=%v", qty, rest, ok)
	}
	if _, _, ok := rs.MatchQtyUnit("avocados"); ok {
		t.Fatal("no quantity must not match")
	}
}

func TestStripPrefixesAndSuffixes(t *testing.T) {
	rs := Default()

	if got := rs.StripPrefixes("fresh organic baby spinach"); got != "spinach" {
		t.Fatalf("got %q", got)
	}
	if got := rs.StripSuffixes("granola bars we eat"); got != "granola bars" {
		t.Fatalf("got %q", got)
	}
	if got := rs.StripSuffixes("salad in a bag for the week"); got != "salad" {
		t.Fatalf("got %q", got)
	}
}

func TestIsProtectedCompound(t *testing.T) {
	rs := Default()

	if !rs.IsProtectedCompound("Half and Half x6") {
		t.Fatal("compound not protected")
	}
	if rs.IsProtectedCompound("chips and dip") {
		t.Fatal("non-compound protected")
	}
}

func TestLoadOverridesOneSection(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "rules.yaml")
	blob := []byte("suffixes:\n  - \"the good kind\"\n")
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		t.Fatal(err)
	}

	rs, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := rs.StripSuffixes("coffee the good kind"); got != "coffee" {
		t.Fatalf("got %q", got)
	}
	// Overriding suffixes must not disturb the default tables.
	if got := rs.StripSuffixes("granola bars we eat"); got != "granola bars we eat" {
		t.Fatalf("default suffixes leaked through: %q", got)
	}
	if _, ok := rs.MatchHeader("Dairy:"); !ok {
		t.Fatal("default headers lost")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
