package pipeline

import (
	"testing"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/rules"
)

func TestClassifySectionsPropagate(t *testing.T) {
	doc := "milk\n\nDairy:\nyogurt\ncheese\n\nProduce\napples\n"
	blocks := Classify(doc, rules.Default())

	if len(blocks) != 6 {
		t.Fatalf("len=%d blocks=%+v", len(blocks), blocks)
	}

	if blocks[0].Kind != internal.BlockItems || blocks[0].Section != nil {
		t.Fatalf("pre-header line: %+v", blocks[0])
	}
	if blocks[1].Kind != internal.BlockHeader || *blocks[1].Section != "Dairy" {
		t.Fatalf("header: %+v", blocks[1])
	}
	for _, i := range []int{2, 3} {
		if blocks[i].Kind != internal.BlockItems || blocks[i].Section == nil || *blocks[i].Section != "Dairy" {
			t.Fatalf("block %d: %+v", i, blocks[i])
		}
	}
	if blocks[4].Kind != internal.BlockHeader || *blocks[4].Section != "Produce" {
		t.Fatalf("bare header: %+v", blocks[4])
	}
	if *blocks[5].Section != "Produce" {
		t.Fatalf("section did not switch: %+v", blocks[5])
	}
}

func TestClassifyInlineItemsAfterHeaderColon(t *testing.T) {
	blocks := Classify("Frozen: pizza, ice cream", rules.Default())

	if len(blocks) != 2 {
		t.Fatalf("len=%d blocks=%+v", len(blocks), blocks)
	}
	if blocks[0].Kind != internal.BlockHeader {
		t.Fatalf("first block: %+v", blocks[0])
	}
	if blocks[1].Kind != internal.BlockItems || blocks[1].Text != "pizza, ice cream" {
		t.Fatalf("inline items: %+v", blocks[1])
	}
	if blocks[1].Section == nil || *blocks[1].Section != "Frozen" {
		t.Fatalf("inline items section: %+v", blocks[1])
	}
	if blocks[1].Raw != "Frozen: pizza, ice cream" {
		t.Fatalf("raw must be the whole source line: %q", blocks[1].Raw)
	}
}

func TestClassifyCRLFAndBlankLines(t *testing.T) {
	blocks := Classify("eggs\r\n\r\n  \r\nbread\r\n", rules.Default())
	if len(blocks) != 2 || blocks[0].Text != "eggs" || blocks[1].Text != "bread" {
		t.Fatalf("blocks=%+v", blocks)
	}
}
