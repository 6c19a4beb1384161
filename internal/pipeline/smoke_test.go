package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/config"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/rules"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/storage"
)

type fakeLocator map[string]internal.ItemLocation

func (f fakeLocator) Locate(ctx context.Context, term string) (*internal.ItemLocation, error) {
	if loc, ok := f[term]; ok {
		return &loc, nil
	}
	return nil, nil
}

const smokeEmail = "From: family@example.com\r\n" +
	"To: shopper@example.com\r\n" +
	"Subject: groceries for the week\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Dairy:\r\n" +
	"milk x2\r\n" +
	"Dz eggs\r\n" +
	"\r\n" +
	"Produce:\r\n" +
	"3-4 avocados (dark green ones)\r\n" +
	"surprise us\r\n"

func TestSmokeEmailToExport(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	rawPath := filepath.Join(tmp, "fixture.eml")
	if err := os.WriteFile(rawPath, []byte(smokeEmail), 0o644); err != nil {
		t.Fatal(err)
	}

	list, err := db.UpsertList("imap", "<fixture-1@example.com>", "groceries for the week", "family@example.com", "2026-08-25T00:00:00Z", "hash", rawPath, "fetched")
	if err != nil {
		t.Fatal(err)
	}

	locator := fakeLocator{
		"milk": {Term: "milk", Aisle: "Aisle 3", Source: "api"},
		"eggs": {Term: "eggs", Aisle: "Aisle 3", Source: "api"},
	}

	cfg, _ := config.Load()
	svc := NewResolveService(db, cfg, rules.Default(), locator, nil)
	res, err := svc.ProcessList(context.Background(), list)
	if err != nil {
		t.Fatal(err)
	}
	if res.Items != 4 {
		t.Fatalf("items=%d", res.Items)
	}
	if res.Resolved != 2 || res.Unknown != 1 {
		t.Fatalf("resolved=%d unknown=%d", res.Resolved, res.Unknown)
	}

	stored, err := db.GetListByID(list.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored == nil || stored.Status != "processed" {
		t.Fatalf("list=%+v", stored)
	}

	items, err := db.GetResolvedItems(list.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 4 {
		t.Fatalf("items=%+v", items)
	}
	if *items[0].Name != "Milk" || items[0].Qty != "2" || items[0].Location == nil {
		t.Fatalf("milk: %+v", items[0])
	}
	if *items[1].Name != "Eggs" || items[1].Qty != "dozen" {
		t.Fatalf("eggs: %+v", items[1])
	}
	if items[2].Location != nil {
		t.Fatalf("avocados should be unknown: %+v", items[2])
	}
	if !items[3].IsDirective() {
		t.Fatalf("directive: %+v", items[3])
	}

	// Second run hits the location cache without a locator at all.
	svc = NewResolveService(db, cfg, rules.Default(), nil, nil)
	if _, err := svc.ProcessList(context.Background(), list); err != nil {
		t.Fatal(err)
	}
	items, err = db.GetResolvedItems(list.ID)
	if err != nil {
		t.Fatal(err)
	}
	if items[0].Location == nil || items[0].Location.Source != "cache" {
		t.Fatalf("cache miss on second run: %+v", items[0])
	}

	out := filepath.Join(tmp, "run.xlsx")
	if err := ExportRowsToXLSX(BuildExportRows(items), out); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}
}
