package main

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultCatalogMatchesFixture(t *testing.T) {
	f, err := loadCatalog("")
	if err != nil {
		t.Fatalf("loadCatalog: %v", err)
	}
	if len(f.Users) != 2 || f.Users[0].Username != "test01" {
		t.Fatalf("users: got=%+v", f.Users)
	}
	items, err := f.items()
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 6 {
		t.Fatalf("products: want=6 got=%d", len(items))
	}
	if items[0].Title != "Laptop" || !items[0].Price.Equal(decimal.RequireFromString("1000.42")) {
		t.Fatalf("laptop: got=%+v", items[0])
	}
	if items[2].Title != "Fountain pen" || items[2].InventoryCount != 0 {
		t.Fatalf("fountain pen: got=%+v", items[2])
	}
	if items[5].Seller != "test01" {
		t.Fatalf("cool mug seller: got=%q", items[5].Seller)
	}
}

func TestCatalogRejectsBadPrice(t *testing.T) {
	f, err := parseCatalog([]byte("products:\n  - title: Broken\n    price: ten\n"))
	if err != nil {
		t.Fatalf("parseCatalog: %v", err)
	}
	if _, err := f.items(); err == nil {
		t.Fatalf("expected price error")
	}
}

func TestParseCatalogRejectsMalformedYAML(t *testing.T) {
	if _, err := parseCatalog([]byte("products: [")); err == nil {
		t.Fatalf("expected yaml error")
	}
}
