package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestProductNormalize(t *testing.T) {
	p := &Product{Title: "  Cool mug ", Price: decimal.RequireFromString("99.999")}
	p.Normalize()
	if p.Title != "Cool mug" {
		t.Fatalf("title: got=%q", p.Title)
	}
	if p.Category != DefaultCategory {
		t.Fatalf("category: want=%q got=%q", DefaultCategory, p.Category)
	}
	if !p.Price.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("price: want=100.00 got=%s", p.Price)
	}
}

func TestProductCanFulfil(t *testing.T) {
	p := &Product{InventoryCount: 5}
	if !p.CanFulfil(5) {
		t.Fatalf("5 of 5 should be fulfillable")
	}
	if p.CanFulfil(6) {
		t.Fatalf("6 of 5 should not be fulfillable")
	}
	if p.CanFulfil(0) {
		t.Fatalf("zero amount should not be fulfillable")
	}
}
