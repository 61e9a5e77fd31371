package handlers

import (
	"github.com/google/uuid"

	domainagg "github.com/yungbote/marketplace-backend/internal/domain/aggregates"
)

type entryView struct {
	ID           uuid.UUID `json:"id"`
	CartID       uuid.UUID `json:"cart_id"`
	ProductID    uuid.UUID `json:"product_id"`
	ProductCount int       `json:"product_count"`
	Cost         string    `json:"cost"`
}

type totalsView struct {
	ID        uuid.UUID `json:"id"`
	ItemCount int       `json:"item_count"`
	TotalCost string    `json:"total_cost"`
}

type checkoutEntryView struct {
	Entry              entryView  `json:"entry"`
	RemainingInventory int        `json:"remaining_inventory"`
	Cart               totalsView `json:"cart"`
}

type skippedView struct {
	EntryID   uuid.UUID `json:"entry_id"`
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

type checkoutCartView struct {
	Partial  bool                `json:"partial"`
	Consumed []checkoutEntryView `json:"consumed"`
	Skipped  []skippedView       `json:"skipped"`
	Cart     totalsView          `json:"cart"`
}

type inventoryView struct {
	ProductID      uuid.UUID `json:"product_id"`
	Decremented    int       `json:"decremented"`
	InventoryCount int       `json:"inventory_count"`
}

func toEntryView(e domainagg.CartEntrySnapshot) entryView {
	return entryView{
		ID:           e.ID,
		CartID:       e.CartID,
		ProductID:    e.ProductID,
		ProductCount: e.ProductCount,
		Cost:         e.Cost.StringFixed(2),
	}
}

func toTotalsView(t domainagg.CartTotals) totalsView {
	return totalsView{ID: t.CartID, ItemCount: t.ItemCount, TotalCost: t.TotalCost.StringFixed(2)}
}

func toCheckoutEntryView(r domainagg.CheckoutEntryResult) checkoutEntryView {
	return checkoutEntryView{
		Entry:              toEntryView(r.Entry),
		RemainingInventory: r.RemainingInventory,
		Cart:               toTotalsView(r.Cart),
	}
}

func toCheckoutCartView(r domainagg.CheckoutCartResult) checkoutCartView {
	out := checkoutCartView{
		Partial:  r.Partial(),
		Consumed: make([]checkoutEntryView, 0, len(r.Consumed)),
		Skipped:  make([]skippedView, 0, len(r.Skipped)),
		Cart:     toTotalsView(r.Cart),
	}
	for _, c := range r.Consumed {
		out.Consumed = append(out.Consumed, toCheckoutEntryView(c))
	}
	for _, s := range r.Skipped {
		out.Skipped = append(out.Skipped, skippedView{
			EntryID:   s.EntryID,
			ProductID: s.ProductID,
			Requested: s.Requested,
			Available: s.Available,
		})
	}
	return out
}
