package aggregates

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/yungbote/marketplace-backend/internal/data/repos"
	types "github.com/yungbote/marketplace-backend/internal/domain"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
)

// eventWriter appends outbox rows inside the caller's transaction so an event exists
// if and only if the change it describes committed.
type eventWriter struct {
	repo repos.OutboxEventRepo
}

func (w eventWriter) record(dbc dbctx.Context, topic, key string, payload any) error {
	if w.repo == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = w.repo.Create(dbc, []*types.OutboxEvent{{
		Topic:   topic,
		Key:     key,
		Payload: datatypes.JSON(raw),
	}})
	return err
}

type entryEvent struct {
	CartID        string `json:"cart_id"`
	EntryID       string `json:"entry_id"`
	ProductID     string `json:"product_id"`
	ProductCount  int    `json:"product_count"`
	Cost          string `json:"cost"`
	CartItemCount int    `json:"cart_item_count"`
	CartTotalCost string `json:"cart_total_cost"`
}

type inventoryEvent struct {
	ProductID      string `json:"product_id"`
	Decremented    int    `json:"decremented"`
	InventoryCount int    `json:"inventory_count"`
}

type productRemovedEvent struct {
	ProductID      string `json:"product_id"`
	Title          string `json:"title"`
	EntriesRemoved int    `json:"entries_removed"`
}

type cartCheckoutEvent struct {
	CartID   string   `json:"cart_id"`
	Consumed []string `json:"consumed_entry_ids"`
	Skipped  []string `json:"skipped_entry_ids"`
}

func newEntryEvent(e *types.CartEntry, c *types.Cart) entryEvent {
	return entryEvent{
		CartID:        e.CartID.String(),
		EntryID:       e.ID.String(),
		ProductID:     e.ProductID.String(),
		ProductCount:  e.ProductCount,
		Cost:          e.Cost.StringFixed(2),
		CartItemCount: c.ItemCount,
		CartTotalCost: c.TotalCost.StringFixed(2),
	}
}
