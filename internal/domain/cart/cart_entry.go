package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/marketplace-backend/internal/domain/catalog"
)

// CartEntry is one product line in a cart. At most one entry per (cart, product).
// The product FK is RESTRICT: removing a product must remove its entries through the
// cart maintainer first, or the carts would keep their contribution.
type CartEntry struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CartID       uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cart_entry_cart_product,priority:1;index;column:cart_id" json:"cart_id"`
	ProductID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cart_entry_cart_product,priority:2;index;column:product_id" json:"product_id"`
	Product      *catalog.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	ProductCount int              `gorm:"not null;column:product_count" json:"product_count"`
	Cost         decimal.Decimal  `gorm:"type:numeric(12,2);not null;column:cost" json:"cost"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (CartEntry) TableName() string { return "cart_entry" }

// Contribution is what this entry adds to its cart's aggregates.
func (e *CartEntry) Contribution() Delta {
	if e == nil {
		return Delta{}
	}
	return Delta{Items: e.ProductCount, Cost: e.Cost}
}

// Reprice sets Cost from the unit price and the current ProductCount.
func (e *CartEntry) Reprice(unitPrice decimal.Decimal) {
	e.Cost = unitPrice.Mul(decimal.NewFromInt(int64(e.ProductCount))).Round(2)
}
