package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/marketplace-backend/internal/domain/user"
)

const DefaultCategory = "miscellaneous"

// Product is a sellable listing with a finite stock counter.
// InventoryCount only moves through the inventory decrement path.
type Product struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string          `gorm:"not null;uniqueIndex;column:title" json:"title"`
	Price          decimal.Decimal `gorm:"type:numeric(10,2);not null;column:price" json:"price"`
	InventoryCount int             `gorm:"not null;default:0;column:inventory_count" json:"inventory_count"`
	Category       string          `gorm:"not null;default:'miscellaneous';index;column:category" json:"category"`
	Description    string          `gorm:"column:description" json:"description"`

	SellerID *uuid.UUID `gorm:"type:uuid;index;column:seller_id" json:"seller_id,omitempty"`
	Seller   *user.User `gorm:"foreignKey:SellerID;constraint:OnDelete:SET NULL" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string { return "product" }

// Normalize fills defaults and rounds the price to cents.
func (p *Product) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	p.Price = p.Price.Round(2)
}

// CanFulfil reports whether amount units can be taken from stock.
func (p *Product) CanFulfil(amount int) bool {
	return p != nil && amount > 0 && p.InventoryCount >= amount
}
