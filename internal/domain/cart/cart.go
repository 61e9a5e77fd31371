package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/marketplace-backend/internal/domain/user"
)

// ErrNegativeAggregate is returned when a delta would drive a cart total below zero.
var ErrNegativeAggregate = errors.New("cart aggregate would become negative")

// Cart holds the running totals over its live entries.
// ItemCount = sum(entry.ProductCount), TotalCost = sum(entry.Cost).
type Cart struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex;column:user_id" json:"user_id"`
	User      *user.User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ItemCount int             `gorm:"not null;default:0;column:item_count" json:"item_count"`
	TotalCost decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;column:total_cost" json:"total_cost"`

	Entries []CartEntry `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"entries,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Cart) TableName() string { return "cart" }

// Delta is a signed change to a cart's aggregates.
type Delta struct {
	Items int
	Cost  decimal.Decimal
}

// Neg flips the sign of both components.
func (d Delta) Neg() Delta {
	return Delta{Items: -d.Items, Cost: d.Cost.Neg()}
}

// IsZero reports whether applying d is a no-op.
func (d Delta) IsZero() bool {
	return d.Items == 0 && d.Cost.IsZero()
}

// Add combines two deltas.
func (d Delta) Add(o Delta) Delta {
	return Delta{Items: d.Items + o.Items, Cost: d.Cost.Add(o.Cost)}
}

// Apply adds d to the cart totals. The cart is left untouched when either total
// would go negative.
func (c *Cart) Apply(d Delta) error {
	items := c.ItemCount + d.Items
	cost := c.TotalCost.Add(d.Cost)
	if items < 0 || cost.IsNegative() {
		return ErrNegativeAggregate
	}
	c.ItemCount = items
	c.TotalCost = cost
	return nil
}
