package outbox

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	TopicEntryAdded       = "cart.entry_added"
	TopicEntryUpdated     = "cart.entry_updated"
	TopicEntryDeleted     = "cart.entry_deleted"
	TopicEntryConsumed    = "checkout.entry_consumed"
	TopicProductPurchased = "checkout.product_purchased"
	TopicCartCheckedOut   = "checkout.cart_completed"
	TopicProductRemoved   = "catalog.product_removed"
)

// Event is a pending notification written in the same transaction as the change it describes.
// PublishedAt stays nil until the relay has handed it to the bus.
type Event struct {
	ID      uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Topic   string         `gorm:"not null;index;column:topic" json:"topic"`
	Key     string         `gorm:"not null;column:event_key" json:"key"`
	Payload datatypes.JSON `gorm:"column:payload" json:"payload"`

	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
	PublishedAt *time.Time `gorm:"index;column:published_at" json:"published_at,omitempty"`
}

func (Event) TableName() string { return "outbox_event" }
