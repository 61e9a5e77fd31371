package domain

import (
	"github.com/yungbote/marketplace-backend/internal/domain/cart"
	"github.com/yungbote/marketplace-backend/internal/domain/catalog"
	"github.com/yungbote/marketplace-backend/internal/domain/outbox"
	"github.com/yungbote/marketplace-backend/internal/domain/user"
)

type User = user.User

type Product = catalog.Product

type Cart = cart.Cart
type CartEntry = cart.CartEntry
type CartDelta = cart.Delta

type OutboxEvent = outbox.Event

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&User{},
		&Product{},
		&Cart{},
		&CartEntry{},
		&OutboxEvent{},
	}
}
