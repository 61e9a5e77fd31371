package aggregates

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/marketplace-backend/internal/data/repos"
	types "github.com/yungbote/marketplace-backend/internal/domain"
	domainagg "github.com/yungbote/marketplace-backend/internal/domain/aggregates"
	"github.com/yungbote/marketplace-backend/internal/domain/cart"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
)

// entryTransition is one lifecycle step of a cart entry.
// Before is nil for a new entry; After is nil for a removed one.
type entryTransition struct {
	CartID  uuid.UUID
	Before  *types.CartEntry
	After   *types.CartEntry
	Product *types.Product
}

func (t entryTransition) delta() cart.Delta {
	return t.After.Contribution().Add(t.Before.Contribution().Neg())
}

// cartMaintainer keeps cart item_count/total_cost equal to the sum over live entries
// by applying per-transition deltas under the cart row lock. Every entry create,
// update, delete and checkout goes through apply.
type cartMaintainer struct {
	carts repos.CartRepo
}

func (m cartMaintainer) apply(dbc dbctx.Context, op string, t entryTransition) (*types.Cart, error) {
	// Unreachable while stock only moves through inventoryLedger; guards against rows
	// edited outside this service.
	if t.After != nil && t.Product != nil && t.Product.InventoryCount < 0 {
		return nil, insufficientInventory(op, fmt.Sprintf("product %s has negative inventory", t.Product.ID))
	}

	c, err := m.carts.LockByID(dbc, t.CartID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domainagg.NewError(domainagg.CodeCartNotFound, op, fmt.Sprintf("cart not found: %s", t.CartID), nil)
	}

	d := t.delta()
	if d.IsZero() {
		return c, nil
	}
	if err := c.Apply(d); err != nil {
		if errors.Is(err, cart.ErrNegativeAggregate) {
			return nil, InvariantError(fmt.Sprintf("cart %s: applying items=%d cost=%s to (%d, %s) goes negative",
				c.ID, d.Items, d.Cost, c.ItemCount, c.TotalCost))
		}
		return nil, err
	}
	if err := m.carts.UpdateTotals(dbc, c.ID, c.ItemCount, c.TotalCost); err != nil {
		return nil, err
	}
	return c, nil
}
