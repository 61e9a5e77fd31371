package aggregates

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/marketplace-backend/internal/data/repos"
	types "github.com/yungbote/marketplace-backend/internal/domain"
	domainagg "github.com/yungbote/marketplace-backend/internal/domain/aggregates"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
)

// inventoryLedger is the single place inventory_count is decremented.
// Callers must hold an open transaction in dbc.
type inventoryLedger struct {
	products repos.ProductRepo
}

// decrement locks the product row, then takes amount units from it.
func (l inventoryLedger) decrement(dbc dbctx.Context, op string, productID uuid.UUID, amount int) (*types.Product, error) {
	if amount <= 0 {
		return nil, invalidQuantity(op, amount)
	}
	p, err := l.products.LockByID(dbc, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domainagg.NewError(domainagg.CodeProductNotFound, op, fmt.Sprintf("product not found: %s", productID), nil)
	}
	if err := l.take(dbc, op, p, amount); err != nil {
		return nil, err
	}
	return p, nil
}

// take subtracts amount from an already locked product and mirrors the change on p.
func (l inventoryLedger) take(dbc dbctx.Context, op string, p *types.Product, amount int) error {
	if !p.CanFulfil(amount) {
		return insufficientInventory(op, fmt.Sprintf("product %s: requested=%d available=%d", p.ID, amount, p.InventoryCount))
	}
	next := p.InventoryCount - amount
	if err := l.products.UpdateInventory(dbc, p.ID, next); err != nil {
		return err
	}
	p.InventoryCount = next
	return nil
}
