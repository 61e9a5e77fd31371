package aggregates

import (
	"context"

	"github.com/google/uuid"
)

var ProductStoreContract = Contract{
	Name:             "Catalog.ProductStore",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns product inventory counters and product removal; the only path that decrements stock.",
}

// ProductStore owns the inventory-count invariant (never negative after commit).
//
// Write method failures should return *aggregates.Error with codes:
// CodeInvalidQuantity, CodeProductNotFound, CodeInsufficientInventory, CodeRetryable, CodeInternal.
// RemoveProduct additionally keeps every cart's aggregates in step with the entries it removes.
type ProductStore interface {
	Aggregate

	// DecrementInventory locks the product row and subtracts Amount when enough stock remains.
	DecrementInventory(ctx context.Context, in DecrementInventoryInput) (InventoryResult, error)

	// CheckoutSingleUnit is DecrementInventory with Amount=1 for buy-now flows.
	CheckoutSingleUnit(ctx context.Context, productID uuid.UUID) (InventoryResult, error)

	// RemoveProduct deletes the product after removing every cart entry that references it,
	// subtracting each entry from its cart.
	RemoveProduct(ctx context.Context, productID uuid.UUID) (ProductRemovalResult, error)
}

type DecrementInventoryInput struct {
	ProductID uuid.UUID
	Amount    int
}

type InventoryResult struct {
	ProductID      uuid.UUID
	Decremented    int
	InventoryCount int
}

type ProductRemovalResult struct {
	ProductID uuid.UUID
	// Carts holds the totals of every cart that lost an entry, ascending by cart id.
	Carts []CartTotals
}
