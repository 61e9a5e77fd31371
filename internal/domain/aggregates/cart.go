package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var CartAggregateContract = Contract{
	Name:             "Cart.CartAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns cart entries and keeps cart item_count/total_cost equal to the sum over live entries.",
}

// CartAggregate owns cart entry lifecycle and the cart aggregate invariant.
//
// Write method failures should return *aggregates.Error with codes:
// CodeInvalidQuantity, CodeDuplicateEntry, CodeInsufficientInventory, CodeEntryNotFound,
// CodeCartNotFound, CodeProductNotFound, CodeInvariantViolation, CodeRetryable, CodeInternal.
type CartAggregate interface {
	Aggregate

	// AddEntry creates a cart entry and adds its contribution to the cart totals.
	AddEntry(ctx context.Context, in AddCartEntryInput) (CartEntryResult, error)

	// UpdateEntry changes an entry's quantity and moves the cart totals by the difference.
	UpdateEntry(ctx context.Context, in UpdateCartEntryInput) (CartEntryResult, error)

	// DeleteEntry removes an entry and subtracts its contribution.
	DeleteEntry(ctx context.Context, in DeleteCartEntryInput) (CartEntryResult, error)
}

type AddCartEntryInput struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

// UpdateCartEntryInput changes Quantity on EntryID. When CartID is set the entry
// must belong to that cart.
type UpdateCartEntryInput struct {
	EntryID  uuid.UUID
	CartID   uuid.UUID
	Quantity int
}

type DeleteCartEntryInput struct {
	EntryID uuid.UUID
	CartID  uuid.UUID
}

type CartEntrySnapshot struct {
	ID           uuid.UUID
	CartID       uuid.UUID
	ProductID    uuid.UUID
	ProductCount int
	Cost         decimal.Decimal
}

type CartTotals struct {
	CartID    uuid.UUID
	ItemCount int
	TotalCost decimal.Decimal
}

type CartEntryResult struct {
	Entry CartEntrySnapshot
	Cart  CartTotals
}
