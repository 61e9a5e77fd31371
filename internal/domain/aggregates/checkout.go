package aggregates

import (
	"context"

	"github.com/google/uuid"
)

var CheckoutCoordinatorContract = Contract{
	Name:             "Checkout.Coordinator",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes: "Moves quantity from cart reservations into inventory deductions. " +
		"Lock order: cart_entry rows, product rows, cart row (each ascending by id).",
}

// CheckoutCoordinator composes the product store and cart aggregate inside one transaction
// per call.
//
// Write method failures should return *aggregates.Error with codes:
// CodeInsufficientInventory, CodeEntryNotFound, CodeCartNotFound, CodeProductNotFound,
// CodeRetryable, CodeInternal. CheckoutCart additionally returns CodePartialCheckout
// together with a populated result when some entries were left in the cart.
type CheckoutCoordinator interface {
	Aggregate

	// CheckoutEntry decrements stock by the entry quantity, then deletes the entry.
	CheckoutEntry(ctx context.Context, in CheckoutEntryInput) (CheckoutEntryResult, error)

	// CheckoutCart consumes every entry that has enough stock and leaves the rest.
	CheckoutCart(ctx context.Context, in CheckoutCartInput) (CheckoutCartResult, error)

	// CheckoutProduct buys one unit without touching any cart.
	CheckoutProduct(ctx context.Context, in CheckoutProductInput) (InventoryResult, error)
}

// CheckoutEntryInput targets EntryID. When CartID is set the entry must belong to that cart.
type CheckoutEntryInput struct {
	EntryID uuid.UUID
	CartID  uuid.UUID
}

type CheckoutCartInput struct {
	CartID uuid.UUID
}

type CheckoutProductInput struct {
	ProductID uuid.UUID
}

type CheckoutEntryResult struct {
	Entry              CartEntrySnapshot
	RemainingInventory int
	Cart               CartTotals
}

type SkippedEntry struct {
	EntryID   uuid.UUID
	ProductID uuid.UUID
	Requested int
	Available int
}

type CheckoutCartResult struct {
	Consumed []CheckoutEntryResult
	Skipped  []SkippedEntry
	Cart     CartTotals
}

// Partial reports whether any entry was left behind.
func (r CheckoutCartResult) Partial() bool { return len(r.Skipped) > 0 }
