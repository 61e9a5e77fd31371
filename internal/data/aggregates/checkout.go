package aggregates

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/marketplace-backend/internal/data/repos"
	types "github.com/yungbote/marketplace-backend/internal/domain"
	domainagg "github.com/yungbote/marketplace-backend/internal/domain/aggregates"
	"github.com/yungbote/marketplace-backend/internal/domain/outbox"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
)

type CheckoutCoordinatorDeps struct {
	Base BaseDeps

	Carts    repos.CartRepo
	Entries  repos.CartEntryRepo
	Products repos.ProductRepo
	Events   repos.OutboxEventRepo

	// Store serves CheckoutProduct. Built from the fields above when nil.
	Store domainagg.ProductStore
}

type checkoutCoordinator struct {
	deps       CheckoutCoordinatorDeps
	ledger     inventoryLedger
	maintainer cartMaintainer
	events     eventWriter
}

func NewCheckoutCoordinator(deps CheckoutCoordinatorDeps) domainagg.CheckoutCoordinator {
	deps.Base = deps.Base.withDefaults()
	if deps.Store == nil {
		deps.Store = NewProductStore(ProductStoreDeps{
			Base:     deps.Base,
			Products: deps.Products,
			Events:   deps.Events,
			Carts:    deps.Carts,
			Entries:  deps.Entries,
		})
	}
	return &checkoutCoordinator{
		deps:       deps,
		ledger:     inventoryLedger{products: deps.Products},
		maintainer: cartMaintainer{carts: deps.Carts},
		events:     eventWriter{repo: deps.Events},
	}
}

func (c *checkoutCoordinator) Contract() domainagg.Contract {
	return domainagg.CheckoutCoordinatorContract
}

// CheckoutEntry runs, in one transaction: lock entry, decrement stock, delete entry,
// subtract the entry from its cart. Stock is decremented before the entry is removed.
func (c *checkoutCoordinator) CheckoutEntry(ctx context.Context, in domainagg.CheckoutEntryInput) (domainagg.CheckoutEntryResult, error) {
	const op = "Checkout.Coordinator.CheckoutEntry"
	var out domainagg.CheckoutEntryResult

	if in.EntryID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing entry_id", nil)
	}
	if err := c.configured(op); err != nil {
		return out, err
	}

	err := executeWrite(ctx, c.deps.Base, op, func(dbc dbctx.Context) error {
		entry, err := lockOwnedEntry(dbc, c.deps.Entries, op, in.EntryID, in.CartID)
		if err != nil {
			return err
		}
		p, err := c.ledger.decrement(dbc, op, entry.ProductID, entry.ProductCount)
		if err != nil {
			return err
		}
		cart, err := removeEntry(dbc, c.deps.Entries, c.maintainer, op, entry)
		if err != nil {
			return err
		}
		out = domainagg.CheckoutEntryResult{
			Entry:              entrySnapshot(entry),
			RemainingInventory: p.InventoryCount,
			Cart:               cartTotals(cart),
		}
		return c.events.record(dbc, outbox.TopicEntryConsumed, cart.ID.String(), newEntryEvent(entry, cart))
	})
	return out, err
}

// CheckoutCart consumes every entry whose product has enough stock, in one transaction.
// Entries short on stock stay in the cart and are reported in Skipped together with a
// CodePartialCheckout error; the consumed entries are committed regardless. Any other
// failure rolls the whole batch back.
func (c *checkoutCoordinator) CheckoutCart(ctx context.Context, in domainagg.CheckoutCartInput) (domainagg.CheckoutCartResult, error) {
	const op = "Checkout.Coordinator.CheckoutCart"
	var out domainagg.CheckoutCartResult

	if in.CartID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing cart_id", nil)
	}
	if err := c.configured(op); err != nil {
		return out, err
	}

	err := executeWrite(ctx, c.deps.Base, op, func(dbc dbctx.Context) error {
		out = domainagg.CheckoutCartResult{}

		cart, err := c.deps.Carts.GetByID(dbc, in.CartID)
		if err != nil {
			return err
		}
		if cart == nil {
			return domainagg.NewError(domainagg.CodeCartNotFound, op, fmt.Sprintf("cart not found: %s", in.CartID), nil)
		}

		entries, err := c.deps.Entries.LockByCartID(dbc, in.CartID)
		if err != nil {
			return err
		}
		products, err := c.lockProducts(dbc, entries)
		if err != nil {
			return err
		}

		var consumed, skipped []string
		for _, e := range entries {
			p := products[e.ProductID]
			if p == nil {
				return domainagg.NewError(domainagg.CodeProductNotFound, op, fmt.Sprintf("product not found: %s", e.ProductID), nil)
			}
			if !p.CanFulfil(e.ProductCount) {
				out.Skipped = append(out.Skipped, domainagg.SkippedEntry{
					EntryID:   e.ID,
					ProductID: e.ProductID,
					Requested: e.ProductCount,
					Available: p.InventoryCount,
				})
				skipped = append(skipped, e.ID.String())
				continue
			}
			if err := c.ledger.take(dbc, op, p, e.ProductCount); err != nil {
				return err
			}
			if cart, err = removeEntry(dbc, c.deps.Entries, c.maintainer, op, e); err != nil {
				return err
			}
			out.Consumed = append(out.Consumed, domainagg.CheckoutEntryResult{
				Entry:              entrySnapshot(e),
				RemainingInventory: p.InventoryCount,
				Cart:               cartTotals(cart),
			})
			consumed = append(consumed, e.ID.String())
			if err := c.events.record(dbc, outbox.TopicEntryConsumed, cart.ID.String(), newEntryEvent(e, cart)); err != nil {
				return err
			}
		}
		out.Cart = cartTotals(cart)

		if len(consumed) == 0 {
			return nil
		}
		return c.events.record(dbc, outbox.TopicCartCheckedOut, cart.ID.String(), cartCheckoutEvent{
			CartID:   cart.ID.String(),
			Consumed: consumed,
			Skipped:  skipped,
		})
	})
	if err != nil {
		return domainagg.CheckoutCartResult{}, err
	}
	if out.Partial() {
		return out, domainagg.NewError(domainagg.CodePartialCheckout, op,
			fmt.Sprintf("%d of %d entries left in cart for lack of stock", len(out.Skipped), len(out.Skipped)+len(out.Consumed)), nil)
	}
	return out, nil
}

func (c *checkoutCoordinator) CheckoutProduct(ctx context.Context, in domainagg.CheckoutProductInput) (domainagg.InventoryResult, error) {
	return c.deps.Store.CheckoutSingleUnit(ctx, in.ProductID)
}

// lockProducts locks the distinct products referenced by entries in ascending id order.
func (c *checkoutCoordinator) lockProducts(dbc dbctx.Context, entries []*types.CartEntry) (map[uuid.UUID]*types.Product, error) {
	seen := make(map[uuid.UUID]struct{}, len(entries))
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ProductID]; ok {
			continue
		}
		seen[e.ProductID] = struct{}{}
		ids = append(ids, e.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	rows, err := c.deps.Products.LockByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*types.Product, len(rows))
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

func (c *checkoutCoordinator) configured(op string) error {
	if c.deps.Carts == nil || c.deps.Entries == nil || c.deps.Products == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "checkout coordinator repos not configured", nil)
	}
	return nil
}
