package aggregates

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/marketplace-backend/internal/data/repos"
	types "github.com/yungbote/marketplace-backend/internal/domain"
	domainagg "github.com/yungbote/marketplace-backend/internal/domain/aggregates"
	"github.com/yungbote/marketplace-backend/internal/domain/outbox"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
)

type CartAggregateDeps struct {
	Base BaseDeps

	Carts    repos.CartRepo
	Entries  repos.CartEntryRepo
	Products repos.ProductRepo
	Events   repos.OutboxEventRepo
}

type cartAggregate struct {
	deps       CartAggregateDeps
	maintainer cartMaintainer
	events     eventWriter
}

func NewCartAggregate(deps CartAggregateDeps) domainagg.CartAggregate {
	deps.Base = deps.Base.withDefaults()
	return &cartAggregate{
		deps:       deps,
		maintainer: cartMaintainer{carts: deps.Carts},
		events:     eventWriter{repo: deps.Events},
	}
}

func (a *cartAggregate) Contract() domainagg.Contract {
	return domainagg.CartAggregateContract
}

func (a *cartAggregate) AddEntry(ctx context.Context, in domainagg.AddCartEntryInput) (domainagg.CartEntryResult, error) {
	const op = "Cart.CartAggregate.AddEntry"
	var out domainagg.CartEntryResult

	if in.Quantity <= 0 {
		return out, invalidQuantity(op, in.Quantity)
	}
	if in.CartID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing cart_id", nil)
	}
	if in.ProductID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing product_id", nil)
	}
	if err := a.configured(op); err != nil {
		return out, err
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		// Lock order: product (KEY SHARE), cart, then the insert. Same-cart adds queue on
		// the cart lock before inserting.
		p, err := a.deps.Products.KeyShareByID(dbc, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domainagg.NewError(domainagg.CodeProductNotFound, op, fmt.Sprintf("product not found: %s", in.ProductID), nil)
		}
		c, err := a.deps.Carts.LockByID(dbc, in.CartID)
		if err != nil {
			return err
		}
		if c == nil {
			return domainagg.NewError(domainagg.CodeCartNotFound, op, fmt.Sprintf("cart not found: %s", in.CartID), nil)
		}
		existing, err := a.deps.Entries.GetByCartAndProduct(dbc, in.CartID, in.ProductID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domainagg.NewError(domainagg.CodeDuplicateEntry, op,
				fmt.Sprintf("product %s already in cart %s (entry %s)", in.ProductID, in.CartID, existing.ID), nil)
		}

		entry := &types.CartEntry{
			ID:           uuid.New(),
			CartID:       in.CartID,
			ProductID:    in.ProductID,
			ProductCount: in.Quantity,
		}
		entry.Reprice(p.Price)
		if _, err := a.deps.Entries.Create(dbc, entry); err != nil {
			return err
		}

		// apply re-locks the cart this transaction already holds.
		c, err = a.maintainer.apply(dbc, op, entryTransition{CartID: in.CartID, After: entry, Product: p})
		if err != nil {
			return err
		}
		out = entryResult(entry, c)
		return a.events.record(dbc, outbox.TopicEntryAdded, c.ID.String(), newEntryEvent(entry, c))
	})
	return out, err
}

func (a *cartAggregate) UpdateEntry(ctx context.Context, in domainagg.UpdateCartEntryInput) (domainagg.CartEntryResult, error) {
	const op = "Cart.CartAggregate.UpdateEntry"
	var out domainagg.CartEntryResult

	if in.Quantity <= 0 {
		return out, invalidQuantity(op, in.Quantity)
	}
	if in.EntryID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing entry_id", nil)
	}
	if err := a.configured(op); err != nil {
		return out, err
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		prev, err := lockOwnedEntry(dbc, a.deps.Entries, op, in.EntryID, in.CartID)
		if err != nil {
			return err
		}
		p, err := a.deps.Products.GetByID(dbc, prev.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domainagg.NewError(domainagg.CodeProductNotFound, op, fmt.Sprintf("product not found: %s", prev.ProductID), nil)
		}

		next := *prev
		next.ProductCount = in.Quantity
		next.Reprice(p.Price)
		if err := a.deps.Entries.UpdateQuantity(dbc, next.ID, next.ProductCount, next.Cost); err != nil {
			return err
		}

		c, err := a.maintainer.apply(dbc, op, entryTransition{CartID: prev.CartID, Before: prev, After: &next, Product: p})
		if err != nil {
			return err
		}
		out = entryResult(&next, c)
		return a.events.record(dbc, outbox.TopicEntryUpdated, c.ID.String(), newEntryEvent(&next, c))
	})
	return out, err
}

func (a *cartAggregate) DeleteEntry(ctx context.Context, in domainagg.DeleteCartEntryInput) (domainagg.CartEntryResult, error) {
	const op = "Cart.CartAggregate.DeleteEntry"
	var out domainagg.CartEntryResult

	if in.EntryID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing entry_id", nil)
	}
	if err := a.configured(op); err != nil {
		return out, err
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		entry, err := lockOwnedEntry(dbc, a.deps.Entries, op, in.EntryID, in.CartID)
		if err != nil {
			return err
		}
		c, err := removeEntry(dbc, a.deps.Entries, a.maintainer, op, entry)
		if err != nil {
			return err
		}
		out = entryResult(entry, c)
		return a.events.record(dbc, outbox.TopicEntryDeleted, c.ID.String(), newEntryEvent(entry, c))
	})
	return out, err
}

func (a *cartAggregate) configured(op string) error {
	if a.deps.Carts == nil || a.deps.Entries == nil || a.deps.Products == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "cart aggregate repos not configured", nil)
	}
	return nil
}

// lockOwnedEntry locks an entry row. A non-nil cartID scopes the lookup to that cart;
// entries of other carts are reported as missing.
func lockOwnedEntry(dbc dbctx.Context, entries repos.CartEntryRepo, op string, entryID, cartID uuid.UUID) (*types.CartEntry, error) {
	e, err := entries.LockByID(dbc, entryID)
	if err != nil {
		return nil, err
	}
	if e == nil || (cartID != uuid.Nil && e.CartID != cartID) {
		return nil, domainagg.NewError(domainagg.CodeEntryNotFound, op, fmt.Sprintf("cart entry not found: %s", entryID), nil)
	}
	return e, nil
}

// removeEntry deletes a locked entry and subtracts its contribution from the cart.
func removeEntry(dbc dbctx.Context, entries repos.CartEntryRepo, m cartMaintainer, op string, e *types.CartEntry) (*types.Cart, error) {
	deleted, err := entries.DeleteByID(dbc, e.ID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, domainagg.NewError(domainagg.CodeEntryNotFound, op, fmt.Sprintf("cart entry not found: %s", e.ID), nil)
	}
	return m.apply(dbc, op, entryTransition{CartID: e.CartID, Before: e})
}

func entryResult(e *types.CartEntry, c *types.Cart) domainagg.CartEntryResult {
	return domainagg.CartEntryResult{
		Entry: entrySnapshot(e),
		Cart:  cartTotals(c),
	}
}

func entrySnapshot(e *types.CartEntry) domainagg.CartEntrySnapshot {
	return domainagg.CartEntrySnapshot{
		ID:           e.ID,
		CartID:       e.CartID,
		ProductID:    e.ProductID,
		ProductCount: e.ProductCount,
		Cost:         e.Cost,
	}
}

func cartTotals(c *types.Cart) domainagg.CartTotals {
	return domainagg.CartTotals{
		CartID:    c.ID,
		ItemCount: c.ItemCount,
		TotalCost: c.TotalCost,
	}
}
