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

type ProductStoreDeps struct {
	Base BaseDeps

	Products repos.ProductRepo
	Events   repos.OutboxEventRepo

	// Carts and Entries serve RemoveProduct only.
	Carts   repos.CartRepo
	Entries repos.CartEntryRepo
}

type productStore struct {
	deps       ProductStoreDeps
	ledger     inventoryLedger
	maintainer cartMaintainer
	events     eventWriter
}

func NewProductStore(deps ProductStoreDeps) domainagg.ProductStore {
	deps.Base = deps.Base.withDefaults()
	return &productStore{
		deps:       deps,
		ledger:     inventoryLedger{products: deps.Products},
		maintainer: cartMaintainer{carts: deps.Carts},
		events:     eventWriter{repo: deps.Events},
	}
}

func (s *productStore) Contract() domainagg.Contract {
	return domainagg.ProductStoreContract
}

func (s *productStore) DecrementInventory(ctx context.Context, in domainagg.DecrementInventoryInput) (domainagg.InventoryResult, error) {
	const op = "Catalog.ProductStore.DecrementInventory"
	var out domainagg.InventoryResult
	if err := s.validate(op, in.ProductID, in.Amount); err != nil {
		return out, err
	}
	err := executeWrite(ctx, s.deps.Base, op, func(dbc dbctx.Context) error {
		p, err := s.ledger.decrement(dbc, op, in.ProductID, in.Amount)
		if err != nil {
			return err
		}
		out = inventoryResult(p, in.Amount)
		return nil
	})
	return out, err
}

func (s *productStore) CheckoutSingleUnit(ctx context.Context, productID uuid.UUID) (domainagg.InventoryResult, error) {
	const op = "Catalog.ProductStore.CheckoutSingleUnit"
	var out domainagg.InventoryResult
	if err := s.validate(op, productID, 1); err != nil {
		return out, err
	}
	err := executeWrite(ctx, s.deps.Base, op, func(dbc dbctx.Context) error {
		p, err := s.ledger.decrement(dbc, op, productID, 1)
		if err != nil {
			return err
		}
		out = inventoryResult(p, 1)
		return s.events.record(dbc, outbox.TopicProductPurchased, p.ID.String(), inventoryEvent{
			ProductID:      p.ID.String(),
			Decremented:    1,
			InventoryCount: p.InventoryCount,
		})
	})
	return out, err
}

// RemoveProduct locks the product's entries, then the product, then each affected cart in
// ascending id order, removes the entries through the cart maintainer and deletes the product.
func (s *productStore) RemoveProduct(ctx context.Context, productID uuid.UUID) (domainagg.ProductRemovalResult, error) {
	const op = "Catalog.ProductStore.RemoveProduct"
	var out domainagg.ProductRemovalResult

	if productID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing product_id", nil)
	}
	if s.deps.Products == nil || s.deps.Entries == nil || s.deps.Carts == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "product store repos not configured", nil)
	}

	err := executeWrite(ctx, s.deps.Base, op, func(dbc dbctx.Context) error {
		out = domainagg.ProductRemovalResult{ProductID: productID}

		entries, err := s.deps.Entries.LockByProductID(dbc, productID)
		if err != nil {
			return err
		}
		p, err := s.deps.Products.LockForDeleteByID(dbc, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domainagg.NewError(domainagg.CodeProductNotFound, op, fmt.Sprintf("product not found: %s", productID), nil)
		}
		// An entry inserted between the two locks is not locked by this transaction.
		n, err := s.deps.Entries.CountByProductID(dbc, productID)
		if err != nil {
			return err
		}
		if int(n) != len(entries) {
			return RetryableError(fmt.Sprintf("product %s: cart entries changed during removal (locked=%d now=%d)", productID, len(entries), n))
		}

		sort.Slice(entries, func(i, j int) bool { return entries[i].CartID.String() < entries[j].CartID.String() })
		for _, e := range entries {
			c, err := removeEntry(dbc, s.deps.Entries, s.maintainer, op, e)
			if err != nil {
				return err
			}
			out.Carts = append(out.Carts, cartTotals(c))
			if err := s.events.record(dbc, outbox.TopicEntryDeleted, c.ID.String(), newEntryEvent(e, c)); err != nil {
				return err
			}
		}

		deleted, err := s.deps.Products.DeleteByID(dbc, productID)
		if err != nil {
			return err
		}
		if !deleted {
			return domainagg.NewError(domainagg.CodeProductNotFound, op, fmt.Sprintf("product not found: %s", productID), nil)
		}
		return s.events.record(dbc, outbox.TopicProductRemoved, p.ID.String(), productRemovedEvent{
			ProductID:      p.ID.String(),
			Title:          p.Title,
			EntriesRemoved: len(entries),
		})
	})
	if err != nil {
		return domainagg.ProductRemovalResult{}, err
	}
	return out, nil
}

func (s *productStore) validate(op string, productID uuid.UUID, amount int) error {
	if productID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing product_id", nil)
	}
	if amount <= 0 {
		return invalidQuantity(op, amount)
	}
	if s.deps.Products == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "product repo not configured", nil)
	}
	return nil
}

func inventoryResult(p *types.Product, amount int) domainagg.InventoryResult {
	return domainagg.InventoryResult{
		ProductID:      p.ID,
		Decremented:    amount,
		InventoryCount: p.InventoryCount,
	}
}
