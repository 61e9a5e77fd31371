package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/marketplace-backend/internal/data/aggregates"
	"github.com/yungbote/marketplace-backend/internal/data/repos"
	types "github.com/yungbote/marketplace-backend/internal/domain"
	domainagg "github.com/yungbote/marketplace-backend/internal/domain/aggregates"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
	"github.com/yungbote/marketplace-backend/internal/platform/logger"
)

// CatalogItem is one product row of an imported catalog.
type CatalogItem struct {
	Title          string
	Price          decimal.Decimal
	InventoryCount int
	Category       string
	Description    string
	Seller         string
}

type CatalogService interface {
	GetProduct(dbc dbctx.Context, productID uuid.UUID) (*types.Product, error)
	CheckoutProduct(ctx context.Context, productID uuid.UUID) (domainagg.InventoryResult, error)
	// RemoveProduct deletes a product and every cart entry referencing it.
	RemoveProduct(ctx context.Context, productID uuid.UUID) (domainagg.ProductRemovalResult, error)
	// ImportCatalog creates every item whose title is not taken yet and returns how many were created.
	ImportCatalog(ctx context.Context, items []CatalogItem) (int, error)
}

type catalogService struct {
	db       *gorm.DB
	log      *logger.Logger
	products repos.ProductRepo
	users    repos.UserRepo
	store    domainagg.ProductStore
	checkout domainagg.CheckoutCoordinator
}

func NewCatalogService(
	db *gorm.DB,
	baseLog *logger.Logger,
	products repos.ProductRepo,
	users repos.UserRepo,
	store domainagg.ProductStore,
	checkout domainagg.CheckoutCoordinator,
) CatalogService {
	return &catalogService{
		db:       db,
		log:      baseLog.With("service", "CatalogService"),
		products: products,
		users:    users,
		store:    store,
		checkout: checkout,
	}
}

func (s *catalogService) GetProduct(dbc dbctx.Context, productID uuid.UUID) (*types.Product, error) {
	const op = "Catalog.GetProduct"
	p, err := s.products.GetByID(dbc, productID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if p == nil {
		return nil, domainagg.NewError(domainagg.CodeProductNotFound, op, fmt.Sprintf("product not found: %s", productID), nil)
	}
	return p, nil
}

func (s *catalogService) CheckoutProduct(ctx context.Context, productID uuid.UUID) (domainagg.InventoryResult, error) {
	return s.checkout.CheckoutProduct(ctx, domainagg.CheckoutProductInput{ProductID: productID})
}

func (s *catalogService) RemoveProduct(ctx context.Context, productID uuid.UUID) (domainagg.ProductRemovalResult, error) {
	res, err := s.store.RemoveProduct(ctx, productID)
	if err != nil {
		return res, err
	}
	s.log.Info("product removed", "product_id", productID, "carts_updated", len(res.Carts))
	return res, nil
}

func (s *catalogService) ImportCatalog(ctx context.Context, items []CatalogItem) (int, error) {
	const op = "Catalog.ImportCatalog"
	if len(items) == 0 {
		return 0, nil
	}

	titles := make([]string, 0, len(items))
	sellers := []string{}
	for i, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			return 0, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("item %d: missing title", i), nil)
		}
		if it.Price.IsNegative() {
			return 0, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("%s: negative price", title), nil)
		}
		if it.InventoryCount < 0 {
			return 0, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("%s: negative inventory", title), nil)
		}
		titles = append(titles, title)
		if seller := strings.TrimSpace(it.Seller); seller != "" {
			sellers = append(sellers, seller)
		}
	}

	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := s.products.GetByTitles(inner, titles)
		if err != nil {
			return err
		}
		taken := make(map[string]bool, len(existing))
		for _, p := range existing {
			taken[p.Title] = true
		}
		sellerIDs := map[string]uuid.UUID{}
		if len(sellers) > 0 {
			found, err := s.users.GetByUsernames(inner, sellers)
			if err != nil {
				return err
			}
			for _, u := range found {
				sellerIDs[u.Username] = u.ID
			}
			for _, name := range sellers {
				if _, ok := sellerIDs[name]; !ok {
					return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unknown seller %q", name), nil)
				}
			}
		}

		var rows []*types.Product
		for _, it := range items {
			title := strings.TrimSpace(it.Title)
			if taken[title] {
				continue
			}
			taken[title] = true
			p := &types.Product{
				Title:          title,
				Price:          it.Price,
				InventoryCount: it.InventoryCount,
				Category:       it.Category,
				Description:    strings.TrimSpace(it.Description),
			}
			if id, ok := sellerIDs[strings.TrimSpace(it.Seller)]; ok {
				p.SellerID = &id
			}
			p.Normalize()
			rows = append(rows, p)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := s.products.Create(inner, rows); err != nil {
			return err
		}
		created = len(rows)
		return nil
	})
	if err != nil {
		return 0, aggregates.MapError(op, err)
	}
	s.log.Info("catalog imported", "created", created, "skipped", len(items)-created)
	return created, nil
}
