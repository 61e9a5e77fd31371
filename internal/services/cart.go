package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/marketplace-backend/internal/data/aggregates"
	"github.com/yungbote/marketplace-backend/internal/data/repos"
	types "github.com/yungbote/marketplace-backend/internal/domain"
	domainagg "github.com/yungbote/marketplace-backend/internal/domain/aggregates"
	"github.com/yungbote/marketplace-backend/internal/platform/ctxutil"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
	"github.com/yungbote/marketplace-backend/internal/platform/logger"
)

// CartView is the read model returned to clients. Money is rendered with two decimals.
type CartView struct {
	ID        uuid.UUID       `json:"id"`
	Owner     string          `json:"owner"`
	ItemCount int             `json:"item_count"`
	TotalCost string          `json:"total_cost"`
	Entries   []CartEntryView `json:"entries"`
}

type CartEntryView struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	ProductTitle string    `json:"product_title"`
	UnitPrice    string    `json:"unit_price"`
	ProductCount int       `json:"product_count"`
	Cost         string    `json:"cost"`
}

// CartService scopes cart operations to the authenticated caller's cart.
type CartService interface {
	GetOrCreateCart(dbc dbctx.Context, userID uuid.UUID) (*types.Cart, error)
	GetCart(dbc dbctx.Context, cartID uuid.UUID) (*CartView, error)
	GetMyCart(ctx context.Context) (*CartView, error)

	AddEntry(ctx context.Context, productID uuid.UUID, quantity int) (domainagg.CartEntryResult, error)
	UpdateEntry(ctx context.Context, entryID uuid.UUID, quantity int) (domainagg.CartEntryResult, error)
	DeleteEntry(ctx context.Context, entryID uuid.UUID) (domainagg.CartEntryResult, error)
	CheckoutEntry(ctx context.Context, entryID uuid.UUID) (domainagg.CheckoutEntryResult, error)
	CheckoutCart(ctx context.Context) (domainagg.CheckoutCartResult, error)
}

type cartService struct {
	db       *gorm.DB
	log      *logger.Logger
	users    repos.UserRepo
	carts    repos.CartRepo
	entries  repos.CartEntryRepo
	agg      domainagg.CartAggregate
	checkout domainagg.CheckoutCoordinator
}

func NewCartService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users repos.UserRepo,
	carts repos.CartRepo,
	entries repos.CartEntryRepo,
	agg domainagg.CartAggregate,
	checkout domainagg.CheckoutCoordinator,
) CartService {
	return &cartService{
		db:       db,
		log:      baseLog.With("service", "CartService"),
		users:    users,
		carts:    carts,
		entries:  entries,
		agg:      agg,
		checkout: checkout,
	}
}

// GetOrCreateCart returns the user's cart, creating it on first use. Concurrent first
// calls race on the unique user_id index; the loser re-reads the winner's row.
func (s *cartService) GetOrCreateCart(dbc dbctx.Context, userID uuid.UUID) (*types.Cart, error) {
	const op = "Cart.GetOrCreateCart"
	if userID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	c, err := s.carts.GetByUserID(dbc, userID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if c != nil {
		return c, nil
	}
	u, err := s.users.GetByID(dbc, userID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if u == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("user not found: %s", userID), nil)
	}

	created, err := s.carts.Create(dbc, []*types.Cart{{UserID: userID, TotalCost: decimal.Zero}})
	if err == nil {
		return created[0], nil
	}
	if !domainagg.IsCode(aggregates.MapError(op, err), domainagg.CodeConflict) || dbc.Tx != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.log.Debug("cart created concurrently, re-reading", "user_id", userID.String())
	c, err = s.carts.GetByUserID(dbc, userID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if c == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "cart vanished after unique violation", nil)
	}
	return c, nil
}

func (s *cartService) GetCart(dbc dbctx.Context, cartID uuid.UUID) (*CartView, error) {
	const op = "Cart.GetCart"
	c, err := s.carts.GetByID(dbc, cartID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if c == nil {
		return nil, domainagg.NewError(domainagg.CodeCartNotFound, op, fmt.Sprintf("cart not found: %s", cartID), nil)
	}
	owner, err := s.users.GetByID(dbc, c.UserID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	entries, err := s.entries.ListByCartID(dbc, c.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}

	view := &CartView{
		ID:        c.ID,
		ItemCount: c.ItemCount,
		TotalCost: c.TotalCost.StringFixed(2),
		Entries:   make([]CartEntryView, 0, len(entries)),
	}
	if owner != nil {
		view.Owner = owner.Username
	}
	for _, e := range entries {
		ev := CartEntryView{
			ID:           e.ID,
			ProductID:    e.ProductID,
			ProductCount: e.ProductCount,
			Cost:         e.Cost.StringFixed(2),
		}
		if e.Product != nil {
			ev.ProductTitle = e.Product.Title
			ev.UnitPrice = e.Product.Price.StringFixed(2)
		}
		view.Entries = append(view.Entries, ev)
	}
	return view, nil
}

func (s *cartService) GetMyCart(ctx context.Context) (*CartView, error) {
	c, err := s.callerCart(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetCart(dbctx.Background(ctx), c.ID)
}

func (s *cartService) AddEntry(ctx context.Context, productID uuid.UUID, quantity int) (domainagg.CartEntryResult, error) {
	c, err := s.callerCart(ctx)
	if err != nil {
		return domainagg.CartEntryResult{}, err
	}
	return s.agg.AddEntry(ctx, domainagg.AddCartEntryInput{CartID: c.ID, ProductID: productID, Quantity: quantity})
}

func (s *cartService) UpdateEntry(ctx context.Context, entryID uuid.UUID, quantity int) (domainagg.CartEntryResult, error) {
	c, err := s.callerCart(ctx)
	if err != nil {
		return domainagg.CartEntryResult{}, err
	}
	return s.agg.UpdateEntry(ctx, domainagg.UpdateCartEntryInput{EntryID: entryID, CartID: c.ID, Quantity: quantity})
}

func (s *cartService) DeleteEntry(ctx context.Context, entryID uuid.UUID) (domainagg.CartEntryResult, error) {
	c, err := s.callerCart(ctx)
	if err != nil {
		return domainagg.CartEntryResult{}, err
	}
	return s.agg.DeleteEntry(ctx, domainagg.DeleteCartEntryInput{EntryID: entryID, CartID: c.ID})
}

func (s *cartService) CheckoutEntry(ctx context.Context, entryID uuid.UUID) (domainagg.CheckoutEntryResult, error) {
	c, err := s.callerCart(ctx)
	if err != nil {
		return domainagg.CheckoutEntryResult{}, err
	}
	return s.checkout.CheckoutEntry(ctx, domainagg.CheckoutEntryInput{EntryID: entryID, CartID: c.ID})
}

func (s *cartService) CheckoutCart(ctx context.Context) (domainagg.CheckoutCartResult, error) {
	c, err := s.callerCart(ctx)
	if err != nil {
		return domainagg.CheckoutCartResult{}, err
	}
	res, err := s.checkout.CheckoutCart(ctx, domainagg.CheckoutCartInput{CartID: c.ID})
	if res.Partial() {
		s.log.Info("partial cart checkout", "cart_id", c.ID.String(),
			"consumed", len(res.Consumed), "skipped", len(res.Skipped))
	}
	return res, err
}

func (s *cartService) callerCart(ctx context.Context) (*types.Cart, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	return s.GetOrCreateCart(dbctx.Background(ctx), rd.UserID)
}
