package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/marketplace-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCart(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.Cart {
	tb.Helper()
	c := &types.Cart{
		ID:        uuid.New(),
		UserID:    userID,
		TotalCost: decimal.Zero,
	}
	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		tb.Fatalf("seed cart: %v", err)
	}
	return c
}

// SeedUserWithCart creates a user and its empty cart.
func SeedUserWithCart(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) (*types.User, *types.Cart) {
	tb.Helper()
	u := SeedUser(tb, ctx, tx, username)
	return u, SeedCart(tb, ctx, tx, u.ID)
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, title, price string, inventory int) *types.Product {
	tb.Helper()
	p := &types.Product{
		ID:             uuid.New(),
		Title:          title,
		Price:          decimal.RequireFromString(price),
		InventoryCount: inventory,
	}
	p.Normalize()
	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

// SetInventory overwrites a product's stock, bypassing every invariant.
func SetInventory(tb testing.TB, ctx context.Context, tx *gorm.DB, productID uuid.UUID, count int) {
	tb.Helper()
	if err := tx.WithContext(ctx).Model(&types.Product{}).
		Where("id = ?", productID).
		Update("inventory_count", count).Error; err != nil {
		tb.Fatalf("set inventory: %v", err)
	}
}

func ReloadProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, id uuid.UUID) *types.Product {
	tb.Helper()
	var p types.Product
	if err := tx.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		tb.Fatalf("reload product: %v", err)
	}
	return &p
}

func ReloadCart(tb testing.TB, ctx context.Context, tx *gorm.DB, id uuid.UUID) *types.Cart {
	tb.Helper()
	var c types.Cart
	if err := tx.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		tb.Fatalf("reload cart: %v", err)
	}
	return &c
}

// ListEntries returns the live entries of a cart.
func ListEntries(tb testing.TB, ctx context.Context, tx *gorm.DB, cartID uuid.UUID) []*types.CartEntry {
	tb.Helper()
	var rows []*types.CartEntry
	if err := tx.WithContext(ctx).Where("cart_id = ?", cartID).Order("id ASC").Find(&rows).Error; err != nil {
		tb.Fatalf("list entries: %v", err)
	}
	return rows
}

// AssertCartConsistent fails when the cart totals differ from the sum over its entries.
func AssertCartConsistent(tb testing.TB, ctx context.Context, tx *gorm.DB, cartID uuid.UUID) *types.Cart {
	tb.Helper()
	c := ReloadCart(tb, ctx, tx, cartID)
	items := 0
	cost := decimal.Zero
	for _, e := range ListEntries(tb, ctx, tx, cartID) {
		items += e.ProductCount
		cost = cost.Add(e.Cost)
	}
	if c.ItemCount != items || !c.TotalCost.Equal(cost) {
		tb.Fatalf("cart %s inconsistent: aggregates=(%d, %s) entries=(%d, %s)",
			cartID, c.ItemCount, c.TotalCost, items, cost)
	}
	return c
}
