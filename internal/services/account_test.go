package services

import (
	"testing"

	domainagg "github.com/yungbote/marketplace-backend/internal/domain/aggregates"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
)

func TestCreateUserCreatesEmptyCart(t *testing.T) {
	f := newFixture(t)
	u, c, err := f.accounts.CreateUser(f.ctx, CreateUserInput{Username: " alice ", Email: "Alice@Example.com"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Username != "alice" || u.Email != "alice@example.com" {
		t.Fatalf("user normalized: got=%q %q", u.Username, u.Email)
	}
	if c.UserID != u.ID || c.ItemCount != 0 || !c.TotalCost.IsZero() {
		t.Fatalf("cart: got=%+v", c)
	}

	found, err := f.accounts.GetUsersByUsername(dbctx.Background(f.ctx), []string{"alice"})
	if err != nil || len(found) != 1 {
		t.Fatalf("GetUsersByUsername: want=1 got=%d err=%v", len(found), err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	f := newFixture(t)
	cases := []CreateUserInput{
		{Username: "", Email: "a@example.com"},
		{Username: "bob", Email: "not-an-email"},
	}
	for _, in := range cases {
		_, _, err := f.accounts.CreateUser(f.ctx, in)
		if !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("CreateUser(%+v): want=validation got=%v", in, err)
		}
	}
}

func TestCreateUserDuplicateRollsBack(t *testing.T) {
	f := newFixture(t)
	if _, _, err := f.accounts.CreateUser(f.ctx, CreateUserInput{Username: "carol", Email: "carol@example.com"}); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}
	_, _, err := f.accounts.CreateUser(f.ctx, CreateUserInput{Username: "carol", Email: "other@example.com"})
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("duplicate username: want=conflict got=%v", err)
	}

	var carts int64
	if err := f.db.Table("cart").Count(&carts).Error; err != nil {
		t.Fatalf("count carts: %v", err)
	}
	if carts != 1 {
		t.Fatalf("carts after failed create: want=1 got=%d", carts)
	}
}
