package aggregates_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/marketplace-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/marketplace-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/marketplace-backend/internal/data/repos"
	repotest "github.com/yungbote/marketplace-backend/internal/data/repos/testutil"
	types "github.com/yungbote/marketplace-backend/internal/domain"
	domainagg "github.com/yungbote/marketplace-backend/internal/domain/aggregates"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
)

type harness struct {
	ctx   context.Context
	db    *gorm.DB
	hooks *aggtest.HooksRecorder

	events repos.OutboxEventRepo

	cart     domainagg.CartAggregate
	checkout domainagg.CheckoutCoordinator
	store    domainagg.ProductStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithRunner(t, nil)
}

// newHarnessWithRunner lets wrap decorate the real transaction runner, e.g. to inject failures.
func newHarnessWithRunner(t *testing.T, wrap func(aggregates.TxRunner) aggregates.TxRunner) *harness {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)

	runner := aggregates.NewGormTxRunner(db)
	if wrap != nil {
		runner = wrap(runner)
	}
	hooks := &aggtest.HooksRecorder{}
	base := aggregates.BaseDeps{DB: db, Log: log, Runner: runner, Hooks: hooks}

	carts := repos.NewCartRepo(db, log)
	entries := repos.NewCartEntryRepo(db, log)
	products := repos.NewProductRepo(db, log)
	events := repos.NewOutboxEventRepo(db, log)

	store := aggregates.NewProductStore(aggregates.ProductStoreDeps{
		Base:     base,
		Products: products,
		Events:   events,
		Carts:    carts,
		Entries:  entries,
	})
	return &harness{
		ctx:    context.Background(),
		db:     db,
		hooks:  hooks,
		events: events,
		cart: aggregates.NewCartAggregate(aggregates.CartAggregateDeps{
			Base:     base,
			Carts:    carts,
			Entries:  entries,
			Products: products,
			Events:   events,
		}),
		checkout: aggregates.NewCheckoutCoordinator(aggregates.CheckoutCoordinatorDeps{
			Base:     base,
			Carts:    carts,
			Entries:  entries,
			Products: products,
			Events:   events,
			Store:    store,
		}),
		store: store,
	}
}

func (h *harness) seedCart(t *testing.T, username string) *types.Cart {
	t.Helper()
	_, c := repotest.SeedUserWithCart(t, h.ctx, h.db, username)
	return c
}

func (h *harness) seedProduct(t *testing.T, title, price string, inventory int) *types.Product {
	t.Helper()
	return repotest.SeedProduct(t, h.ctx, h.db, title, price, inventory)
}

func (h *harness) addEntry(t *testing.T, cartID, productID uuid.UUID, qty int) domainagg.CartEntryResult {
	t.Helper()
	res, err := h.cart.AddEntry(h.ctx, domainagg.AddCartEntryInput{CartID: cartID, ProductID: productID, Quantity: qty})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	return res
}

func (h *harness) topics(t *testing.T) []string {
	t.Helper()
	rows, err := h.events.ListUnpublished(dbctx.Background(h.ctx), 1000)
	if err != nil {
		t.Fatalf("ListUnpublished: %v", err)
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Topic)
	}
	return out
}

func countTopic(topics []string, topic string) int {
	n := 0
	for _, t := range topics {
		if t == topic {
			n++
		}
	}
	return n
}

func wantCode(t *testing.T, err error, code domainagg.ErrorCode) {
	t.Helper()
	if got := domainagg.CodeOf(err); got != code {
		t.Fatalf("error code: want=%s got=%s (err=%v)", code, got, err)
	}
}
