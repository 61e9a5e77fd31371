package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/marketplace-backend/internal/data/aggregates"
	"github.com/yungbote/marketplace-backend/internal/data/repos"
	repotest "github.com/yungbote/marketplace-backend/internal/data/repos/testutil"
	"github.com/yungbote/marketplace-backend/internal/platform/ctxutil"
)

type fixture struct {
	ctx context.Context
	db  *gorm.DB

	accounts AccountService
	carts    CartService
	catalog  CatalogService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)

	users := repos.NewUserRepo(db, log)
	cartRepo := repos.NewCartRepo(db, log)
	entries := repos.NewCartEntryRepo(db, log)
	products := repos.NewProductRepo(db, log)
	events := repos.NewOutboxEventRepo(db, log)

	base := aggregates.BaseDeps{DB: db, Log: log}
	store := aggregates.NewProductStore(aggregates.ProductStoreDeps{
		Base:     base,
		Products: products,
		Events:   events,
		Carts:    cartRepo,
		Entries:  entries,
	})
	agg := aggregates.NewCartAggregate(aggregates.CartAggregateDeps{
		Base:     base,
		Carts:    cartRepo,
		Entries:  entries,
		Products: products,
		Events:   events,
	})
	checkout := aggregates.NewCheckoutCoordinator(aggregates.CheckoutCoordinatorDeps{
		Base:     base,
		Carts:    cartRepo,
		Entries:  entries,
		Products: products,
		Events:   events,
		Store:    store,
	})

	return &fixture{
		ctx:      context.Background(),
		db:       db,
		accounts: NewAccountService(db, log, users, cartRepo),
		carts:    NewCartService(db, log, users, cartRepo, entries, agg, checkout),
		catalog:  NewCatalogService(db, log, products, users, store, checkout),
	}
}

func (f *fixture) as(userID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(f.ctx, &ctxutil.RequestData{UserID: userID})
}
