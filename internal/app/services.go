package app

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/yungbote/marketplace-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/marketplace-backend/internal/domain/aggregates"
	"github.com/yungbote/marketplace-backend/internal/observability"
	"github.com/yungbote/marketplace-backend/internal/platform/logger"
	"github.com/yungbote/marketplace-backend/internal/services"
)

const meterName = "github.com/yungbote/marketplace-backend/internal/data/aggregates"

type Services struct {
	ProductStore domainagg.ProductStore
	CartAgg      domainagg.CartAggregate
	Checkout     domainagg.CheckoutCoordinator

	Account services.AccountService
	Cart    services.CartService
	Catalog services.CatalogService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	otelHooks, err := aggregates.NewMetricHooks(otel.Meter(meterName))
	if err != nil {
		return Services{}, fmt.Errorf("init aggregate metric hooks: %w", err)
	}
	base := aggregates.BaseDeps{
		DB:     db,
		Log:    log,
		Runner: aggregates.NewGormTxRunner(db, aggregates.WithLockTimeout(cfg.DBLockTimeout)),
		Hooks:  aggregates.FanoutHooks(metrics, otelHooks),
	}

	store := aggregates.NewProductStore(aggregates.ProductStoreDeps{
		Base:     base,
		Products: r.Product,
		Events:   r.Outbox,
		Carts:    r.Cart,
		Entries:  r.CartEntry,
	})
	cartAgg := aggregates.NewCartAggregate(aggregates.CartAggregateDeps{
		Base:     base,
		Carts:    r.Cart,
		Entries:  r.CartEntry,
		Products: r.Product,
		Events:   r.Outbox,
	})
	checkout := aggregates.NewCheckoutCoordinator(aggregates.CheckoutCoordinatorDeps{
		Base:     base,
		Carts:    r.Cart,
		Entries:  r.CartEntry,
		Products: r.Product,
		Events:   r.Outbox,
		Store:    store,
	})

	return Services{
		ProductStore: store,
		CartAgg:      cartAgg,
		Checkout:     checkout,
		Account:      services.NewAccountService(db, log, r.User, r.Cart),
		Cart:         services.NewCartService(db, log, r.User, r.Cart, r.CartEntry, cartAgg, checkout),
		Catalog:      services.NewCatalogService(db, log, r.Product, r.User, store, checkout),
	}, nil
}
