package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/marketplace-backend/internal/data/repos"
	"github.com/yungbote/marketplace-backend/internal/platform/logger"
)

type Repos struct {
	User      repos.UserRepo
	Product   repos.ProductRepo
	Cart      repos.CartRepo
	CartEntry repos.CartEntryRepo
	Outbox    repos.OutboxEventRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		Product:   repos.NewProductRepo(db, log),
		Cart:      repos.NewCartRepo(db, log),
		CartEntry: repos.NewCartEntryRepo(db, log),
		Outbox:    repos.NewOutboxEventRepo(db, log),
	}
}
