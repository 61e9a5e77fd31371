package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/marketplace-backend/internal/data/repos/cart"
	"github.com/yungbote/marketplace-backend/internal/data/repos/catalog"
	"github.com/yungbote/marketplace-backend/internal/data/repos/outbox"
	"github.com/yungbote/marketplace-backend/internal/data/repos/user"
	"github.com/yungbote/marketplace-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type ProductRepo = catalog.ProductRepo

type CartRepo = cart.CartRepo
type CartEntryRepo = cart.CartEntryRepo

type OutboxEventRepo = outbox.EventRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }

func NewProductRepo(db *gorm.DB, log *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, log)
}

func NewCartRepo(db *gorm.DB, log *logger.Logger) CartRepo { return cart.NewCartRepo(db, log) }

func NewCartEntryRepo(db *gorm.DB, log *logger.Logger) CartEntryRepo {
	return cart.NewCartEntryRepo(db, log)
}

func NewOutboxEventRepo(db *gorm.DB, log *logger.Logger) OutboxEventRepo {
	return outbox.NewEventRepo(db, log)
}
