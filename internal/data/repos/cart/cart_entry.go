package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/marketplace-backend/internal/domain"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
	"github.com/yungbote/marketplace-backend/internal/platform/logger"
)

type CartEntryRepo interface {
	Create(dbc dbctx.Context, row *types.CartEntry) (*types.CartEntry, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CartEntry, error)
	GetByCartAndProduct(dbc dbctx.Context, cartID, productID uuid.UUID) (*types.CartEntry, error)
	// ListByCartID returns entries with their product preloaded, oldest first.
	ListByCartID(dbc dbctx.Context, cartID uuid.UUID) ([]*types.CartEntry, error)

	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.CartEntry, error)
	// LockByCartID locks every entry of a cart in ascending id order.
	LockByCartID(dbc dbctx.Context, cartID uuid.UUID) ([]*types.CartEntry, error)
	// LockByProductID locks every entry referencing a product in ascending id order.
	LockByProductID(dbc dbctx.Context, productID uuid.UUID) ([]*types.CartEntry, error)
	CountByProductID(dbc dbctx.Context, productID uuid.UUID) (int64, error)

	UpdateQuantity(dbc dbctx.Context, id uuid.UUID, productCount int, cost decimal.Decimal) error
	// DeleteByID reports whether a row was removed.
	DeleteByID(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type cartEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartEntryRepo(db *gorm.DB, baseLog *logger.Logger) CartEntryRepo {
	return &cartEntryRepo{db: db, log: baseLog.With("repo", "CartEntryRepo")}
}

func (r *cartEntryRepo) Create(dbc dbctx.Context, row *types.CartEntry) (*types.CartEntry, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := t.WithContext(dbc.Ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *cartEntryRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CartEntry, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.CartEntry
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *cartEntryRepo) GetByCartAndProduct(dbc dbctx.Context, cartID, productID uuid.UUID) (*types.CartEntry, error) {
	if cartID == uuid.Nil || productID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.CartEntry
	err := t.WithContext(dbc.Ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *cartEntryRepo) ListByCartID(dbc dbctx.Context, cartID uuid.UUID) ([]*types.CartEntry, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.CartEntry
	if cartID == uuid.Nil {
		return out, nil
	}
	err := t.WithContext(dbc.Ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cartEntryRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.CartEntry, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.CartEntry
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *cartEntryRepo) LockByCartID(dbc dbctx.Context, cartID uuid.UUID) ([]*types.CartEntry, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.CartEntry
	if cartID == uuid.Nil {
		return out, nil
	}
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cartEntryRepo) LockByProductID(dbc dbctx.Context, productID uuid.UUID) ([]*types.CartEntry, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.CartEntry
	if productID == uuid.Nil {
		return out, nil
	}
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cartEntryRepo) CountByProductID(dbc dbctx.Context, productID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if productID == uuid.Nil {
		return 0, nil
	}
	if err := t.WithContext(dbc.Ctx).Model(&types.CartEntry{}).Where("product_id = ?", productID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *cartEntryRepo) UpdateQuantity(dbc dbctx.Context, id uuid.UUID, productCount int, cost decimal.Decimal) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.CartEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"product_count": productCount,
			"cost":          cost,
			"updated_at":    time.Now().UTC(),
		}).Error
}

func (r *cartEntryRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.CartEntry{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
