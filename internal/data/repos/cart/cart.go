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

type CartRepo interface {
	Create(dbc dbctx.Context, rows []*types.Cart) ([]*types.Cart, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Cart, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Cart, error)

	// LockByID takes NO KEY UPDATE: cart rows are FK parents of cart_entry, and an entry
	// insert's KEY SHARE on its cart must not conflict with the totals lock.
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Cart, error)

	UpdateTotals(dbc dbctx.Context, id uuid.UUID, itemCount int, totalCost decimal.Decimal) error
}

type cartRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartRepo(db *gorm.DB, baseLog *logger.Logger) CartRepo {
	return &cartRepo{db: db, log: baseLog.With("repo", "CartRepo")}
}

func (r *cartRepo) Create(dbc dbctx.Context, rows []*types.Cart) ([]*types.Cart, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Cart{}, nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := t.WithContext(dbc.Ctx).Omit(clause.Associations).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *cartRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Cart, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Cart
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *cartRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Cart, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Cart
	if err := t.WithContext(dbc.Ctx).Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *cartRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Cart, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Cart
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "NO KEY UPDATE"}).
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

func (r *cartRepo) UpdateTotals(dbc dbctx.Context, id uuid.UUID, itemCount int, totalCost decimal.Decimal) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Cart{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"item_count": itemCount,
			"total_cost": totalCost,
			"updated_at": time.Now().UTC(),
		}).Error
}
