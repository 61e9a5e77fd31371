package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/marketplace-backend/internal/domain"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
	"github.com/yungbote/marketplace-backend/internal/platform/logger"
)

// Product rows are FK parents of cart_entry. Counter locks use NO KEY UPDATE, which
// does not conflict with the KEY SHARE lock Postgres takes on the product when a
// cart_entry row is inserted. SQLite drops locking clauses and serializes writers instead.
const (
	lockCounter   = "NO KEY UPDATE"
	lockKeyShare  = "KEY SHARE"
	lockExclusive = "UPDATE"
)

type ProductRepo interface {
	Create(dbc dbctx.Context, rows []*types.Product) ([]*types.Product, error)

	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Product, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error)
	GetByTitles(dbc dbctx.Context, titles []string) ([]*types.Product, error)

	// LockByID takes the counter lock, held until the enclosing transaction ends.
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error)
	// LockByIDs takes counter locks in ascending id order.
	LockByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Product, error)
	// KeyShareByID keeps the row from being deleted without blocking counter updates.
	KeyShareByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error)
	// LockForDeleteByID takes the exclusive lock; it waits for every KEY SHARE holder.
	LockForDeleteByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error)

	UpdateInventory(dbc dbctx.Context, id uuid.UUID, inventoryCount int) error
	// DeleteByID reports whether a row was removed.
	DeleteByID(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

func (r *productRepo) Create(dbc dbctx.Context, rows []*types.Product) ([]*types.Product, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Product{}, nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.Normalize()
	}
	if err := t.WithContext(dbc.Ctx).Omit(clause.Associations).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *productRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Product, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Product
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *productRepo) GetByTitles(dbc dbctx.Context, titles []string) ([]*types.Product, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Product
	if len(titles) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("title IN ?", titles).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error) {
	return r.lockOne(dbc, id, lockCounter)
}

func (r *productRepo) KeyShareByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error) {
	return r.lockOne(dbc, id, lockKeyShare)
}

func (r *productRepo) LockForDeleteByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error) {
	return r.lockOne(dbc, id, lockExclusive)
}

func (r *productRepo) lockOne(dbc dbctx.Context, id uuid.UUID, strength string) (*types.Product, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Product
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: strength}).
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

func (r *productRepo) LockByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Product, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Product
	if len(ids) == 0 {
		return out, nil
	}
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: lockCounter}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) UpdateInventory(dbc dbctx.Context, id uuid.UUID, inventoryCount int) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"inventory_count": inventoryCount,
			"updated_at":      time.Now().UTC(),
		}).Error
}

func (r *productRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Product{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
