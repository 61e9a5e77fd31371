package outbox

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/marketplace-backend/internal/domain"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
	"github.com/yungbote/marketplace-backend/internal/platform/logger"
)

type EventRepo interface {
	Create(dbc dbctx.Context, rows []*types.OutboxEvent) ([]*types.OutboxEvent, error)
	// ListUnpublished returns the oldest pending events first.
	ListUnpublished(dbc dbctx.Context, limit int) ([]*types.OutboxEvent, error)
	MarkPublished(dbc dbctx.Context, ids []uuid.UUID, at time.Time) error
	// DeletePublishedBefore prunes delivered events older than cutoff.
	DeletePublishedBefore(dbc dbctx.Context, cutoff time.Time) (int64, error)
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return &eventRepo{db: db, log: baseLog.With("repo", "OutboxEventRepo")}
}

func (r *eventRepo) Create(dbc dbctx.Context, rows []*types.OutboxEvent) ([]*types.OutboxEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.OutboxEvent{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *eventRepo) ListUnpublished(dbc dbctx.Context, limit int) ([]*types.OutboxEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 100
	}
	var out []*types.OutboxEvent
	err := t.WithContext(dbc.Ctx).
		Where("published_at IS NULL").
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *eventRepo) MarkPublished(dbc dbctx.Context, ids []uuid.UUID, at time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.OutboxEvent{}).
		Where("id IN ? AND published_at IS NULL", ids).
		Update("published_at", at.UTC()).Error
}

func (r *eventRepo) DeletePublishedBefore(dbc dbctx.Context, cutoff time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Where("published_at IS NOT NULL AND published_at < ?", cutoff.UTC()).
		Delete(&types.OutboxEvent{})
	return res.RowsAffected, res.Error
}
