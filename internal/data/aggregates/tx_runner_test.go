package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	repotest "github.com/yungbote/marketplace-backend/internal/data/repos/testutil"
	types "github.com/yungbote/marketplace-backend/internal/domain"
	domainagg "github.com/yungbote/marketplace-backend/internal/domain/aggregates"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
)

func TestLockTimeoutStatement(t *testing.T) {
	if got := lockTimeoutStatement("postgres", 1500*time.Millisecond); got != "SET LOCAL lock_timeout = '1500ms'" {
		t.Fatalf("postgres: got=%q", got)
	}
	if got := lockTimeoutStatement("sqlite", time.Second); got != "" {
		t.Fatalf("sqlite: want empty got=%q", got)
	}
	if got := lockTimeoutStatement("postgres", 0); got != "" {
		t.Fatalf("zero timeout: want empty got=%q", got)
	}
}

func TestGormTxRunner_NilDB(t *testing.T) {
	err := NewGormTxRunner(nil).InTx(context.Background(), func(_ dbctx.Context) error { return nil })
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestGormTxRunner_CommitAndRollback(t *testing.T) {
	db := repotest.DB(t)
	runner := NewGormTxRunner(db, WithLockTimeout(time.Second))
	ctx := context.Background()

	committed := &types.Product{ID: uuid.New(), Title: "Committed", Price: decimal.NewFromInt(1), InventoryCount: 1}
	committed.Normalize()
	if err := runner.InTx(ctx, func(dbc dbctx.Context) error {
		return dbc.Tx.Create(committed).Error
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	boom := errors.New("boom")
	rolled := &types.Product{ID: uuid.New(), Title: "Rolled back", Price: decimal.NewFromInt(1), InventoryCount: 1}
	rolled.Normalize()
	err := runner.InTx(ctx, func(dbc dbctx.Context) error {
		if err := dbc.Tx.Create(rolled).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("rollback: expected boom, got %v", err)
	}

	var n int64
	if err := db.Model(&types.Product{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("products after rollback: want=1 got=%d", n)
	}
}
