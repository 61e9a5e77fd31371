package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/marketplace-backend/internal/data/repos/testutil"
	types "github.com/yungbote/marketplace-backend/internal/domain"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.Create(dbc, []*types.User{{Username: "alice", Email: "alice@example.com"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: expected id to be assigned, got %+v", created)
	}

	got, err := repo.GetByID(dbc, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Username != "alice" {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}

	byName, err := repo.GetByUsernames(dbc, []string{"alice", "nobody"})
	if err != nil {
		t.Fatalf("GetByUsernames: %v", err)
	}
	if len(byName) != 1 {
		t.Fatalf("GetByUsernames: want=1 got=%d", len(byName))
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil {
		t.Fatalf("GetByID missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByID missing: expected nil, got %+v", missing)
	}

	if _, err := repo.Create(dbc, []*types.User{{Username: "alice", Email: "other@example.com"}}); err == nil {
		t.Fatalf("Create: expected unique violation on username")
	}
}
