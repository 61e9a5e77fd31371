package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/marketplace-backend/internal/data/aggregates"
	"github.com/yungbote/marketplace-backend/internal/data/repos"
	types "github.com/yungbote/marketplace-backend/internal/domain"
	domainagg "github.com/yungbote/marketplace-backend/internal/domain/aggregates"
	"github.com/yungbote/marketplace-backend/internal/platform/dbctx"
	"github.com/yungbote/marketplace-backend/internal/platform/logger"
)

type CreateUserInput struct {
	Username string
	Email    string
}

type AccountService interface {
	// CreateUser creates the user and its empty cart in one transaction.
	CreateUser(ctx context.Context, in CreateUserInput) (*types.User, *types.Cart, error)
	GetUsersByUsername(dbc dbctx.Context, usernames []string) ([]*types.User, error)
}

type accountService struct {
	db    *gorm.DB
	log   *logger.Logger
	users repos.UserRepo
	carts repos.CartRepo
}

func NewAccountService(db *gorm.DB, baseLog *logger.Logger, users repos.UserRepo, carts repos.CartRepo) AccountService {
	return &accountService{
		db:    db,
		log:   baseLog.With("service", "AccountService"),
		users: users,
		carts: carts,
	}
}

func (s *accountService) CreateUser(ctx context.Context, in CreateUserInput) (*types.User, *types.Cart, error) {
	const op = "Account.CreateUser"
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" {
		return nil, nil, domainagg.NewError(domainagg.CodeValidation, op, "missing username", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("invalid email %q", in.Email), err)
	}

	var (
		u *types.User
		c *types.Cart
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		created, err := s.users.Create(inner, []*types.User{{Username: username, Email: email}})
		if err != nil {
			return err
		}
		u = created[0]
		carts, err := s.carts.Create(inner, []*types.Cart{{UserID: u.ID, TotalCost: decimal.Zero}})
		if err != nil {
			return err
		}
		c = carts[0]
		return nil
	})
	if err != nil {
		s.log.Warn("CreateUser failed", "username", username, "error", err)
		return nil, nil, aggregates.MapError(op, err)
	}
	return u, c, nil
}

func (s *accountService) GetUsersByUsername(dbc dbctx.Context, usernames []string) ([]*types.User, error) {
	return s.users.GetByUsernames(dbc, usernames)
}
