package adapters

import (
	"context"
	"errors"

	"github.com/curaious/devboard/internal/services/team"
	"github.com/curaious/devboard/internal/services/user"
	"github.com/google/uuid"
)

type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// UserDirectory exposes the identity store to the team engine.
type UserDirectory struct {
	users UserLookup
}

func NewUserDirectory(users UserLookup) *UserDirectory {
	return &UserDirectory{users: users}
}

func (d *UserDirectory) AccountByEmail(ctx context.Context, email string) (*team.Account, error) {
	return account(d.users.GetByEmail(ctx, email))
}

func (d *UserDirectory) AccountByID(ctx context.Context, id uuid.UUID) (*team.Account, error) {
	return account(d.users.GetByID(ctx, id))
}

func account(u *user.User, err error) (*team.Account, error) {
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, team.ErrAccountNotFound
		}
		return nil, err
	}
	return &team.Account{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}, nil
}
