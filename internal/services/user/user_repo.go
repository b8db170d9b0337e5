package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/curaious/devboard/internal/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

const userColumns = `id, username, email, password_hash, role, status, reset_token_hash, reset_token_expires_at, created_at, updated_at`

type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(conn *db.DB) *UserRepo {
	return &UserRepo{db: conn.DB}
}

func (r *UserRepo) Create(ctx context.Context, u *User) (*User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, role, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	var created User
	err := r.db.GetContext(ctx, &created, query, u.Username, u.Email, u.PasswordHash, u.Role, u.Status)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &created, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepo) GetByResetTokenHash(ctx context.Context, hash string) (*User, error) {
	return r.getBy(ctx, "reset_token_hash", hash)
}

func (r *UserRepo) getBy(ctx context.Context, column string, value any) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)

	var u User
	err := r.db.GetContext(ctx, &u, query, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*User, error) {
	setParts := []string{}
	args := []interface{}{}

	if req.Username != nil {
		setParts = append(setParts, fmt.Sprintf("username = $%d", len(args)+1))
		args = append(args, *req.Username)
	}

	if req.Email != nil {
		setParts = append(setParts, fmt.Sprintf("email = $%d", len(args)+1))
		args = append(args, *req.Email)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	return r.update(ctx, id, setParts, args)
}

func (r *UserRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*User, error) {
	return r.update(ctx, id, []string{"status = $1"}, []interface{}{status})
}

// UpdatePassword sets a new hash and clears any pending reset token.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	_, err := r.update(ctx, id, []string{"password_hash = $1", "reset_token_hash = NULL", "reset_token_expires_at = NULL"}, []interface{}{hash})
	return err
}

func (r *UserRepo) SetResetToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error {
	_, err := r.update(ctx, id, []string{"reset_token_hash = $1", "reset_token_expires_at = $2"}, []interface{}{hash, expiresAt})
	return err
}

func (r *UserRepo) update(ctx context.Context, id uuid.UUID, setParts []string, args []interface{}) (*User, error) {
	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setParts, ", "), len(args), userColumns)

	var u User
	err := r.db.GetContext(ctx, &u, query, args...)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrUserNotFound
		case db.IsDuplicateKey(err):
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &u, nil
}
