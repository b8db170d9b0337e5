package user

import (
	"time"

	"github.com/curaious/devboard/internal/authz"
	"github.com/google/uuid"
)

type Status string

const (
	StatusEnable  Status = "Enable"
	StatusDisable Status = "Disable"
)

type User struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	Username            string     `db:"username" json:"username"`
	Email               string     `db:"email" json:"email"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	Role                authz.Role `db:"role" json:"role"`
	Status              Status     `db:"status" json:"status"`
	ResetTokenHash      *string    `db:"reset_token_hash" json:"-"`
	ResetTokenExpiresAt *time.Time `db:"reset_token_expires_at" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// Caller returns the identity u acts as.
func (u *User) Caller() authz.Caller {
	return authz.Caller{ID: u.ID, Role: u.Role, Email: u.Email}
}

func (u *User) Enabled() bool {
	return u.Status == StatusEnable
}

// SignupRequest captures payload for creating an account
type SignupRequest struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     authz.Role `json:"role"`
}

// UpdateProfileRequest holds the allow-listed profile fields
type UpdateProfileRequest struct {
	Username *string
	Email    *string
}
