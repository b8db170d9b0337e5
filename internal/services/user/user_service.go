package user

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/perrors"
	"github.com/curaious/devboard/internal/services/fields"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

// Repository is the identity store.
type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByResetTokenHash(ctx context.Context, hash string) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	SetResetToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error
}

// TeamDirectory tells whether a manager has a developer in one of their teams.
type TeamDirectory interface {
	ManagesDeveloper(ctx context.Context, managerID, developerID uuid.UUID) (bool, error)
}

type UserService struct {
	repo     Repository
	teams    TeamDirectory
	resetTTL time.Duration
	now      func() time.Time
}

func NewUserService(repo Repository, teams TeamDirectory, resetTTL time.Duration) *UserService {
	return &UserService{repo: repo, teams: teams, resetTTL: resetTTL, now: time.Now}
}

// Signup creates an enabled account.
func (s *UserService) Signup(ctx context.Context, req *SignupRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	if len(username) < minUsernameLength {
		return nil, fields.Invalid("username", "must be at least 3 characters")
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if len(req.Password) < minPasswordLength {
		return nil, fields.Invalid("password", "must be at least 6 characters")
	}

	if !req.Role.Valid() {
		return nil, fields.Invalid("role", "must be one of manager, developer")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       StatusEnable,
	})
	if err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			return nil, perrors.NewErrConflict("A user with this email already exists", err)
		}
		return nil, perrors.NewErrInternalServerError("Failed to create user", err)
	}

	return created, nil
}

// Authenticate checks email and password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, perrors.NewErrUnauthenticated("Invalid credentials", err)
		}
		return nil, perrors.NewErrInternalServerError("Failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, perrors.NewErrUnauthenticated("Invalid credentials", errors.New("invalid password"))
	}

	if !u.Enabled() {
		return nil, perrors.NewErrForbidden("This account is disabled", errors.New("user is disabled"))
	}

	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, perrors.NewErrNotFound("User not found", err)
		}
		return nil, perrors.NewErrInternalServerError("Failed to get user", err)
	}
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, perrors.NewErrNotFound("No user is registered with this email", err)
		}
		return nil, perrors.NewErrInternalServerError("Failed to get user", err)
	}
	return u, nil
}

// UpdateProfile applies the allow-listed profile fields of set.
func (s *UserService) UpdateProfile(ctx context.Context, caller authz.Caller, set fields.Set) (*User, error) {
	req := &UpdateProfileRequest{}
	err := set.Each(func(key string, v any) error {
		switch key {
		case "username":
			name, err := fields.String(key, v)
			if err != nil {
				return err
			}
			if len(name) < minUsernameLength {
				return fields.Invalid(key, "must be at least 3 characters")
			}
			req.Username = &name
		case "email":
			raw, err := fields.String(key, v)
			if err != nil {
				return err
			}
			email, err := normalizeEmail(raw)
			if err != nil {
				return err
			}
			req.Email = &email
		default:
			return fields.NotUpdatable(key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateProfile(ctx, caller.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return nil, perrors.NewErrNotFound("User not found", err)
		case errors.Is(err, ErrUserAlreadyExists):
			return nil, perrors.NewErrConflict("A user with this email already exists", err)
		}
		return nil, perrors.NewErrInternalServerError("Failed to update profile", err)
	}

	return updated, nil
}

func (s *UserService) ChangePassword(ctx context.Context, caller authz.Caller, current, next string) error {
	u, err := s.GetByID(ctx, caller.ID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return perrors.NewErrForbidden("Current password is incorrect", err)
	}

	if len(next) < minPasswordLength {
		return fields.Invalid("new_password", "must be at least 6 characters")
	}

	hash, err := hashPassword(next)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return perrors.NewErrInternalServerError("Failed to update password", err)
	}
	return nil
}

// UpdateStatus enables or disables a developer. Only a manager who has the
// developer in one of their teams may do so.
func (s *UserService) UpdateStatus(ctx context.Context, caller authz.Caller, id uuid.UUID, status Status) (*User, error) {
	if err := fields.OneOf("status", status, StatusEnable, StatusDisable); err != nil {
		return nil, err
	}

	if !caller.Role.Capabilities().Has(authz.CanManageTeam) {
		return nil, perrors.NewErrForbidden("Only managers can change a user's status", errors.New("caller is not a manager"))
	}

	target, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if target.Role != authz.RoleDeveloper {
		return nil, perrors.NewErrForbidden("Only developer accounts can be enabled or disabled", errors.New("target is not a developer"))
	}

	ok, err := s.teams.ManagesDeveloper(ctx, caller.ID, target.ID)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to check team membership", err)
	}
	if !ok {
		return nil, perrors.NewErrForbidden("Developer is not a member of any of your teams", errors.New("developer not managed by caller"))
	}

	updated, err := s.repo.UpdateStatus(ctx, target.ID, status)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to update status", err)
	}
	return updated, nil
}

// ForgotPassword issues a reset token. Only its hash is stored; the raw token
// is returned to the caller.
func (s *UserService) ForgotPassword(ctx context.Context, email string) (string, time.Time, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, err
	}

	token, err := generateToken()
	if err != nil {
		return "", time.Time{}, perrors.NewErrInternalServerError("Failed to generate reset token", err)
	}

	expiresAt := s.now().Add(s.resetTTL)
	if err := s.repo.SetResetToken(ctx, u.ID, hashToken(token), expiresAt); err != nil {
		return "", time.Time{}, perrors.NewErrInternalServerError("Failed to store reset token", err)
	}

	return token, expiresAt, nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return fields.Invalid("token", "is required")
	}

	u, err := s.repo.GetByResetTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return perrors.NewErrInvalidInput("Reset token is invalid or has expired", err)
		}
		return perrors.NewErrInternalServerError("Failed to get user", err)
	}

	if u.ResetTokenExpiresAt == nil || s.now().After(*u.ResetTokenExpiresAt) {
		return perrors.NewErrInvalidInput("Reset token is invalid or has expired", errors.New("reset token expired"))
	}

	if len(password) < minPasswordLength {
		return fields.Invalid("password", "must be at least 6 characters")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return perrors.NewErrInternalServerError("Failed to update password", err)
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fields.Invalid("email", "must be a valid email address")
	}
	return email, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", perrors.NewErrInternalServerError("Failed to hash password", err)
	}
	return string(hash), nil
}

func generateToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
