package memstore

import (
	"context"
	"time"

	"github.com/curaious/devboard/internal/services/user"
	"github.com/google/uuid"
)

type Users struct{ s *state }

func (r *Users) Create(_ context.Context, u *user.User) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, user.ErrUserAlreadyExists
		}
	}

	c := *u
	c.ID = uuid.New()
	c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	r.s.users[c.ID] = &c

	out := c
	return &out, nil
}

func (r *Users) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.ID == id })
}

func (r *Users) GetByEmail(_ context.Context, email string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.Email == email })
}

func (r *Users) GetByResetTokenHash(_ context.Context, hash string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.ResetTokenHash != nil && *u.ResetTokenHash == hash })
}

func (r *Users) UpdateProfile(_ context.Context, id uuid.UUID, req *user.UpdateProfileRequest) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}

	if req.Email != nil {
		for _, other := range r.s.users {
			if other.ID != id && other.Email == *req.Email {
				return nil, user.ErrUserAlreadyExists
			}
		}
		u.Email = *req.Email
	}
	if req.Username != nil {
		u.Username = *req.Username
	}
	u.UpdatedAt = r.s.tick()

	c := *u
	return &c, nil
}

func (r *Users) UpdateStatus(_ context.Context, id uuid.UUID, status user.Status) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	u.Status = status
	u.UpdatedAt = r.s.tick()

	c := *u
	return &c, nil
}

func (r *Users) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.ResetTokenHash = nil
	u.ResetTokenExpiresAt = nil
	u.UpdatedAt = r.s.tick()
	return nil
}

func (r *Users) SetResetToken(_ context.Context, id uuid.UUID, hash string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.ResetTokenHash = &hash
	u.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (r *Users) find(match func(*user.User) bool) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, user.ErrUserNotFound
}
