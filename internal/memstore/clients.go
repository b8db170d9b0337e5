package memstore

import (
	"context"
	"time"

	"github.com/curaious/devboard/internal/services/client"
	"github.com/google/uuid"
)

type Clients struct{ s *state }

func (r *Clients) Create(_ context.Context, c *client.Client) (*client.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row := *c
	row.ID = uuid.New()
	row.CreatedAt = r.s.tick()
	row.UpdatedAt = row.CreatedAt
	r.s.clients[row.ID] = &row

	out := row
	return &out, nil
}

func (r *Clients) GetByID(_ context.Context, id uuid.UUID) (*client.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.clients[id]
	if !ok {
		return nil, client.ErrClientNotFound
	}
	out := *c
	return &out, nil
}

func (r *Clients) ListByTeams(_ context.Context, teamIDs []uuid.UUID) ([]*client.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return newestFirst(r.s.clients, func(c *client.Client) bool { return contains(teamIDs, c.TeamID) }, clientCreated), nil
}

func (r *Clients) Update(_ context.Context, id uuid.UUID, req *client.UpdateClientRequest) (*client.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.clients[id]
	if !ok {
		return nil, client.ErrClientNotFound
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Type != nil {
		c.Type = *req.Type
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Source != nil {
		c.Source = *req.Source
	}
	c.UpdatedAt = r.s.tick()

	out := *c
	return &out, nil
}

func (r *Clients) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.clients[id]; !ok {
		return client.ErrClientNotFound
	}
	delete(r.s.clients, id)
	return nil
}

func clientCreated(c *client.Client) time.Time { return c.CreatedAt }
