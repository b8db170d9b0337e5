package client

import (
	"context"
	"errors"

	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/perrors"
	"github.com/curaious/devboard/internal/services/fields"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *Client) (*Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)
	ListByTeams(ctx context.Context, teamIDs []uuid.UUID) ([]*Client, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateClientRequest) (*Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ClientService struct {
	repo     Repository
	resolver *authz.Resolver
}

func NewClientService(repo Repository, resolver *authz.Resolver) *ClientService {
	return &ClientService{repo: repo, resolver: resolver}
}

func (s *ClientService) Create(ctx context.Context, caller authz.Caller, req *CreateClientRequest) (*Client, error) {
	if req.TeamID == uuid.Nil {
		return nil, fields.Invalid("team", "is required")
	}

	name, err := fields.RequiredString("name", req.Name)
	if err != nil {
		return nil, err
	}

	if err := fields.OneOf("type", req.Type, TypeLocal, TypeFreelance); err != nil {
		return nil, err
	}

	if _, err := s.authorizeTeam(ctx, caller, req.TeamID, authz.ActionCreate); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &Client{
		TeamID:      req.TeamID,
		Name:        name,
		Type:        req.Type,
		Description: req.Description,
		Source:      req.Source,
	})
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to create client", err)
	}

	return created, nil
}

func (s *ClientService) Get(ctx context.Context, caller authz.Caller, id uuid.UUID) (*Client, error) {
	return s.authorize(ctx, caller, id, authz.ActionRead)
}

// List returns clients of the caller's teams, or of one team when filtered
func (s *ClientService) List(ctx context.Context, caller authz.Caller, filter ListFilter) ([]*Client, error) {
	var teamIDs []uuid.UUID

	if filter.TeamID != nil {
		if _, err := s.authorizeTeam(ctx, caller, *filter.TeamID, authz.ActionRead); err != nil {
			return nil, err
		}
		teamIDs = []uuid.UUID{*filter.TeamID}
	} else {
		ids, err := s.resolver.VisibleTeams(ctx, caller)
		if err != nil {
			return nil, err
		}
		teamIDs = ids
	}

	clients, err := s.repo.ListByTeams(ctx, teamIDs)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to list clients", err)
	}

	return clients, nil
}

func (s *ClientService) Update(ctx context.Context, caller authz.Caller, id uuid.UUID, set fields.Set) (*Client, error) {
	if _, err := s.authorize(ctx, caller, id, authz.ActionUpdate); err != nil {
		return nil, err
	}

	req := &UpdateClientRequest{}
	err := set.Each(func(key string, v any) error {
		switch key {
		case "name":
			name, err := fields.RequiredString(key, v)
			if err != nil {
				return err
			}
			req.Name = &name
		case "type":
			val, err := fields.String(key, v)
			if err != nil {
				return err
			}
			t := Type(val)
			if err := fields.OneOf(key, t, TypeLocal, TypeFreelance); err != nil {
				return err
			}
			req.Type = &t
		case "description":
			val, err := fields.String(key, v)
			if err != nil {
				return err
			}
			req.Description = &val
		case "source":
			val, err := fields.String(key, v)
			if err != nil {
				return err
			}
			req.Source = &val
		default:
			return fields.NotUpdatable(key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, ErrClientNotFound) {
			return nil, perrors.NewErrNotFound("Client not found", err)
		}
		return nil, perrors.NewErrInternalServerError("Failed to update client", err)
	}

	return updated, nil
}

func (s *ClientService) Delete(ctx context.Context, caller authz.Caller, id uuid.UUID) error {
	if _, err := s.authorize(ctx, caller, id, authz.ActionDelete); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrClientNotFound) {
			return perrors.NewErrNotFound("Client not found", err)
		}
		return perrors.NewErrInternalServerError("Failed to delete client", err)
	}

	return nil
}

func (s *ClientService) authorize(ctx context.Context, caller authz.Caller, id uuid.UUID, action authz.Action) (*Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrClientNotFound) {
			return nil, perrors.NewErrNotFound("Client not found", err)
		}
		return nil, perrors.NewErrInternalServerError("Failed to get client", err)
	}

	if _, err := s.authorizeTeam(ctx, caller, c.TeamID, action); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *ClientService) authorizeTeam(ctx context.Context, caller authz.Caller, teamID uuid.UUID, action authz.Action) (authz.Decision, error) {
	target, err := s.resolver.Team(ctx, caller, authz.KindClient, teamID)
	if err != nil {
		return authz.Decision{}, err
	}
	return authz.Require(caller, target, action)
}
