package project

import (
	"context"
	"errors"

	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/perrors"
	"github.com/curaious/devboard/internal/services/fields"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Project) (*Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	ListByTeams(ctx context.Context, teamIDs []uuid.UUID) ([]*Project, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateProjectRequest) (*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectService contains business logic for projects
type ProjectService struct {
	repo     Repository
	resolver *authz.Resolver
}

// NewProjectService constructs a new ProjectService
func NewProjectService(repo Repository, resolver *authz.Resolver) *ProjectService {
	return &ProjectService{repo: repo, resolver: resolver}
}

// Create adds a project to a team owned by the caller
func (s *ProjectService) Create(ctx context.Context, caller authz.Caller, req *CreateProjectRequest) (*Project, error) {
	if req.TeamID == uuid.Nil {
		return nil, fields.Invalid("team", "is required")
	}

	name, err := fields.RequiredString("name", req.Name)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = StatusActive
	}
	if err := fields.OneOf("status", status, StatusActive, StatusCompleted, StatusOnHold); err != nil {
		return nil, err
	}

	target, err := s.resolver.Team(ctx, caller, authz.KindProject, req.TeamID)
	if err != nil {
		return nil, err
	}
	if _, err := authz.Require(caller, target, authz.ActionCreate); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &Project{
		TeamID:        req.TeamID,
		Name:          name,
		Client:        req.Client,
		TechStack:     req.TechStack,
		Links:         req.Links,
		EstimatedTime: req.EstimatedTime,
		Description:   req.Description,
		Status:        status,
		CreatedBy:     caller.ID,
	})
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to create project", err)
	}

	return created, nil
}

// Get fetches a project the caller may read
func (s *ProjectService) Get(ctx context.Context, caller authz.Caller, id uuid.UUID) (*Project, error) {
	return s.authorize(ctx, caller, id, authz.ActionRead)
}

// List returns the projects visible to the caller, newest first
func (s *ProjectService) List(ctx context.Context, caller authz.Caller, filter ListFilter) ([]*Project, error) {
	var teamIDs []uuid.UUID

	if filter.TeamID != nil {
		target, err := s.resolver.Team(ctx, caller, authz.KindProject, *filter.TeamID)
		if err != nil {
			return nil, err
		}
		if _, err := authz.Require(caller, target, authz.ActionRead); err != nil {
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

	projects, err := s.repo.ListByTeams(ctx, teamIDs)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to list projects", err)
	}

	return projects, nil
}

// Update modifies allow-listed project fields
func (s *ProjectService) Update(ctx context.Context, caller authz.Caller, id uuid.UUID, set fields.Set) (*Project, error) {
	if _, err := s.authorize(ctx, caller, id, authz.ActionUpdate); err != nil {
		return nil, err
	}

	req, err := DecodeUpdate(set)
	if err != nil {
		return nil, err
	}

	project, err := s.repo.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, perrors.NewErrNotFound("Project not found", err)
		}
		return nil, perrors.NewErrInternalServerError("Failed to update project", err)
	}

	return project, nil
}

// Delete removes a project and its tasks and bugs
func (s *ProjectService) Delete(ctx context.Context, caller authz.Caller, id uuid.UUID) error {
	if _, err := s.authorize(ctx, caller, id, authz.ActionDelete); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return perrors.NewErrNotFound("Project not found", err)
		}
		return perrors.NewErrInternalServerError("Failed to delete project", err)
	}

	return nil
}

func (s *ProjectService) authorize(ctx context.Context, caller authz.Caller, id uuid.UUID, action authz.Action) (*Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, perrors.NewErrNotFound("Project not found", err)
		}
		return nil, perrors.NewErrInternalServerError("Failed to get project", err)
	}

	target, err := s.resolver.Team(ctx, caller, authz.KindProject, project.TeamID)
	if err != nil {
		return nil, err
	}
	if _, err := authz.Require(caller, target, action); err != nil {
		return nil, err
	}

	return project, nil
}

// DecodeUpdate validates a project update against the allow-list
func DecodeUpdate(set fields.Set) (*UpdateProjectRequest, error) {
	req := &UpdateProjectRequest{}

	err := set.Each(func(key string, v any) error {
		switch key {
		case "name":
			name, err := fields.RequiredString(key, v)
			if err != nil {
				return err
			}
			req.Name = &name
		case "client", "estimated_time", "description":
			s, err := fields.String(key, v)
			if err != nil {
				return err
			}
			switch key {
			case "client":
				req.Client = &s
			case "estimated_time":
				req.EstimatedTime = &s
			default:
				req.Description = &s
			}
		case "tech_stack", "links":
			vals, err := fields.Strings(key, v)
			if err != nil {
				return err
			}
			if key == "tech_stack" {
				req.TechStack = vals
			} else {
				req.Links = vals
			}
		case "status":
			s, err := fields.String(key, v)
			if err != nil {
				return err
			}
			status := Status(s)
			if err := fields.OneOf(key, status, StatusActive, StatusCompleted, StatusOnHold); err != nil {
				return err
			}
			req.Status = &status
		default:
			return fields.NotUpdatable(key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return req, nil
}
