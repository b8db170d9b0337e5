package workitem

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/perrors"
	"github.com/curaious/devboard/internal/services/fields"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, w *WorkItem) (*WorkItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*WorkItem, error)
	List(ctx context.Context, q Query) ([]*WorkItem, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*WorkItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service applies the ownership chain project -> team -> manager to one kind
// of work item.
type Service struct {
	kind     Kind
	repo     Repository
	resolver *authz.Resolver
}

func NewService(kind Kind, repo Repository, resolver *authz.Resolver) *Service {
	return &Service{kind: kind, repo: repo, resolver: resolver}
}

func (s *Service) Kind() Kind {
	return s.kind
}

// Create adds a work item to a project of a team the caller owns. The
// assignee must belong to that team.
func (s *Service) Create(ctx context.Context, caller authz.Caller, req *CreateRequest) (*WorkItem, error) {
	if req.ProjectID == uuid.Nil {
		return nil, fields.Invalid("project_id", "is required")
	}
	if req.DeveloperID == uuid.Nil {
		return nil, fields.Invalid("developer_id", "is required")
	}

	name, err := fields.RequiredString("name", req.Name)
	if err != nil {
		return nil, err
	}

	var due *time.Time
	if req.ExpectedCompletionDate != "" {
		t, err := fields.ParseTime("expected_completion_date", req.ExpectedCompletionDate)
		if err != nil {
			return nil, err
		}
		due = &t
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if err := fields.OneOf("priority", priority, PriorityHigh, PriorityMedium, PriorityLow); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = StatusActive
	}
	if err := fields.OneOf("status", status, statuses...); err != nil {
		return nil, err
	}

	target, err := s.resolver.Project(ctx, caller, s.kind.resource(), req.ProjectID, req.DeveloperID)
	if err != nil {
		return nil, err
	}
	if _, err := authz.Require(caller, target, authz.ActionCreate); err != nil {
		return nil, err
	}

	if err := s.requireAssignable(ctx, req.DeveloperID, target.TeamID); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &WorkItem{
		ProjectID:              req.ProjectID,
		DeveloperID:            req.DeveloperID,
		Name:                   name,
		Description:            req.Description,
		ExpectedCompletionDate: due,
		Priority:               priority,
		Status:                 status,
		CreatedBy:              caller.ID,
	})
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to create "+string(s.kind), err)
	}

	return created, nil
}

func (s *Service) Get(ctx context.Context, caller authz.Caller, id uuid.UUID) (*WorkItem, error) {
	w, _, _, err := s.authorize(ctx, caller, id, authz.ActionRead)
	return w, err
}

// List returns the work items visible to the caller, newest first. Managers
// see every item under their teams; developers see what is assigned to them.
func (s *Service) List(ctx context.Context, caller authz.Caller, filter ListFilter) ([]*WorkItem, error) {
	q := Query{ProjectID: filter.ProjectID}

	if filter.ProjectID != nil {
		target, err := s.resolver.Project(ctx, caller, authz.KindProject, *filter.ProjectID, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if _, err := authz.Require(caller, target, authz.ActionRead); err != nil {
			return nil, err
		}
	}

	switch caps := caller.Role.Capabilities(); {
	case caps.Has(authz.CanManageTeam):
		if filter.ProjectID == nil {
			ids, err := s.resolver.VisibleTeams(ctx, caller)
			if err != nil {
				return nil, err
			}
			q.TeamIDs = ids
			if q.TeamIDs == nil {
				q.TeamIDs = []uuid.UUID{}
			}
		}
	case caps.Has(authz.CanActAsAssignee):
		q.DeveloperID = &caller.ID
	default:
		return nil, perrors.NewErrForbidden("You are not allowed to list "+s.kind.table(), fmt.Errorf("unknown role %q", caller.Role))
	}

	items, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to list "+s.kind.table(), err)
	}

	return items, nil
}

// Update applies set to a work item. A manager may change any allow-listed
// field; the assignee may only submit {"status": "completed"}.
func (s *Service) Update(ctx context.Context, caller authz.Caller, id uuid.UUID, set fields.Set) (*WorkItem, error) {
	existing, target, d, err := s.authorize(ctx, caller, id, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}

	var req *UpdateRequest
	if d.Limited {
		if !set.Only("status", string(StatusCompleted)) {
			return nil, perrors.NewErrForbidden(
				"Developers can only mark a "+string(s.kind)+" as completed",
				fmt.Errorf("fields %v not allowed for assignee", set.Keys()),
			)
		}
		req = &UpdateRequest{Status: fields.Ptr(StatusCompleted)}
	} else {
		req, err = DecodeUpdate(set)
		if err != nil {
			return nil, err
		}
		if existing.Status == StatusCompleted && req.Status != nil && *req.Status != StatusCompleted {
			return nil, perrors.NewErrInvalidState(
				"A completed "+string(s.kind)+" cannot be reopened",
				fmt.Errorf("%s %s is %s", s.kind, id, existing.Status),
			)
		}
		if req.DeveloperID != nil && *req.DeveloperID != existing.DeveloperID {
			if err := s.requireAssignable(ctx, *req.DeveloperID, target.TeamID); err != nil {
				return nil, err
			}
		}
	}

	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, perrors.NewErrNotFound(s.kind.Title()+" not found", err)
		}
		return nil, perrors.NewErrInternalServerError("Failed to update "+string(s.kind), err)
	}

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, caller authz.Caller, id uuid.UUID) error {
	if _, _, _, err := s.authorize(ctx, caller, id, authz.ActionDelete); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return perrors.NewErrNotFound(s.kind.Title()+" not found", err)
		}
		return perrors.NewErrInternalServerError("Failed to delete "+string(s.kind), err)
	}

	return nil
}

// authorize walks item -> project -> team and checks action. A missing link
// anywhere in the chain is reported as not found.
func (s *Service) authorize(ctx context.Context, caller authz.Caller, id uuid.UUID, action authz.Action) (*WorkItem, authz.Target, authz.Decision, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, authz.Target{}, authz.Decision{}, perrors.NewErrNotFound(s.kind.Title()+" not found", err)
		}
		return nil, authz.Target{}, authz.Decision{}, perrors.NewErrInternalServerError("Failed to get "+string(s.kind), err)
	}

	target, err := s.resolver.Project(ctx, caller, s.kind.resource(), w.ProjectID, w.DeveloperID)
	if err != nil {
		return nil, authz.Target{}, authz.Decision{}, err
	}

	d, err := authz.Require(caller, target, action)
	if err != nil {
		return nil, target, d, err
	}

	return w, target, d, nil
}

func (s *Service) requireAssignable(ctx context.Context, developerID, teamID uuid.UUID) error {
	ok, err := s.resolver.IsMember(ctx, developerID, teamID)
	if err != nil {
		return err
	}
	if !ok {
		return perrors.NewErrForbidden(
			"Assignee is not a member of the project's team",
			fmt.Errorf("developer %s is not in team %s", developerID, teamID),
			map[string]any{"field": "developer_id"},
		)
	}
	return nil
}

// DecodeUpdate validates a manager's update against the allow-list
func DecodeUpdate(set fields.Set) (*UpdateRequest, error) {
	req := &UpdateRequest{}

	err := set.Each(func(key string, v any) error {
		switch key {
		case "name":
			name, err := fields.RequiredString(key, v)
			if err != nil {
				return err
			}
			req.Name = &name
		case "description":
			s, err := fields.String(key, v)
			if err != nil {
				return err
			}
			req.Description = &s
		case "expected_completion_date":
			t, err := fields.Time(key, v)
			if err != nil {
				return err
			}
			req.ExpectedCompletionDate = &t
		case "priority":
			s, err := fields.String(key, v)
			if err != nil {
				return err
			}
			p := Priority(s)
			if err := fields.OneOf(key, p, PriorityHigh, PriorityMedium, PriorityLow); err != nil {
				return err
			}
			req.Priority = &p
		case "status":
			s, err := fields.String(key, v)
			if err != nil {
				return err
			}
			status := Status(s)
			if err := fields.OneOf(key, status, statuses...); err != nil {
				return err
			}
			req.Status = &status
		case "developer_id":
			id, err := fields.UUID(key, v)
			if err != nil {
				return err
			}
			req.DeveloperID = &id
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
