package team

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

type TeamRepository interface {
	Create(ctx context.Context, t *Team) (*Team, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)
	GetByManagerAndName(ctx context.Context, managerID uuid.UUID, name string) (*Team, error)
	ListByManager(ctx context.Context, managerID uuid.UUID) ([]*Team, error)
	ListByDeveloper(ctx context.Context, developerID uuid.UUID) ([]*Team, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateTeamRequest) (*Team, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MembershipRepository interface {
	Exists(ctx context.Context, developerID, teamID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, teamID uuid.UUID) ([]*Member, error)
	Remove(ctx context.Context, developerID, teamID uuid.UUID) error
}

type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) (*Invitation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Invitation, error)
	PendingExists(ctx context.Context, teamID uuid.UUID, email string) (bool, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*Invitation, error)
	ListPendingByEmail(ctx context.Context, email string) ([]*Invitation, error)
	Accept(ctx context.Context, id uuid.UUID, m *DeveloperTeam, at time.Time) (*DeveloperTeam, error)
	Reject(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Account is the slice of a user record the team engine needs.
type Account struct {
	ID       uuid.UUID
	Username string
	Email    string
	Role     authz.Role
}

// UserDirectory resolves users for invitations and member listings. Unknown
// users are reported with ErrAccountNotFound.
type UserDirectory interface {
	AccountByEmail(ctx context.Context, email string) (*Account, error)
	AccountByID(ctx context.Context, id uuid.UUID) (*Account, error)
}

var ErrAccountNotFound = errors.New("account not found")

// TeamService contains business logic for teams, invitations and membership
type TeamService struct {
	teams       TeamRepository
	members     MembershipRepository
	invitations InvitationRepository
	users       UserDirectory
	resolver    *authz.Resolver
	now         func() time.Time
}

func NewTeamService(teams TeamRepository, members MembershipRepository, invitations InvitationRepository, users UserDirectory, resolver *authz.Resolver) *TeamService {
	return &TeamService{
		teams:       teams,
		members:     members,
		invitations: invitations,
		users:       users,
		resolver:    resolver,
		now:         time.Now,
	}
}

// Create registers a new team for a manager. Names are unique per manager.
func (s *TeamService) Create(ctx context.Context, caller authz.Caller, req *CreateTeamRequest) (*Team, error) {
	if !caller.Role.Capabilities().Has(authz.CanManageTeam) {
		return nil, perrors.NewErrForbidden("Only managers can create teams", errors.New("caller is not a manager"))
	}

	name, err := fields.RequiredString("name", req.Name)
	if err != nil {
		return nil, err
	}

	if _, err := s.teams.GetByManagerAndName(ctx, caller.ID, name); err == nil {
		return nil, perrors.NewErrConflict("You already have a team with this name", fmt.Errorf("%w: %s", ErrTeamAlreadyExists, name))
	} else if !errors.Is(err, ErrTeamNotFound) {
		return nil, perrors.NewErrInternalServerError("Failed to validate team name", err)
	}

	created, err := s.teams.Create(ctx, &Team{
		ManagerID:   caller.ID,
		Name:        name,
		Designation: req.Designation,
		Purpose:     req.Purpose,
		Status:      StatusActive,
	})
	if err != nil {
		if errors.Is(err, ErrTeamAlreadyExists) {
			return nil, perrors.NewErrConflict("You already have a team with this name", err)
		}
		return nil, perrors.NewErrInternalServerError("Failed to create team", err)
	}

	return created, nil
}

// List returns the teams a manager owns or a developer belongs to
func (s *TeamService) List(ctx context.Context, caller authz.Caller) ([]*Team, error) {
	var (
		teams []*Team
		err   error
	)

	switch caps := caller.Role.Capabilities(); {
	case caps.Has(authz.CanManageTeam):
		teams, err = s.teams.ListByManager(ctx, caller.ID)
	case caps.Has(authz.CanActAsAssignee):
		teams, err = s.teams.ListByDeveloper(ctx, caller.ID)
	default:
		return nil, perrors.NewErrForbidden("You are not allowed to list teams", fmt.Errorf("unknown role %q", caller.Role))
	}
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to list teams", err)
	}

	return teams, nil
}

// Get fetches a team the caller owns or belongs to
func (s *TeamService) Get(ctx context.Context, caller authz.Caller, id uuid.UUID) (*Team, error) {
	t, _, err := s.authorize(ctx, caller, id, authz.ActionRead)
	return t, err
}

// Update modifies allow-listed team fields
func (s *TeamService) Update(ctx context.Context, caller authz.Caller, id uuid.UUID, set fields.Set) (*Team, error) {
	existing, _, err := s.authorize(ctx, caller, id, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}

	req, err := DecodeUpdate(set)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != existing.Name {
		if _, err := s.teams.GetByManagerAndName(ctx, existing.ManagerID, *req.Name); err == nil {
			return nil, perrors.NewErrConflict("You already have a team with this name", fmt.Errorf("%w: %s", ErrTeamAlreadyExists, *req.Name))
		} else if !errors.Is(err, ErrTeamNotFound) {
			return nil, perrors.NewErrInternalServerError("Failed to validate team name", err)
		}
	}

	updated, err := s.teams.Update(ctx, id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrTeamNotFound):
			return nil, perrors.NewErrNotFound("Team not found", err)
		case errors.Is(err, ErrTeamAlreadyExists):
			return nil, perrors.NewErrConflict("You already have a team with this name", err)
		}
		return nil, perrors.NewErrInternalServerError("Failed to update team", err)
	}

	return updated, nil
}

// Delete removes a team together with its projects, work items, clients,
// invitations and memberships
func (s *TeamService) Delete(ctx context.Context, caller authz.Caller, id uuid.UUID) error {
	if _, _, err := s.authorize(ctx, caller, id, authz.ActionDelete); err != nil {
		return err
	}

	if err := s.teams.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			return perrors.NewErrNotFound("Team not found", err)
		}
		return perrors.NewErrInternalServerError("Failed to delete team", err)
	}

	return nil
}

// ListMembers returns everyone on the team. The owning manager sees itself
// first with role Manager; a developer member sees developers only.
func (s *TeamService) ListMembers(ctx context.Context, caller authz.Caller, id uuid.UUID) ([]*Member, error) {
	t, d, err := s.authorize(ctx, caller, id, authz.ActionRead)
	if err != nil {
		return nil, err
	}

	devs, err := s.members.ListMembers(ctx, id)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to list members", err)
	}

	if d.Limited {
		return devs, nil
	}

	manager, err := s.users.AccountByID(ctx, t.ManagerID)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to get team manager", err)
	}

	members := make([]*Member, 0, len(devs)+1)
	members = append(members, &Member{
		UserID:   manager.ID,
		Username: manager.Username,
		Email:    manager.Email,
		Role:     MemberRoleManager,
		JoinedAt: t.CreatedAt,
	})

	return append(members, devs...), nil
}

// ListDevelopers returns the developer members of a team
func (s *TeamService) ListDevelopers(ctx context.Context, caller authz.Caller, id uuid.UUID) ([]*Member, error) {
	if _, _, err := s.authorize(ctx, caller, id, authz.ActionRead); err != nil {
		return nil, err
	}

	devs, err := s.members.ListMembers(ctx, id)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to list developers", err)
	}

	return devs, nil
}

// RemoveMember removes a developer from a team the caller owns
func (s *TeamService) RemoveMember(ctx context.Context, caller authz.Caller, teamID, developerID uuid.UUID) error {
	if _, _, err := s.authorize(ctx, caller, teamID, authz.ActionUpdate); err != nil {
		return err
	}

	if err := s.members.Remove(ctx, developerID, teamID); err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return perrors.NewErrNotFound("Developer is not a member of this team", err)
		}
		return perrors.NewErrInternalServerError("Failed to remove member", err)
	}

	return nil
}

// authorize loads a team and checks action against it.
func (s *TeamService) authorize(ctx context.Context, caller authz.Caller, id uuid.UUID, action authz.Action) (*Team, authz.Decision, error) {
	t, err := s.teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			return nil, authz.Decision{}, perrors.NewErrNotFound("Team not found", err)
		}
		return nil, authz.Decision{}, perrors.NewErrInternalServerError("Failed to get team", err)
	}

	target, err := s.resolver.Team(ctx, caller, authz.KindTeam, id)
	if err != nil {
		return nil, authz.Decision{}, err
	}

	d, err := authz.Require(caller, target, action)
	if err != nil {
		return nil, d, err
	}

	return t, d, nil
}

// DecodeUpdate validates a team update against the allow-list
func DecodeUpdate(set fields.Set) (*UpdateTeamRequest, error) {
	req := &UpdateTeamRequest{}

	err := set.Each(func(key string, v any) error {
		switch key {
		case "name":
			name, err := fields.RequiredString(key, v)
			if err != nil {
				return err
			}
			req.Name = &name
		case "designation":
			s, err := fields.String(key, v)
			if err != nil {
				return err
			}
			req.Designation = &s
		case "purpose":
			s, err := fields.String(key, v)
			if err != nil {
				return err
			}
			req.Purpose = &s
		case "status":
			s, err := fields.String(key, v)
			if err != nil {
				return err
			}
			status := Status(s)
			if err := fields.OneOf(key, status, StatusActive, StatusInactive); err != nil {
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
