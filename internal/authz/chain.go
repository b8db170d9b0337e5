package authz

import (
	"context"
	"errors"

	"github.com/curaious/devboard/internal/perrors"
	"github.com/google/uuid"
)

var (
	ErrTeamNotFound    = errors.New("team not found")
	ErrProjectNotFound = errors.New("project not found")
)

// ChainStore answers the lookups needed to walk an ownership chain. Missing
// links are reported with ErrTeamNotFound or ErrProjectNotFound.
type ChainStore interface {
	TeamManager(ctx context.Context, teamID uuid.UUID) (uuid.UUID, error)
	ProjectTeam(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error)
	IsMember(ctx context.Context, developerID, teamID uuid.UUID) (bool, error)
	ManagedTeams(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error)
	MemberTeams(ctx context.Context, developerID uuid.UUID) ([]uuid.UUID, error)
}

// Resolver builds Targets by reading the authoritative chain from the store
// on every call.
type Resolver struct {
	store ChainStore
}

func NewResolver(store ChainStore) *Resolver {
	return &Resolver{store: store}
}

// Team resolves a resource owned directly by a team (the team itself,
// projects, clients).
func (r *Resolver) Team(ctx context.Context, caller Caller, kind Kind, teamID uuid.UUID) (Target, error) {
	managerID, err := r.store.TeamManager(ctx, teamID)
	if err != nil {
		return Target{}, chainError(err)
	}

	t := Target{Kind: kind, TeamID: teamID, ManagerID: managerID}

	// Membership only matters on the developer path.
	if caller.Role.Capabilities().Has(CanActAsAssignee) {
		t.IsMember, err = r.store.IsMember(ctx, caller.ID, teamID)
		if err != nil {
			return Target{}, perrors.NewErrInternalServerError("Failed to check team membership", err)
		}
	}

	return t, nil
}

// Project resolves a project scoped resource (tasks, bugs) through its
// project. assigneeID is uuid.Nil when the resource does not exist yet.
func (r *Resolver) Project(ctx context.Context, caller Caller, kind Kind, projectID, assigneeID uuid.UUID) (Target, error) {
	teamID, err := r.store.ProjectTeam(ctx, projectID)
	if err != nil {
		return Target{}, chainError(err)
	}

	t, err := r.Team(ctx, caller, kind, teamID)
	if err != nil {
		return Target{}, err
	}
	t.AssigneeID = assigneeID

	return t, nil
}

// IsMember reports whether developerID belongs to teamID.
func (r *Resolver) IsMember(ctx context.Context, developerID, teamID uuid.UUID) (bool, error) {
	ok, err := r.store.IsMember(ctx, developerID, teamID)
	if err != nil {
		return false, perrors.NewErrInternalServerError("Failed to check team membership", err)
	}
	return ok, nil
}

// VisibleTeams lists the teams a caller may read from: owned teams for a
// manager, joined teams for a developer.
func (r *Resolver) VisibleTeams(ctx context.Context, caller Caller) ([]uuid.UUID, error) {
	var (
		ids []uuid.UUID
		err error
	)

	switch caps := caller.Role.Capabilities(); {
	case caps.Has(CanManageTeam):
		ids, err = r.store.ManagedTeams(ctx, caller.ID)
	case caps.Has(CanActAsAssignee):
		ids, err = r.store.MemberTeams(ctx, caller.ID)
	default:
		return nil, perrors.NewErrForbidden("You are not allowed to list resources", errors.New("caller has no capabilities"))
	}
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to list teams", err)
	}

	return ids, nil
}

// Require authorizes action and turns a denial into a forbidden error.
func Require(caller Caller, target Target, action Action) (Decision, error) {
	d := Authorize(caller, target, action)
	if !d.Allow {
		return d, perrors.NewErrForbidden("You are not allowed to "+action.String()+" this "+string(target.Kind), errors.New(d.Reason))
	}
	return d, nil
}

func chainError(err error) error {
	switch {
	case errors.Is(err, ErrTeamNotFound):
		return perrors.NewErrNotFound("Team not found", err)
	case errors.Is(err, ErrProjectNotFound):
		return perrors.NewErrNotFound("Project not found", err)
	default:
		return perrors.NewErrInternalServerError("Failed to resolve ownership chain", err)
	}
}
