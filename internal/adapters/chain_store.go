package adapters

import (
	"context"
	"errors"

	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/services/project"
	"github.com/curaious/devboard/internal/services/team"
	"github.com/google/uuid"
)

// TeamLookup is the part of the team store the ownership chain reads.
type TeamLookup interface {
	ManagerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	ListByManager(ctx context.Context, managerID uuid.UUID) ([]*team.Team, error)
	ListByDeveloper(ctx context.Context, developerID uuid.UUID) ([]*team.Team, error)
}

type ProjectLookup interface {
	TeamOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type MembershipLookup interface {
	Exists(ctx context.Context, developerID, teamID uuid.UUID) (bool, error)
}

// ChainStore implements authz.ChainStore on top of the team, project and
// membership stores, translating their not-found errors.
type ChainStore struct {
	teams    TeamLookup
	projects ProjectLookup
	members  MembershipLookup
}

func NewChainStore(teams TeamLookup, projects ProjectLookup, members MembershipLookup) *ChainStore {
	return &ChainStore{teams: teams, projects: projects, members: members}
}

func (s *ChainStore) TeamManager(ctx context.Context, teamID uuid.UUID) (uuid.UUID, error) {
	managerID, err := s.teams.ManagerOf(ctx, teamID)
	if errors.Is(err, team.ErrTeamNotFound) {
		return uuid.Nil, authz.ErrTeamNotFound
	}
	return managerID, err
}

func (s *ChainStore) ProjectTeam(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	teamID, err := s.projects.TeamOf(ctx, projectID)
	if errors.Is(err, project.ErrProjectNotFound) {
		return uuid.Nil, authz.ErrProjectNotFound
	}
	return teamID, err
}

func (s *ChainStore) IsMember(ctx context.Context, developerID, teamID uuid.UUID) (bool, error) {
	return s.members.Exists(ctx, developerID, teamID)
}

func (s *ChainStore) ManagedTeams(ctx context.Context, managerID uuid.UUID) ([]uuid.UUID, error) {
	teams, err := s.teams.ListByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	return teamIDs(teams), nil
}

func (s *ChainStore) MemberTeams(ctx context.Context, developerID uuid.UUID) ([]uuid.UUID, error) {
	teams, err := s.teams.ListByDeveloper(ctx, developerID)
	if err != nil {
		return nil, err
	}
	return teamIDs(teams), nil
}

func teamIDs(teams []*team.Team) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids
}
