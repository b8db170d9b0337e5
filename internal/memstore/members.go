package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/curaious/devboard/internal/services/team"
	"github.com/google/uuid"
)

type Memberships struct{ s *state }

// Add inserts a membership row directly.
func (r *Memberships) Add(_ context.Context, m *team.DeveloperTeam) (*team.DeveloperTeam, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.s.addMembership(m, r.s.tick())
}

func (r *Memberships) Exists(_ context.Context, developerID, teamID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.findMembership(developerID, teamID) != nil, nil
}

func (r *Memberships) ListMembers(_ context.Context, teamID uuid.UUID) ([]*team.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	members := []*team.Member{}
	for _, m := range r.s.memberships {
		if m.TeamID != teamID {
			continue
		}
		u, ok := r.s.users[m.DeveloperID]
		if !ok {
			continue
		}
		members = append(members, &team.Member{
			UserID:   u.ID,
			Username: u.Username,
			Email:    u.Email,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})

	return members, nil
}

func (r *Memberships) Remove(_ context.Context, developerID, teamID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m := r.s.findMembership(developerID, teamID)
	if m == nil {
		return team.ErrMemberNotFound
	}
	delete(r.s.memberships, m.ID)
	return nil
}

func (r *Memberships) ManagesDeveloper(_ context.Context, managerID, developerID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, m := range r.s.memberships {
		if m.DeveloperID != developerID {
			continue
		}
		if t, ok := r.s.teams[m.TeamID]; ok && t.ManagerID == managerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *state) findMembership(developerID, teamID uuid.UUID) *team.DeveloperTeam {
	for _, m := range s.memberships {
		if m.DeveloperID == developerID && m.TeamID == teamID {
			return m
		}
	}
	return nil
}

func (s *state) addMembership(m *team.DeveloperTeam, at time.Time) (*team.DeveloperTeam, error) {
	if s.findMembership(m.DeveloperID, m.TeamID) != nil {
		return nil, team.ErrAlreadyMember
	}

	c := *m
	c.ID = uuid.New()
	c.JoinedAt = at
	s.memberships[c.ID] = &c

	out := c
	return &out, nil
}
