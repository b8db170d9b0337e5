package memstore

import (
	"context"
	"time"

	"github.com/curaious/devboard/internal/services/team"
	"github.com/google/uuid"
)

type Teams struct{ s *state }

func (r *Teams) Create(_ context.Context, t *team.Team) (*team.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.teams {
		if existing.ManagerID == t.ManagerID && existing.Name == t.Name {
			return nil, team.ErrTeamAlreadyExists
		}
	}

	c := *t
	c.ID = uuid.New()
	c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	r.s.teams[c.ID] = &c

	out := c
	return &out, nil
}

func (r *Teams) GetByID(_ context.Context, id uuid.UUID) (*team.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.teams[id]
	if !ok {
		return nil, team.ErrTeamNotFound
	}
	c := *t
	return &c, nil
}

func (r *Teams) GetByManagerAndName(_ context.Context, managerID uuid.UUID, name string) (*team.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, t := range r.s.teams {
		if t.ManagerID == managerID && t.Name == name {
			c := *t
			return &c, nil
		}
	}
	return nil, team.ErrTeamNotFound
}

func (r *Teams) ManagerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	return t.ManagerID, nil
}

func (r *Teams) ListByManager(_ context.Context, managerID uuid.UUID) ([]*team.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return newestFirst(r.s.teams, func(t *team.Team) bool { return t.ManagerID == managerID }, teamCreated), nil
}

func (r *Teams) ListByDeveloper(_ context.Context, developerID uuid.UUID) ([]*team.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	joined := map[uuid.UUID]bool{}
	for _, m := range r.s.memberships {
		if m.DeveloperID == developerID {
			joined[m.TeamID] = true
		}
	}
	return newestFirst(r.s.teams, func(t *team.Team) bool { return joined[t.ID] }, teamCreated), nil
}

func (r *Teams) Update(_ context.Context, id uuid.UUID, req *team.UpdateTeamRequest) (*team.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.teams[id]
	if !ok {
		return nil, team.ErrTeamNotFound
	}

	if req.Name != nil {
		for _, other := range r.s.teams {
			if other.ID != id && other.ManagerID == t.ManagerID && other.Name == *req.Name {
				return nil, team.ErrTeamAlreadyExists
			}
		}
		t.Name = *req.Name
	}
	if req.Designation != nil {
		t.Designation = *req.Designation
	}
	if req.Purpose != nil {
		t.Purpose = *req.Purpose
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	t.UpdatedAt = r.s.tick()

	c := *t
	return &c, nil
}

func (r *Teams) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.teams[id]; !ok {
		return team.ErrTeamNotFound
	}
	r.s.deleteTeam(id)
	return nil
}

func teamCreated(t *team.Team) time.Time { return t.CreatedAt }
