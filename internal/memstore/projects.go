package memstore

import (
	"context"
	"time"

	"github.com/curaious/devboard/internal/services/project"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Projects struct{ s *state }

func (r *Projects) Create(_ context.Context, p *project.Project) (*project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *p
	c.ID = uuid.New()
	if c.TechStack == nil {
		c.TechStack = pq.StringArray{}
	}
	if c.Links == nil {
		c.Links = pq.StringArray{}
	}
	c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	r.s.projects[c.ID] = &c

	out := c
	return &out, nil
}

func (r *Projects) GetByID(_ context.Context, id uuid.UUID) (*project.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	c := *p
	return &c, nil
}

func (r *Projects) TeamOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	return p.TeamID, nil
}

func (r *Projects) ListByTeams(_ context.Context, teamIDs []uuid.UUID) ([]*project.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return newestFirst(r.s.projects, func(p *project.Project) bool { return contains(teamIDs, p.TeamID) }, projectCreated), nil
}

func (r *Projects) Update(_ context.Context, id uuid.UUID, req *project.UpdateProjectRequest) (*project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, project.ErrProjectNotFound
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Client != nil {
		p.Client = *req.Client
	}
	if req.TechStack != nil {
		p.TechStack = req.TechStack
	}
	if req.Links != nil {
		p.Links = req.Links
	}
	if req.EstimatedTime != nil {
		p.EstimatedTime = *req.EstimatedTime
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	p.UpdatedAt = r.s.tick()

	c := *p
	return &c, nil
}

func (r *Projects) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[id]; !ok {
		return project.ErrProjectNotFound
	}
	r.s.deleteProject(id)
	return nil
}

func projectCreated(p *project.Project) time.Time { return p.CreatedAt }
