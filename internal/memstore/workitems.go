package memstore

import (
	"context"
	"time"

	"github.com/curaious/devboard/internal/services/workitem"
	"github.com/google/uuid"
)

type WorkItems struct {
	s    *state
	kind workitem.Kind
}

func (r *WorkItems) items() map[uuid.UUID]*workitem.WorkItem {
	return r.s.workItems[r.kind]
}

func (r *WorkItems) Create(_ context.Context, w *workitem.WorkItem) (*workitem.WorkItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *w
	c.ID = uuid.New()
	c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	r.items()[c.ID] = &c

	out := c
	return &out, nil
}

func (r *WorkItems) GetByID(_ context.Context, id uuid.UUID) (*workitem.WorkItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	w, ok := r.items()[id]
	if !ok {
		return nil, workitem.ErrNotFound
	}
	c := *w
	return &c, nil
}

func (r *WorkItems) List(_ context.Context, q workitem.Query) ([]*workitem.WorkItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return newestFirst(r.items(), func(w *workitem.WorkItem) bool {
		if q.TeamIDs != nil {
			p, ok := r.s.projects[w.ProjectID]
			if !ok || !contains(q.TeamIDs, p.TeamID) {
				return false
			}
		}
		if q.ProjectID != nil && w.ProjectID != *q.ProjectID {
			return false
		}
		if q.DeveloperID != nil && w.DeveloperID != *q.DeveloperID {
			return false
		}
		return true
	}, workItemCreated), nil
}

func (r *WorkItems) Update(_ context.Context, id uuid.UUID, req *workitem.UpdateRequest) (*workitem.WorkItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	w, ok := r.items()[id]
	if !ok {
		return nil, workitem.ErrNotFound
	}

	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.Description != nil {
		w.Description = *req.Description
	}
	if req.ExpectedCompletionDate != nil {
		due := *req.ExpectedCompletionDate
		w.ExpectedCompletionDate = &due
	}
	if req.Priority != nil {
		w.Priority = *req.Priority
	}
	if req.Status != nil {
		w.Status = *req.Status
	}
	if req.DeveloperID != nil {
		w.DeveloperID = *req.DeveloperID
	}
	w.UpdatedAt = r.s.tick()

	c := *w
	return &c, nil
}

func (r *WorkItems) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.items()[id]; !ok {
		return workitem.ErrNotFound
	}
	delete(r.items(), id)
	return nil
}

func workItemCreated(w *workitem.WorkItem) time.Time { return w.CreatedAt }
