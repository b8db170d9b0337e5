// Package memstore keeps every repository in process memory. It mirrors the
// postgres schema's unique keys and cascades and backs the service and API
// tests.
package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/curaious/devboard/internal/services/client"
	"github.com/curaious/devboard/internal/services/project"
	"github.com/curaious/devboard/internal/services/team"
	"github.com/curaious/devboard/internal/services/user"
	"github.com/curaious/devboard/internal/services/workitem"
	"github.com/google/uuid"
)

type state struct {
	mu    sync.RWMutex
	clock time.Time

	users       map[uuid.UUID]*user.User
	teams       map[uuid.UUID]*team.Team
	memberships map[uuid.UUID]*team.DeveloperTeam
	invitations map[uuid.UUID]*team.Invitation
	projects    map[uuid.UUID]*project.Project
	workItems   map[workitem.Kind]map[uuid.UUID]*workitem.WorkItem
	clients     map[uuid.UUID]*client.Client
}

// Store groups the repositories. They share one lock.
type Store struct {
	Users       *Users
	Teams       *Teams
	Members     *Memberships
	Invitations *Invitations
	Projects    *Projects
	Tasks       *WorkItems
	Bugs        *WorkItems
	Clients     *Clients

	s *state
}

func New() *Store {
	s := &state{
		clock:       time.Now().UTC(),
		users:       map[uuid.UUID]*user.User{},
		teams:       map[uuid.UUID]*team.Team{},
		memberships: map[uuid.UUID]*team.DeveloperTeam{},
		invitations: map[uuid.UUID]*team.Invitation{},
		projects:    map[uuid.UUID]*project.Project{},
		workItems: map[workitem.Kind]map[uuid.UUID]*workitem.WorkItem{
			workitem.KindTask: {},
			workitem.KindBug:  {},
		},
		clients: map[uuid.UUID]*client.Client{},
	}

	return &Store{
		Users:       &Users{s},
		Teams:       &Teams{s},
		Members:     &Memberships{s},
		Invitations: &Invitations{s},
		Projects:    &Projects{s},
		Tasks:       &WorkItems{s, workitem.KindTask},
		Bugs:        &WorkItems{s, workitem.KindBug},
		Clients:     &Clients{s},
		s:           s,
	}
}

// WorkItems returns the repository for kind.
func (st *Store) WorkItems(kind workitem.Kind) *WorkItems {
	if kind == workitem.KindBug {
		return st.Bugs
	}
	return st.Tasks
}

// tick returns a strictly increasing timestamp so newest-first ordering is
// deterministic. Callers hold the write lock.
func (s *state) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func (s *state) deleteTeam(id uuid.UUID) {
	delete(s.teams, id)
	for mid, m := range s.memberships {
		if m.TeamID == id {
			delete(s.memberships, mid)
		}
	}
	for iid, inv := range s.invitations {
		if inv.TeamID == id {
			delete(s.invitations, iid)
		}
	}
	for pid, p := range s.projects {
		if p.TeamID == id {
			s.deleteProject(pid)
		}
	}
	for cid, c := range s.clients {
		if c.TeamID == id {
			delete(s.clients, cid)
		}
	}
}

func (s *state) deleteProject(id uuid.UUID) {
	delete(s.projects, id)
	for _, items := range s.workItems {
		for wid, w := range items {
			if w.ProjectID == id {
				delete(items, wid)
			}
		}
	}
}

// newestFirst sorts copies of the values of m by created time, descending.
func newestFirst[T any](m map[uuid.UUID]*T, keep func(*T) bool, created func(*T) time.Time) []*T {
	out := []*T{}
	for _, v := range m {
		if keep(v) {
			c := *v
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return created(out[i]).After(created(out[j]))
	})
	return out
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
