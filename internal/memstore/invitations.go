package memstore

import (
	"context"
	"time"

	"github.com/curaious/devboard/internal/services/team"
	"github.com/google/uuid"
)

type Invitations struct{ s *state }

func (r *Invitations) Create(_ context.Context, inv *team.Invitation) (*team.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.pendingInvitation(inv.TeamID, inv.InvitedEmail) {
		return nil, team.ErrPendingInvitation
	}

	c := *inv
	c.ID = uuid.New()
	c.Status = team.InvitationPending
	c.CreatedAt = r.s.tick()
	r.s.invitations[c.ID] = &c

	out := c
	return &out, nil
}

func (r *Invitations) GetByID(_ context.Context, id uuid.UUID) (*team.Invitation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	inv, ok := r.s.invitations[id]
	if !ok {
		return nil, team.ErrInvitationNotFound
	}
	c := *inv
	return &c, nil
}

func (r *Invitations) PendingExists(_ context.Context, teamID uuid.UUID, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.pendingInvitation(teamID, email), nil
}

func (r *Invitations) ListByTeam(_ context.Context, teamID uuid.UUID) ([]*team.Invitation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return newestFirst(r.s.invitations, func(inv *team.Invitation) bool { return inv.TeamID == teamID }, invitationCreated), nil
}

func (r *Invitations) ListPendingByEmail(_ context.Context, email string) ([]*team.Invitation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return newestFirst(r.s.invitations, func(inv *team.Invitation) bool {
		return inv.InvitedEmail == email && inv.Status == team.InvitationPending
	}, invitationCreated), nil
}

// Accept closes the invitation and adds the membership under one lock. When
// the membership cannot be added the invitation stays pending.
func (r *Invitations) Accept(_ context.Context, id uuid.UUID, m *team.DeveloperTeam, at time.Time) (*team.DeveloperTeam, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.invitations[id]
	if !ok || inv.Status != team.InvitationPending {
		return nil, team.ErrInvitationNotPending
	}

	link := *m
	link.InvitationID = &id
	created, err := r.s.addMembership(&link, at)
	if err != nil {
		return nil, err
	}

	inv.Status = team.InvitationAccepted
	inv.ResponseDate = &at
	return created, nil
}

func (r *Invitations) Reject(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.invitations[id]
	if !ok || inv.Status != team.InvitationPending {
		return team.ErrInvitationNotPending
	}
	inv.Status = team.InvitationRejected
	inv.ResponseDate = &at
	return nil
}

func (s *state) pendingInvitation(teamID uuid.UUID, email string) bool {
	for _, inv := range s.invitations {
		if inv.TeamID == teamID && inv.InvitedEmail == email && inv.Status == team.InvitationPending {
			return true
		}
	}
	return false
}

func invitationCreated(inv *team.Invitation) time.Time { return inv.CreatedAt }
