package team

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/perrors"
	"github.com/curaious/devboard/internal/services/fields"
	"github.com/google/uuid"
)

// Invite creates a pending invitation for a registered developer.
func (s *TeamService) Invite(ctx context.Context, caller authz.Caller, teamID uuid.UUID, email string) (*Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fields.Invalid("email", "is required")
	}

	if _, _, err := s.authorize(ctx, caller, teamID, authz.ActionUpdate); err != nil {
		return nil, err
	}

	invitee, err := s.users.AccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, perrors.NewErrNotFound("No user is registered with this email", err)
		}
		return nil, perrors.NewErrInternalServerError("Failed to get user", err)
	}

	if invitee.Role != authz.RoleDeveloper {
		return nil, perrors.NewErrForbidden("Only developers can be invited to a team", fmt.Errorf("invitee role is %s", invitee.Role))
	}

	member, err := s.members.Exists(ctx, invitee.ID, teamID)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to check team membership", err)
	}
	if member {
		return nil, perrors.NewErrConflict("Developer is already a member of this team", ErrAlreadyMember)
	}

	pending, err := s.invitations.PendingExists(ctx, teamID, email)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to check invitations", err)
	}
	if pending {
		return nil, perrors.NewErrConflict("An invitation is already pending for this email", ErrPendingInvitation)
	}

	inv, err := s.invitations.Create(ctx, &Invitation{
		TeamID:       teamID,
		InvitedBy:    caller.ID,
		InvitedEmail: email,
	})
	if err != nil {
		if errors.Is(err, ErrPendingInvitation) {
			return nil, perrors.NewErrConflict("An invitation is already pending for this email", err)
		}
		return nil, perrors.NewErrInternalServerError("Failed to create invitation", err)
	}

	return inv, nil
}

// ListTeamInvitations returns every invitation sent for a team, newest first
func (s *TeamService) ListTeamInvitations(ctx context.Context, caller authz.Caller, teamID uuid.UUID) ([]*Invitation, error) {
	if _, _, err := s.authorize(ctx, caller, teamID, authz.ActionUpdate); err != nil {
		return nil, err
	}

	invitations, err := s.invitations.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to list invitations", err)
	}

	return invitations, nil
}

// ListMyInvitations returns the pending invitations addressed to the caller
func (s *TeamService) ListMyInvitations(ctx context.Context, caller authz.Caller) ([]*Invitation, error) {
	invitations, err := s.invitations.ListPendingByEmail(ctx, strings.ToLower(caller.Email))
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to list invitations", err)
	}

	return invitations, nil
}

// Respond accepts or rejects an invitation. Only the invited user may
// respond, and only once. Accepting creates the membership in the same
// transaction that closes the invitation.
func (s *TeamService) Respond(ctx context.Context, caller authz.Caller, invitationID uuid.UUID, accept bool) (*Invitation, *DeveloperTeam, error) {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, ErrInvitationNotFound) {
			return nil, nil, perrors.NewErrNotFound("Invitation not found", err)
		}
		return nil, nil, perrors.NewErrInternalServerError("Failed to get invitation", err)
	}

	if !strings.EqualFold(inv.InvitedEmail, caller.Email) {
		return nil, nil, perrors.NewErrForbidden("This invitation was not sent to you", errors.New("invited email does not match caller"))
	}

	if inv.Status != InvitationPending {
		return nil, nil, notPending(inv.Status)
	}

	at := s.now().UTC()

	if !accept {
		if err := s.invitations.Reject(ctx, inv.ID, at); err != nil {
			return nil, nil, s.respondError(ctx, inv.ID, err)
		}
		inv.Status = InvitationRejected
		inv.ResponseDate = &at
		return inv, nil, nil
	}

	membership, err := s.invitations.Accept(ctx, inv.ID, &DeveloperTeam{
		DeveloperID: caller.ID,
		TeamID:      inv.TeamID,
		Role:        MemberRoleDeveloper,
	}, at)
	if err != nil {
		return nil, nil, s.respondError(ctx, inv.ID, err)
	}

	inv.Status = InvitationAccepted
	inv.ResponseDate = &at
	return inv, membership, nil
}

// respondError maps a failed accept or reject. A lost race re-reads the
// invitation so the message names the status the winner set.
func (s *TeamService) respondError(ctx context.Context, id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, ErrInvitationNotPending):
		current, getErr := s.invitations.GetByID(ctx, id)
		if getErr != nil {
			return perrors.NewErrInvalidState("Invitation has already been answered", err)
		}
		return notPending(current.Status)
	case errors.Is(err, ErrAlreadyMember):
		return perrors.NewErrConflict("You are already a member of this team", err)
	}
	return perrors.NewErrInternalServerError("Failed to respond to invitation", err)
}

func notPending(status InvitationStatus) error {
	return perrors.NewErrInvalidState(
		fmt.Sprintf("Invitation has already been %s", strings.ToLower(string(status))),
		fmt.Errorf("%w: %s", ErrInvitationNotPending, status),
		map[string]any{"status": status},
	)
}
