package team

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/curaious/devboard/internal/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationNotPending = errors.New("invitation is no longer pending")
	ErrPendingInvitation    = errors.New("a pending invitation already exists")
	ErrAlreadyMember        = errors.New("developer is already a member of the team")
)

const invitationColumns = `id, team_id, invited_by, invited_email, status, created_at, response_date`

// InvitationRepo handles team_invitations and the membership rows created
// when they are accepted
type InvitationRepo struct {
	db *db.DB
}

func NewInvitationRepo(conn *db.DB) *InvitationRepo {
	return &InvitationRepo{db: conn}
}

func (r *InvitationRepo) Create(ctx context.Context, inv *Invitation) (*Invitation, error) {
	query := `
        INSERT INTO team_invitations (team_id, invited_by, invited_email, status)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + invitationColumns

	var created Invitation
	err := r.db.GetContext(ctx, &created, query, inv.TeamID, inv.InvitedBy, inv.InvitedEmail, InvitationPending)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, ErrPendingInvitation
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	return &created, nil
}

func (r *InvitationRepo) GetByID(ctx context.Context, id uuid.UUID) (*Invitation, error) {
	var inv Invitation
	err := r.db.GetContext(ctx, &inv, `SELECT `+invitationColumns+` FROM team_invitations WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return &inv, nil
}

// PendingExists reports whether (team, email) has an open invitation
func (r *InvitationRepo) PendingExists(ctx context.Context, teamID uuid.UUID, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
        SELECT EXISTS(SELECT 1 FROM team_invitations WHERE team_id = $1 AND invited_email = $2 AND status = $3)
    `, teamID, email, InvitationPending)
	if err != nil {
		return false, fmt.Errorf("failed to check invitations: %w", err)
	}

	return exists, nil
}

func (r *InvitationRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*Invitation, error) {
	invitations := []*Invitation{}
	err := r.db.SelectContext(ctx, &invitations, `
        SELECT `+invitationColumns+` FROM team_invitations WHERE team_id = $1 ORDER BY created_at DESC
    `, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	return invitations, nil
}

func (r *InvitationRepo) ListPendingByEmail(ctx context.Context, email string) ([]*Invitation, error) {
	invitations := []*Invitation{}
	err := r.db.SelectContext(ctx, &invitations, `
        SELECT `+invitationColumns+` FROM team_invitations WHERE invited_email = $1 AND status = $2 ORDER BY created_at DESC
    `, email, InvitationPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	return invitations, nil
}

// Accept marks the invitation accepted and creates the membership in one
// transaction.
func (r *InvitationRepo) Accept(ctx context.Context, id uuid.UUID, m *DeveloperTeam, at time.Time) (*DeveloperTeam, error) {
	var created DeveloperTeam

	err := r.db.TransactionContext(ctx, func(tx *sqlx.Tx) error {
		if err := respond(ctx, tx, id, InvitationAccepted, at); err != nil {
			return err
		}

		err := tx.GetContext(ctx, &created, `
            INSERT INTO developer_teams (developer_id, team_id, role, joined_at, invitation_id)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id, developer_id, team_id, role, joined_at, invitation_id
        `, m.DeveloperID, m.TeamID, m.Role, at, id)
		if err != nil {
			if db.IsDuplicateKey(err) {
				return ErrAlreadyMember
			}
			return fmt.Errorf("failed to create membership: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *InvitationRepo) Reject(ctx context.Context, id uuid.UUID, at time.Time) error {
	return respond(ctx, r.db.DB, id, InvitationRejected, at)
}

// respond moves a pending invitation to a terminal status. The status guard
// in the WHERE clause makes concurrent responses lose with
// ErrInvitationNotPending.
func respond(ctx context.Context, exec sqlx.ExecerContext, id uuid.UUID, status InvitationStatus, at time.Time) error {
	result, err := exec.ExecContext(ctx, `
        UPDATE team_invitations
        SET status = $1, response_date = $2
        WHERE id = $3 AND status = $4
    `, status, at, id, InvitationPending)
	if err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrInvitationNotPending
	}

	return nil
}
