package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/curaious/devboard/internal/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrMemberNotFound = errors.New("membership not found")

// MembershipRepo handles the developer_teams join table
type MembershipRepo struct {
	db *sqlx.DB
}

func NewMembershipRepo(conn *db.DB) *MembershipRepo {
	return &MembershipRepo{db: conn.DB}
}

// Exists reports whether the developer belongs to the team
func (r *MembershipRepo) Exists(ctx context.Context, developerID, teamID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
        SELECT EXISTS(SELECT 1 FROM developer_teams WHERE developer_id = $1 AND team_id = $2)
    `, developerID, teamID)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}

	return exists, nil
}

// ListMembers returns the developers of a team, earliest joiner first
func (r *MembershipRepo) ListMembers(ctx context.Context, teamID uuid.UUID) ([]*Member, error) {
	query := `
        SELECT u.id AS user_id, u.username, u.email, dt.role, dt.joined_at
        FROM developer_teams dt
        JOIN users u ON u.id = dt.developer_id
        WHERE dt.team_id = $1
        ORDER BY dt.joined_at ASC
    `

	members := []*Member{}
	if err := r.db.SelectContext(ctx, &members, query, teamID); err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	return members, nil
}

// Remove deletes a membership row
func (r *MembershipRepo) Remove(ctx context.Context, developerID, teamID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM developer_teams WHERE developer_id = $1 AND team_id = $2`, developerID, teamID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrMemberNotFound
	}

	return nil
}

// ManagesDeveloper reports whether the developer belongs to any team the
// manager owns
func (r *MembershipRepo) ManagesDeveloper(ctx context.Context, managerID, developerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
        SELECT EXISTS(
            SELECT 1 FROM developer_teams dt
            JOIN teams t ON t.id = dt.team_id
            WHERE t.manager_id = $1 AND dt.developer_id = $2
        )
    `, managerID, developerID)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}

	return exists, nil
}
