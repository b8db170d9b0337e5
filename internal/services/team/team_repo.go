package team

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/curaious/devboard/internal/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamAlreadyExists = errors.New("team already exists")
)

const teamColumns = `id, manager_id, name, designation, purpose, status, created_at, updated_at`

// TeamRepo handles database operations for teams
type TeamRepo struct {
	db *sqlx.DB
}

// NewTeamRepo creates a new team repository
func NewTeamRepo(conn *db.DB) *TeamRepo {
	return &TeamRepo{db: conn.DB}
}

// Create creates a new team
func (r *TeamRepo) Create(ctx context.Context, t *Team) (*Team, error) {
	query := `
        INSERT INTO teams (manager_id, name, designation, purpose, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + teamColumns

	var created Team
	err := r.db.GetContext(ctx, &created, query, t.ManagerID, t.Name, t.Designation, t.Purpose, t.Status)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, ErrTeamAlreadyExists
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return &created, nil
}

// GetByID retrieves a team by ID
func (r *TeamRepo) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	var t Team
	err := r.db.GetContext(ctx, &t, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &t, nil
}

// GetByManagerAndName retrieves a manager's team by its exact name
func (r *TeamRepo) GetByManagerAndName(ctx context.Context, managerID uuid.UUID, name string) (*Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE manager_id = $1 AND name = $2`

	var t Team
	err := r.db.GetContext(ctx, &t, query, managerID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &t, nil
}

// ListByManager returns the teams a manager owns, newest first
func (r *TeamRepo) ListByManager(ctx context.Context, managerID uuid.UUID) ([]*Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE manager_id = $1 ORDER BY created_at DESC`

	teams := []*Team{}
	if err := r.db.SelectContext(ctx, &teams, query, managerID); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	return teams, nil
}

// ListByDeveloper returns the teams a developer belongs to, newest first
func (r *TeamRepo) ListByDeveloper(ctx context.Context, developerID uuid.UUID) ([]*Team, error) {
	query := `
        SELECT ` + teamColumns + `
        FROM teams
        WHERE id IN (SELECT team_id FROM developer_teams WHERE developer_id = $1)
        ORDER BY created_at DESC
    `

	teams := []*Team{}
	if err := r.db.SelectContext(ctx, &teams, query, developerID); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	return teams, nil
}

// Update updates team fields
func (r *TeamRepo) Update(ctx context.Context, id uuid.UUID, req *UpdateTeamRequest) (*Team, error) {
	setParts := []string{}
	args := []interface{}{}

	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", len(args)+1))
		args = append(args, *req.Name)
	}

	if req.Designation != nil {
		setParts = append(setParts, fmt.Sprintf("designation = $%d", len(args)+1))
		args = append(args, *req.Designation)
	}

	if req.Purpose != nil {
		setParts = append(setParts, fmt.Sprintf("purpose = $%d", len(args)+1))
		args = append(args, *req.Purpose)
	}

	if req.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *req.Status)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
        UPDATE teams
        SET %s
        WHERE id = $%d
        RETURNING %s
    `, strings.Join(setParts, ", "), len(args), teamColumns)

	var t Team
	err := r.db.GetContext(ctx, &t, query, args...)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrTeamNotFound
		case db.IsDuplicateKey(err):
			return nil, ErrTeamAlreadyExists
		}
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	return &t, nil
}

// Delete removes a team and, through cascading keys, everything it owns
func (r *TeamRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTeamNotFound
	}

	return nil
}

// ManagerOf returns the manager that owns a team
func (r *TeamRepo) ManagerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var managerID uuid.UUID
	err := r.db.GetContext(ctx, &managerID, `SELECT manager_id FROM teams WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrTeamNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to get team manager: %w", err)
	}

	return managerID, nil
}
