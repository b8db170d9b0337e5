package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/curaious/devboard/internal/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrProjectNotFound = errors.New("project not found")

const projectColumns = `id, team_id, name, client, tech_stack, links, estimated_time, description, status, created_by, created_at, updated_at`

// ProjectRepo handles database operations for projects
type ProjectRepo struct {
	db *sqlx.DB
}

// NewProjectRepo creates a new project repository
func NewProjectRepo(conn *db.DB) *ProjectRepo {
	return &ProjectRepo{db: conn.DB}
}

// Create creates a new project
func (r *ProjectRepo) Create(ctx context.Context, p *Project) (*Project, error) {
	query := `
        INSERT INTO projects (team_id, name, client, tech_stack, links, estimated_time, description, status, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + projectColumns

	var project Project
	err := r.db.GetContext(ctx, &project, query,
		p.TeamID, p.Name, p.Client, stringArray(p.TechStack), stringArray(p.Links),
		p.EstimatedTime, p.Description, p.Status, p.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return &project, nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	var project Project
	err := r.db.GetContext(ctx, &project, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}

// TeamOf returns the team a project belongs to
func (r *ProjectRepo) TeamOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var teamID uuid.UUID
	err := r.db.GetContext(ctx, &teamID, `SELECT team_id FROM projects WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrProjectNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to get project team: %w", err)
	}

	return teamID, nil
}

// ListByTeams retrieves the projects of the given teams, newest first
func (r *ProjectRepo) ListByTeams(ctx context.Context, teamIDs []uuid.UUID) ([]*Project, error) {
	projects := []*Project{}
	if len(teamIDs) == 0 {
		return projects, nil
	}

	query, args, err := sqlx.In(`SELECT `+projectColumns+` FROM projects WHERE team_id IN (?) ORDER BY created_at DESC`, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build project query: %w", err)
	}

	if err := r.db.SelectContext(ctx, &projects, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

// Update updates project fields
func (r *ProjectRepo) Update(ctx context.Context, id uuid.UUID, req *UpdateProjectRequest) (*Project, error) {
	setParts := []string{}
	args := []interface{}{}

	set := func(column string, v interface{}) {
		args = append(args, v)
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Client != nil {
		set("client", *req.Client)
	}
	if req.TechStack != nil {
		set("tech_stack", pq.StringArray(req.TechStack))
	}
	if req.Links != nil {
		set("links", pq.StringArray(req.Links))
	}
	if req.EstimatedTime != nil {
		set("estimated_time", *req.EstimatedTime)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.Status != nil {
		set("status", *req.Status)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
        UPDATE projects
        SET %s
        WHERE id = $%d
        RETURNING %s
    `, strings.Join(setParts, ", "), len(args), projectColumns)

	var project Project
	err := r.db.GetContext(ctx, &project, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return &project, nil
}

// Delete removes a project by ID. Its tasks and bugs cascade.
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// stringArray stores nil slices as empty arrays so the NOT NULL columns hold.
func stringArray(v []string) pq.StringArray {
	if v == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(v)
}
