package workitem

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

var ErrNotFound = errors.New("work item not found")

const columns = `id, project_id, developer_id, name, description, expected_completion_date, priority, status, created_by, created_at, updated_at`

// Repo handles database operations for one work item table
type Repo struct {
	db    *sqlx.DB
	table string
}

func NewRepo(conn *db.DB, kind Kind) *Repo {
	return &Repo{db: conn.DB, table: kind.table()}
}

func (r *Repo) Create(ctx context.Context, w *WorkItem) (*WorkItem, error) {
	query := fmt.Sprintf(`
        INSERT INTO %s (project_id, developer_id, name, description, expected_completion_date, priority, status, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING %s
    `, r.table, columns)

	var created WorkItem
	err := r.db.GetContext(ctx, &created, query,
		w.ProjectID, w.DeveloperID, w.Name, w.Description, w.ExpectedCompletionDate, w.Priority, w.Status, w.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", r.table, err)
	}

	return &created, nil
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*WorkItem, error) {
	var w WorkItem
	err := r.db.GetContext(ctx, &w, fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, columns, r.table), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", r.table, err)
	}

	return &w, nil
}

// List returns the rows matching q, newest first
func (r *Repo) List(ctx context.Context, q Query) ([]*WorkItem, error) {
	items := []*WorkItem{}
	if q.TeamIDs != nil && len(q.TeamIDs) == 0 {
		return items, nil
	}

	where := []string{}
	args := []interface{}{}

	if q.TeamIDs != nil {
		where = append(where, `project_id IN (SELECT id FROM projects WHERE team_id IN (?))`)
		args = append(args, q.TeamIDs)
	}
	if q.ProjectID != nil {
		where = append(where, `project_id = ?`)
		args = append(args, *q.ProjectID)
	}
	if q.DeveloperID != nil {
		where = append(where, `developer_id = ?`)
		args = append(args, *q.DeveloperID)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, columns, r.table)
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", r.table, err)
	}

	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.table, err)
	}

	return items, nil
}

func (r *Repo) Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*WorkItem, error) {
	setParts := []string{}
	args := []interface{}{}

	set := func(column string, v interface{}) {
		args = append(args, v)
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.ExpectedCompletionDate != nil {
		set("expected_completion_date", *req.ExpectedCompletionDate)
	}
	if req.Priority != nil {
		set("priority", *req.Priority)
	}
	if req.Status != nil {
		set("status", *req.Status)
	}
	if req.DeveloperID != nil {
		set("developer_id", *req.DeveloperID)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
        UPDATE %s
        SET %s
        WHERE id = $%d
        RETURNING %s
    `, r.table, strings.Join(setParts, ", "), len(args), columns)

	var w WorkItem
	err := r.db.GetContext(ctx, &w, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update %s: %w", r.table, err)
	}

	return &w, nil
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
