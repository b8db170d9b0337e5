package client

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

var ErrClientNotFound = errors.New("client not found")

const clientColumns = `id, team_id, name, type, description, source, created_at, updated_at`

// ClientRepo handles database operations for clients
type ClientRepo struct {
	db *sqlx.DB
}

func NewClientRepo(conn *db.DB) *ClientRepo {
	return &ClientRepo{db: conn.DB}
}

func (r *ClientRepo) Create(ctx context.Context, c *Client) (*Client, error) {
	query := `
        INSERT INTO clients (team_id, name, type, description, source)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + clientColumns

	var created Client
	err := r.db.GetContext(ctx, &created, query, c.TeamID, c.Name, c.Type, c.Description, c.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &created, nil
}

func (r *ClientRepo) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	var c Client
	err := r.db.GetContext(ctx, &c, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return &c, nil
}

// ListByTeams returns the clients of the given teams, newest first
func (r *ClientRepo) ListByTeams(ctx context.Context, teamIDs []uuid.UUID) ([]*Client, error) {
	clients := []*Client{}
	if len(teamIDs) == 0 {
		return clients, nil
	}

	query, args, err := sqlx.In(`SELECT `+clientColumns+` FROM clients WHERE team_id IN (?) ORDER BY created_at DESC`, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build client query: %w", err)
	}

	if err := r.db.SelectContext(ctx, &clients, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	return clients, nil
}

func (r *ClientRepo) Update(ctx context.Context, id uuid.UUID, req *UpdateClientRequest) (*Client, error) {
	setParts := []string{}
	args := []interface{}{}

	if req.Name != nil {
		args = append(args, *req.Name)
		setParts = append(setParts, fmt.Sprintf("name = $%d", len(args)))
	}
	if req.Type != nil {
		args = append(args, *req.Type)
		setParts = append(setParts, fmt.Sprintf("type = $%d", len(args)))
	}
	if req.Description != nil {
		args = append(args, *req.Description)
		setParts = append(setParts, fmt.Sprintf("description = $%d", len(args)))
	}
	if req.Source != nil {
		args = append(args, *req.Source)
		setParts = append(setParts, fmt.Sprintf("source = $%d", len(args)))
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
        UPDATE clients
        SET %s
        WHERE id = $%d
        RETURNING %s
    `, strings.Join(setParts, ", "), len(args), clientColumns)

	var c Client
	err := r.db.GetContext(ctx, &c, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	return &c, nil
}

func (r *ClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrClientNotFound
	}

	return nil
}
