package client

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeLocal     Type = "Local"
	TypeFreelance Type = "Freelance"
)

// Client is a customer record kept by a team
type Client struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TeamID      uuid.UUID `json:"team" db:"team_id"`
	Name        string    `json:"name" db:"name"`
	Type        Type      `json:"type" db:"type"`
	Description string    `json:"description" db:"description"`
	Source      string    `json:"source" db:"source"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type CreateClientRequest struct {
	TeamID      uuid.UUID `json:"team"`
	Name        string    `json:"name"`
	Type        Type      `json:"type"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
}

type UpdateClientRequest struct {
	Name        *string
	Type        *Type
	Description *string
	Source      *string
}

type ListFilter struct {
	TeamID *uuid.UUID
}
