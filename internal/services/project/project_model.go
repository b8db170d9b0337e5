package project

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Status string

const (
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
	StatusOnHold    Status = "On Hold"
)

// Project belongs to one team; the team's manager owns it
type Project struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	TeamID        uuid.UUID      `json:"team" db:"team_id"`
	Name          string         `json:"name" db:"name"`
	Client        string         `json:"client" db:"client"`
	TechStack     pq.StringArray `json:"tech_stack" db:"tech_stack"`
	Links         pq.StringArray `json:"links" db:"links"`
	EstimatedTime string         `json:"estimated_time" db:"estimated_time"`
	Description   string         `json:"description" db:"description"`
	Status        Status         `json:"status" db:"status"`
	CreatedBy     uuid.UUID      `json:"created_by" db:"created_by"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// CreateProjectRequest captures payload for creating a project
type CreateProjectRequest struct {
	TeamID        uuid.UUID `json:"team"`
	Name          string    `json:"name"`
	Client        string    `json:"client"`
	TechStack     []string  `json:"tech_stack"`
	Links         []string  `json:"links"`
	EstimatedTime string    `json:"estimated_time"`
	Description   string    `json:"description"`
	Status        Status    `json:"status"`
}

// UpdateProjectRequest holds the allow-listed mutable project fields
type UpdateProjectRequest struct {
	Name          *string
	Client        *string
	TechStack     []string
	Links         []string
	EstimatedTime *string
	Description   *string
	Status        *Status
}

// ListFilter narrows a project listing. A nil TeamID lists every team
// visible to the caller.
type ListFilter struct {
	TeamID *uuid.UUID
}
