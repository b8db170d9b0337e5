// Package workitem implements tasks and bugs. Both live under a project, are
// assigned to one developer of the project's team and share every rule; only
// the backing table differs.
package workitem

import (
	"time"

	"github.com/curaious/devboard/internal/authz"
	"github.com/google/uuid"
)

type Kind string

const (
	KindTask Kind = "task"
	KindBug  Kind = "bug"
)

func (k Kind) table() string {
	return string(k) + "s"
}

func (k Kind) resource() authz.Kind {
	if k == KindBug {
		return authz.KindBug
	}
	return authz.KindTask
}

// Title is the capitalised kind used in messages.
func (k Kind) Title() string {
	if k == KindBug {
		return "Bug"
	}
	return "Task"
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusToDo       Status = "to-do"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

var statuses = []Status{StatusActive, StatusToDo, StatusInProgress, StatusCompleted}

type WorkItem struct {
	ID                     uuid.UUID  `json:"id" db:"id"`
	ProjectID              uuid.UUID  `json:"project_id" db:"project_id"`
	DeveloperID            uuid.UUID  `json:"developer_id" db:"developer_id"`
	Name                   string     `json:"name" db:"name"`
	Description            string     `json:"description" db:"description"`
	ExpectedCompletionDate *time.Time `json:"expected_completion_date,omitempty" db:"expected_completion_date"`
	Priority               Priority   `json:"priority" db:"priority"`
	Status                 Status     `json:"status" db:"status"`
	CreatedBy              uuid.UUID  `json:"created_by" db:"created_by"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateRequest struct {
	ProjectID              uuid.UUID `json:"project_id"`
	DeveloperID            uuid.UUID `json:"developer_id"`
	Name                   string    `json:"name"`
	Description            string    `json:"description"`
	ExpectedCompletionDate string    `json:"expected_completion_date"`
	Priority               Priority  `json:"priority"`
	Status                 Status    `json:"status"`
}

// UpdateRequest holds the allow-listed mutable fields
type UpdateRequest struct {
	Name                   *string
	Description            *string
	ExpectedCompletionDate *time.Time
	Priority               *Priority
	Status                 *Status
	DeveloperID            *uuid.UUID
}

// Query selects work items. Zero fields are not filtered on; an empty
// non-nil TeamIDs matches nothing.
type Query struct {
	TeamIDs     []uuid.UUID
	ProjectID   *uuid.UUID
	DeveloperID *uuid.UUID
}

type ListFilter struct {
	ProjectID *uuid.UUID
}
