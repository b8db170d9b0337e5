package team

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Team is owned by exactly one manager
type Team struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ManagerID   uuid.UUID `json:"manager" db:"manager_id"`
	Name        string    `json:"name" db:"name"`
	Designation string    `json:"designation" db:"designation"`
	Purpose     string    `json:"purpose" db:"purpose"`
	Status      Status    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreateTeamRequest captures payload for creating a team
type CreateTeamRequest struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Purpose     string `json:"purpose"`
}

// UpdateTeamRequest holds the allow-listed mutable team fields
type UpdateTeamRequest struct {
	Name        *string
	Designation *string
	Purpose     *string
	Status      *Status
}

type MemberRole string

const (
	MemberRoleDeveloper     MemberRole = "Developer"
	MemberRoleLeadDeveloper MemberRole = "Lead Developer"
	MemberRoleManager       MemberRole = "Manager"
)

// DeveloperTeam is the membership row joining a developer to a team.
type DeveloperTeam struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	DeveloperID  uuid.UUID  `json:"developer" db:"developer_id"`
	TeamID       uuid.UUID  `json:"team" db:"team_id"`
	Role         MemberRole `json:"role" db:"role"`
	JoinedAt     time.Time  `json:"joinedAt" db:"joined_at"`
	InvitationID *uuid.UUID `json:"invitationId,omitempty" db:"invitation_id"`
}

// Member is a team member as shown in member listings.
type Member struct {
	UserID   uuid.UUID  `json:"id" db:"user_id"`
	Username string     `json:"username" db:"username"`
	Email    string     `json:"email" db:"email"`
	Role     MemberRole `json:"role" db:"role"`
	JoinedAt time.Time  `json:"joinedAt" db:"joined_at"`
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "Pending"
	InvitationAccepted InvitationStatus = "Accepted"
	InvitationRejected InvitationStatus = "Rejected"
)

type Invitation struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	TeamID       uuid.UUID        `json:"team" db:"team_id"`
	InvitedBy    uuid.UUID        `json:"invitedBy" db:"invited_by"`
	InvitedEmail string           `json:"invitedEmail" db:"invited_email"`
	Status       InvitationStatus `json:"status" db:"status"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
	ResponseDate *time.Time       `json:"responseDate,omitempty" db:"response_date"`
}
