// Package authz decides who may act on teams and on the resources hanging off
// them. Decisions walk the ownership chain
// resource -> project -> team -> manager/membership.
package authz

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the role tag carried by every user.
type Role string

const (
	RoleManager   Role = "manager"
	RoleDeveloper Role = "developer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleManager || r == RoleDeveloper
}

// Capability is a set of abilities derived from a role.
type Capability uint8

const (
	// CanManageTeam owns teams and everything under them.
	CanManageTeam Capability = 1 << iota
	// CanActAsAssignee joins teams and works on assigned tasks and bugs.
	CanActAsAssignee
)

// Capabilities returns the capability set granted to r.
func (r Role) Capabilities() Capability {
	switch r {
	case RoleManager:
		return CanManageTeam
	case RoleDeveloper:
		return CanActAsAssignee
	default:
		return 0
	}
}

// Has reports whether c contains all of o.
func (c Capability) Has(o Capability) bool {
	return o != 0 && c&o == o
}

// Caller is the authenticated identity a request runs as.
type Caller struct {
	ID    uuid.UUID
	Role  Role
	Email string
}

// Action is an operation on a resource.
type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Kind is the type of resource being authorized.
type Kind string

const (
	KindTeam    Kind = "team"
	KindProject Kind = "project"
	KindTask    Kind = "task"
	KindBug     Kind = "bug"
	KindClient  Kind = "client"
)

func (k Kind) assignable() bool {
	return k == KindTask || k == KindBug
}

// Target is a resource together with its resolved ownership chain.
type Target struct {
	Kind Kind

	TeamID    uuid.UUID
	ManagerID uuid.UUID

	// IsMember is only resolved for developer callers.
	IsMember bool

	// AssigneeID is set for tasks and bugs that already exist.
	AssigneeID uuid.UUID
}

// Decision is the outcome of Authorize.
type Decision struct {
	Allow bool
	// Limited marks an allowed action restricted to a subset of the
	// resource: member-only views for teams, status->completed for
	// assigned tasks and bugs.
	Limited bool
	Reason  string
}

func allow(reason string) Decision   { return Decision{Allow: true, Reason: reason} }
func limited(reason string) Decision { return Decision{Allow: true, Limited: true, Reason: reason} }
func deny(reason string) Decision    { return Decision{Reason: reason} }

// Authorize decides whether caller may perform action on target. It performs
// no I/O; target must already carry the resolved chain.
func Authorize(caller Caller, target Target, action Action) Decision {
	caps := caller.Role.Capabilities()

	switch {
	case caps.Has(CanManageTeam):
		if target.ManagerID != caller.ID {
			return deny(fmt.Sprintf("%s belongs to a team managed by another user", target.Kind))
		}
		return allow("caller manages the owning team")

	case caps.Has(CanActAsAssignee):
		return authorizeAssignee(caller, target, action)

	default:
		return deny(fmt.Sprintf("role %q has no access", caller.Role))
	}
}

func authorizeAssignee(caller Caller, target Target, action Action) Decision {
	if action == ActionCreate || action == ActionDelete {
		return deny(fmt.Sprintf("developers cannot %s a %s", action, target.Kind))
	}

	if target.Kind.assignable() {
		if target.AssigneeID != caller.ID {
			return deny(fmt.Sprintf("%s is not assigned to the caller", target.Kind))
		}
		if action == ActionUpdate {
			return limited(fmt.Sprintf("assignee may only complete the %s", target.Kind))
		}
		return allow(fmt.Sprintf("%s is assigned to the caller", target.Kind))
	}

	if action != ActionRead {
		return deny(fmt.Sprintf("developers cannot %s a %s", action, target.Kind))
	}
	if !target.IsMember {
		return deny("caller is not a member of the team")
	}
	if target.Kind == KindTeam {
		return limited("caller is a member of the team")
	}
	return allow("caller is a member of the team")
}
