package models

import "slices"

// Role is the platform role carried by a verified credential.
type Role string

// Platform roles, lowest privilege first.
const (
	RoleStudent    Role = "student"
	RoleTeacher    Role = "teacher"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// Role sets required by each entry point.
var (
	ReadRoles   = []Role{RoleAdmin, RoleSuperadmin}
	ExportRoles = []Role{RoleSuperadmin}
	PurgeRoles  = []Role{RoleSuperadmin}
)

// Identity is the payload decoded from a bearer credential.
type Identity struct {
	Subject string `json:"subject"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
}

// Authorize checks that id is present and holds one of the allowed roles.
func Authorize(id *Identity, allowed ...Role) error {
	if id == nil || id.Subject == "" {
		return ErrUnauthenticated
	}

	if !slices.Contains(allowed, id.Role) {
		return ErrForbidden
	}

	return nil
}

// Actor is the acting identity plus request context, recorded on self-referential entries.
type Actor struct {
	Identity
	IPAddress string
	UserAgent string
}

// Name returns the best human-readable label for the actor.
func (a Actor) Name() string {
	if a.Email != "" {
		return a.Email
	}

	if a.Subject != "" {
		return a.Subject
	}

	return "unknown"
}
