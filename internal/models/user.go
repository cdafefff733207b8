package models

import (
	"errors"
	"strings"
	"time"
)

// ErrDuplicate reports a write rejected by a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleDirector       UserRole = "DIRECTOR"
	RoleDepartmentHead UserRole = "DEPARTMENT_HEAD"
	RoleTeacher        UserRole = "TEACHER"
)

// Roles lists every role.
var Roles = []UserRole{RoleDirector, RoleDepartmentHead, RoleTeacher}

// Capability names one permission granted to a role.
type Capability string

const (
	CapabilityViewTimetables   Capability = "timetables:read"
	CapabilityViewOverview     Capability = "overview:read"
	CapabilityManageUsers      Capability = "users:manage"
	CapabilityScanConflicts    Capability = "conflicts:read"
	CapabilityExportTimetables Capability = "timetables:export"
	CapabilityManageCatalog    Capability = "catalog:manage"
	CapabilityAssignSessions   Capability = "sessions:assign"
	CapabilityEditOwnSubjects  Capability = "own-subjects:write"
	CapabilityEditAvailability Capability = "own-availability:write"
)

// ParseRole accepts canonical role names and the legacy subdirector, jefe and docente names.
func ParseRole(raw string) (UserRole, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(RoleDirector), "SUBDIRECTOR":
		return RoleDirector, true
	case string(RoleDepartmentHead), "JEFE":
		return RoleDepartmentHead, true
	case string(RoleTeacher), "DOCENTE":
		return RoleTeacher, true
	}
	return "", false
}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleDirector, RoleDepartmentHead, RoleTeacher:
		return true
	default:
		return false
	}
}

// Capabilities lists what the role may do.
func (r UserRole) Capabilities() []Capability {
	switch r {
	case RoleDirector:
		return []Capability{CapabilityViewTimetables, CapabilityViewOverview, CapabilityManageUsers, CapabilityScanConflicts, CapabilityExportTimetables}
	case RoleDepartmentHead:
		return []Capability{CapabilityViewTimetables, CapabilityScanConflicts, CapabilityExportTimetables, CapabilityManageCatalog, CapabilityAssignSessions}
	case RoleTeacher:
		return []Capability{CapabilityViewTimetables, CapabilityEditOwnSubjects, CapabilityEditAvailability}
	default:
		return nil
	}
}

// Can reports whether the role holds the capability.
func (r UserRole) Can(c Capability) bool {
	for _, have := range r.Capabilities() {
		if have == c {
			return true
		}
	}
	return false
}

// HomePath is the landing view clients open after login.
func (r UserRole) HomePath() string {
	switch r {
	case RoleDirector:
		return "/director"
	case RoleDepartmentHead:
		return "/department-head"
	case RoleTeacher:
		return "/teacher"
	default:
		return "/"
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"usuario" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"rol" json:"role"`
	TeacherID    *string   `db:"docente_id" json:"teacher_id,omitempty"`
	Active       bool      `db:"activo" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	TeacherID string
	Username  string
}

// CreateUserRequest is the payload for creating a user.
type CreateUserRequest struct {
	Username  string  `json:"username" validate:"required,min=3,max=64"`
	Password  string  `json:"password" validate:"required,min=6"`
	Role      string  `json:"role" validate:"required"`
	TeacherID *string `json:"teacher_id"`
	Active    *bool   `json:"active"`
}

// UpdateUserRequest is the payload for updating a user. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=64"`
	Password  *string `json:"password" validate:"omitempty,min=6"`
	Role      *string `json:"role"`
	TeacherID *string `json:"teacher_id"`
	Active    *bool   `json:"active"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
