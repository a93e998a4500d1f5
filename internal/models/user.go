package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleIncharge UserRole = "incharge"
	RoleTeacher  UserRole = "teacher"
)

// User represents a login principal stored in the users table. Incharge
// accounts are bound to exactly one campus; other roles carry no campus.
type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	CampusID     *string    `db:"campus_id" json:"campus_id,omitempty"`
	CampusName   *string    `db:"campus_name" json:"campus_name,omitempty"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// CampusScope is the immutable access scope derived once per request from the
// caller's claims. A zero CampusID with an incharge role never occurs for
// well-formed tokens; services treat it as forbidden.
type CampusScope struct {
	Role     UserRole
	CampusID string
}

// NewCampusScope builds the scope value applied to teacher, routine, and
// leave queries.
func NewCampusScope(role UserRole, campusID string) CampusScope {
	return CampusScope{Role: role, CampusID: campusID}
}

// Restricted reports whether list queries must be filtered to one campus.
func (s CampusScope) Restricted() bool {
	return s.Role == RoleIncharge
}

// Allows reports whether a record bound to campusID may be accessed.
func (s CampusScope) Allows(campusID string) bool {
	if !s.Restricted() {
		return true
	}
	return s.CampusID != "" && s.CampusID == campusID
}
