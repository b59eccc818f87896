package domain

import "time"

// Role is the authorization level carried in access tokens.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleUser      Role = "USER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// IsPrivileged reports whether r may write catalog data.
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleModerator
}

// PrivilegedRoles lists the roles allowed to mutate the catalog.
var PrivilegedRoles = []Role{RoleAdmin, RoleModerator}

// User is an account that can authenticate against the API.
type User struct {
	ID           int64
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
