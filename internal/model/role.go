package model

// Role identifies what kind of principal an Account represents.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

// ParseRole returns the Role named by s.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return Role(s), true
	default:
		return "", false
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// HasProfile reports whether accounts of this role own a profile record.
func (r Role) HasProfile() bool {
	switch r {
	case RoleStudent, RoleTeacher:
		return true
	default:
		return false
	}
}

// Peers returns the roles an account of role r may discover through search.
func (r Role) Peers() []Role {
	switch r {
	case RoleStudent:
		return []Role{RoleTeacher}
	case RoleTeacher:
		return []Role{RoleStudent}
	case RoleAdmin:
		return []Role{RoleStudent, RoleTeacher}
	default:
		return nil
	}
}

func (r Role) String() string { return string(r) }
