// Package authz centralizes the role and department checks that gate
// every mutating route, so handlers never re-derive the role
// hierarchy inline.
package authz

import "strings"

// Role is the closed set of principal roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleHOD     Role = "hod"
	RoleStaff   Role = "staff"
	RoleStudent Role = "student"
)

// ParseRole normalizes and validates a role string.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleHOD:
		return RoleHOD, true
	case RoleStaff:
		return RoleStaff, true
	case RoleStudent:
		return RoleStudent, true
	}
	return "", false
}

// DeptScience hosts service subjects for every branch; its HOD can read
// all student rosters but never mutate them.
const DeptScience = "sc"

var validDepartments = map[string]bool{
	"at": true, "ch": true, "ce": true, "cs": true, "ec": true,
	"eee": true, "me": true, "po": true, DeptScience: true,
	"": true, // admins carry no department
}

// ValidDepartment reports whether code is a known department short code.
func ValidDepartment(code string) bool {
	return validDepartments[strings.ToLower(code)]
}

// manages maps a requester role to the roles it may create, update or
// delete.
var manages = map[Role]map[Role]bool{
	RoleAdmin:   {RoleAdmin: true, RoleHOD: true, RoleStaff: true, RoleStudent: true},
	RoleHOD:     {RoleStaff: true, RoleStudent: true},
	RoleStaff:   {},
	RoleStudent: {},
}

// Actor is the authenticated principal a decision is made for. ID is
// the internal uuid of the users row the token was issued for;
// IdentityID is the provider account the login came from, shared with
// the students table for student principals.
type Actor struct {
	ID         string
	IdentityID string
	Role       Role
	Department string
}

// CanManageRole reports whether the actor may create/update/delete a
// principal holding target role.
func CanManageRole(a Actor, target Role) bool {
	return manages[a.Role][target]
}

// CanWriteStudents reports whether the actor may add, update or delete
// a student belonging to dept. Science HODs are read-only regardless
// of target.
func CanWriteStudents(a Actor, dept string) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleHOD:
		if a.Department == DeptScience {
			return false
		}
		return strings.EqualFold(a.Department, dept)
	default:
		return false
	}
}

// CanReadStudents reports whether the actor may list or fetch students
// in dept. Science HODs read every department.
func CanReadStudents(a Actor, dept string) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleHOD:
		return a.Department == DeptScience || strings.EqualFold(a.Department, dept)
	default:
		return false
	}
}

// StudentScope describes which departments the actor may list.
type StudentScope struct {
	All        bool
	Department string
}

// ReadScopeForStudents returns the roster visibility for list queries:
// admins and science HODs see everything, other HODs only their own
// department, everyone else nothing.
func ReadScopeForStudents(a Actor) (StudentScope, bool) {
	switch a.Role {
	case RoleAdmin:
		return StudentScope{All: true}, true
	case RoleHOD:
		if a.Department == DeptScience {
			return StudentScope{All: true}, true
		}
		return StudentScope{Department: a.Department}, true
	default:
		return StudentScope{}, false
	}
}

// CanManageSessions reports whether the actor may create or modify
// attendance sessions.
func CanManageSessions(a Actor) bool {
	return a.Role == RoleAdmin || a.Role == RoleHOD || a.Role == RoleStaff
}
