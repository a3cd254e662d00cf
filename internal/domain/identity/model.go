package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role is the access class governing dashboards and permissions. Every
// session carries exactly one resolved role.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleDoctor        Role = "doctor"
	RoleStaff         Role = "staff"
	RoleInventoryHead Role = "inventory"
	RolePatient       Role = "patient"
	RoleDefault       Role = "default"
)

// rolePrecedence is the fixed resolution order for users holding multiple
// memberships: Doctor wins over everything, then Staff, then InventoryHead,
// then Patient.
var rolePrecedence = []Role{RoleDoctor, RoleStaff, RoleInventoryHead, RolePatient}

// ResolveRole collapses a user's memberships into one primary role.
// Administrators bypass membership resolution entirely. Resolution never
// fails: users with no recognized membership get RoleDefault.
func ResolveRole(isAdmin bool, memberships []Role) Role {
	if isAdmin {
		return RoleAdmin
	}
	held := make(map[Role]bool, len(memberships))
	for _, m := range memberships {
		held[m] = true
	}
	for _, r := range rolePrecedence {
		if held[r] {
			return r
		}
	}
	return RoleDefault
}

// UserAccount maps to the user_account table.
type UserAccount struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        *string   `db:"email" json:"email,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Staff maps to the staff table: the clinical profile behind the primary
// and assistant doctor references on admissions and prescriptions.
type Staff struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	UserID       uuid.UUID  `db:"user_id" json:"user_id"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Email        string     `db:"email" json:"email"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	Specialty    *string    `db:"specialty" json:"specialty,omitempty"`
	RoleTitle    string     `db:"role_title" json:"role_title"`
	JoiningDate  time.Time  `db:"joining_date" json:"joining_date"`
	Active       bool       `db:"active" json:"active"`
	SupervisorID *uuid.UUID `db:"supervisor_id" json:"supervisor_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// FullName returns the staff member's display name.
func (s *Staff) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Session is the result of a successful login or signup: the token, the
// resolved role, and where the client should land.
type Session struct {
	Token       string `json:"token"`
	Role        Role   `json:"role"`
	Username    string `json:"username"`
	Destination string `json:"destination"`
}
