package models

import "time"

// Role is the kind of account.
type Role string

const (
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// DefaultRole is assigned when registration does not name one.
const DefaultRole = RoleStudent

// ParseRole maps a raw role string to a known Role.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleStudent, RoleParent, RoleTeacher, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

// Account is a single user record.
type Account struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never serialized
	Role         Role   `json:"role"`
	Age          *int   `json:"age,omitempty"`
	// LinkedParentID points from a student to its parent account.
	LinkedParentID *int64 `json:"linked_parent_id,omitempty"`
	// LinkedParentUsername is filled on reads via a join.
	LinkedParentUsername *string   `json:"linked_parent,omitempty"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
}

// StudentView is the public projection of a student account.
type StudentView struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	LinkedParent *string `json:"linked_parent"`
}

// ToStudentView projects a to its public student shape.
func (a Account) ToStudentView() StudentView {
	return StudentView{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		LinkedParent: a.LinkedParentUsername,
	}
}
