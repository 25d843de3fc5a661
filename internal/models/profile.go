package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleParent  UserRole = "parent"
	RoleAdmin   UserRole = "admin"
)

// RoleUnresolved is the zero value: the identity is authenticated but no
// Profile could be read for it. Guards must treat it as authorized for
// nothing role-gated.
const RoleUnresolved UserRole = ""

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleParent, RoleAdmin:
		return true
	}
	return false
}

// Profile is the role-bearing record associated with an identity. It is
// created exactly once, at first sign-in, and the role is immutable
// afterwards. The JSON field names round-trip with the existing
// deployment's document schema.
type Profile struct {
	ID        string    `json:"id" gorm:"primaryKey;size:255"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role      UserRole  `json:"role" gorm:"not null;size:20;default:student" validate:"required,user_role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Profile) TableName() string {
	return "users"
}
