package entities

import (
	"time"
)

// UserRole discriminates between the two kinds of library users.
type UserRole string

const (
	RoleTeacher UserRole = "TEA"
	RoleStudent UserRole = "STU"
)

// Valid reports whether r is a known role code.
func (r UserRole) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

// CanOverseeClasses reports whether users with this role may be linked to
// classes and inspect their students' borrow records.
func (r UserRole) CanOverseeClasses() bool {
	return r == RoleTeacher
}

func (r UserRole) IsStudent() bool {
	return r == RoleStudent
}

// Label returns the human readable name shown on pages.
func (r UserRole) Label() string {
	switch r {
	case RoleTeacher:
		return "Teacher"
	case RoleStudent:
		return "Student"
	default:
		return string(r)
	}
}

type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UID              string     `gorm:"uniqueIndex;size:20;not null" json:"uid"` // login id, e.g. "T001"
	Name             string     `gorm:"size:100" json:"name"`
	Sex              string     `gorm:"size:10" json:"sex,omitempty"`
	Age              int        `json:"age,omitempty"`
	College          string     `gorm:"size:100" json:"college,omitempty"`
	JoinYear         *int       `json:"join_year,omitempty"` // teachers only
	PasswordHash     string     `gorm:"size:255" json:"-"`
	Role             UserRole   `gorm:"size:3;index;not null" json:"role"`
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsLocked reports whether the account is temporarily locked after failed logins.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

func (u *User) IsTeacher() bool {
	return u.Role.CanOverseeClasses()
}

func (u *User) IsStudent() bool {
	return u.Role.IsStudent()
}
