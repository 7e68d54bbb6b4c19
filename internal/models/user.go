package models

import "time"

// Roles known to the application.
const (
	RoleAdmin    = "admin"
	RoleUser     = "user"
	RoleSalesman = "salesman"
)

// Roles lists the assignable roles.
var Roles = []string{RoleAdmin, RoleUser, RoleSalesman}

// User is an operator account used by the login screen.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Username  string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash, never exposed in JSON
	Role      string    `gorm:"size:20;not null;default:'user'" json:"role"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
