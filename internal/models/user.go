package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role is a dashboard user's role.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleModerator
}

// User is a dashboard account. The password hash is never serialized.
type User struct {
	Base
	Email      string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password   string     `gorm:"size:255;not null" json:"-"`
	Role       Role       `gorm:"size:20;not null;index" json:"role"`
	Name       string     `gorm:"size:100" json:"name"`
	LastActive *time.Time `json:"lastActive"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeSave(_ *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = RoleModerator
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
