package models

import "time"

// Announcement is a banner message. The sweeper deactivates it once ExpiryDate has passed.
type Announcement struct {
	Base
	Title      string     `gorm:"size:255;not null" json:"title" validate:"required,max=255"`
	Message    string     `gorm:"type:text;not null" json:"message" validate:"required"`
	IsActive   bool       `gorm:"not null;index" json:"isActive"`
	Priority   int        `gorm:"not null;index" json:"priority"`
	ExpiryDate *time.Time `gorm:"index" json:"expiryDate"`
}

func (Announcement) TableName() string { return "announcements" }

func (a *Announcement) SetDefaults() {
	a.IsActive = true
}
