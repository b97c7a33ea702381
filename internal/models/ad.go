package models

import "time"

// Ad types.
const (
	AdTypeDirect = "direct"
	AdTypeBanner = "banner"
)

// Ad is a placement with public click and view counters. The sweeper deactivates it once
// ExpiryDate has passed.
type Ad struct {
	Base
	Type       string     `gorm:"size:20;not null;index" json:"type" validate:"required,oneof=direct banner"`
	Title      string     `gorm:"size:255;not null" json:"title" validate:"required,max=255"`
	Content    string     `gorm:"type:text" json:"content"`
	Link       string     `gorm:"size:1000" json:"link" validate:"omitempty,url"`
	IsActive   bool       `gorm:"not null;index" json:"isActive"`
	Position   string     `gorm:"size:50;index" json:"position" validate:"max=50"`
	ClickCount int64      `gorm:"not null" json:"clickCount" validate:"gte=0"`
	ViewCount  int64      `gorm:"not null" json:"viewCount" validate:"gte=0"`
	ExpiryDate *time.Time `gorm:"index" json:"expiryDate"`
}

func (Ad) TableName() string { return "ads" }

func (a *Ad) SetDefaults() {
	a.IsActive = true
}
