package models

import (
	"time"

	"gorm.io/gorm"
)

// Team is a value object embedded in a stream.
type Team struct {
	Name string `gorm:"size:120;not null" json:"name" validate:"required,max=120"`
	Logo string `gorm:"size:1000" json:"logo"`
}

// Stream is a scheduled match stream. The sweeper deletes it once ExpiryTime has passed.
type Stream struct {
	Base
	Title      string       `gorm:"size:255;not null" json:"title" validate:"required,max=255"`
	Team1      Team         `gorm:"embedded;embeddedPrefix:team1_" json:"team1"`
	Team2      Team         `gorm:"embedded;embeddedPrefix:team2_" json:"team2"`
	Date       time.Time    `gorm:"not null;index" json:"date" validate:"required"`
	StreamURL  string       `gorm:"column:stream_url;size:1000;not null" json:"streamURL" validate:"required,url"`
	ExpiryTime time.Time    `gorm:"not null;index" json:"expiryTime" validate:"required"`
	CategoryID uint         `gorm:"not null;index" json:"-"`
	Category   *CategoryRef `gorm:"foreignKey:CategoryID" json:"category" validate:"required"`
	IsLive     bool         `gorm:"not null;index" json:"isLive"`
	Views      int64        `gorm:"not null" json:"views" validate:"gte=0"`
}

func (Stream) TableName() string { return "streams" }

// ReferencedCategoryID returns the id of the referenced category.
func (s *Stream) ReferencedCategoryID() uint {
	if s.Category != nil {
		return s.Category.ID
	}
	return s.CategoryID
}

func (s *Stream) BeforeSave(_ *gorm.DB) error {
	s.CategoryID = s.ReferencedCategoryID()
	return nil
}
