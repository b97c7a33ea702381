package models

import "gorm.io/gorm"

// LiveTV is an always-on TV channel.
type LiveTV struct {
	Base
	ChannelName string       `gorm:"size:255;not null" json:"channelName" validate:"required,max=255"`
	Logo        string       `gorm:"size:1000" json:"logo"`
	URL         string       `gorm:"column:url;size:1000;not null" json:"url" validate:"required,url"`
	CategoryID  uint         `gorm:"not null;index" json:"-"`
	Category    *CategoryRef `gorm:"foreignKey:CategoryID" json:"category" validate:"required"`
	IsLive      bool         `gorm:"not null;index" json:"isLive"`
	Views       int64        `gorm:"not null" json:"views" validate:"gte=0"`
	Description string       `gorm:"type:text" json:"description"`
}

func (LiveTV) TableName() string { return "live_tvs" }

// SetDefaults marks new channels live.
func (l *LiveTV) SetDefaults() {
	l.IsLive = true
}

// ReferencedCategoryID returns the id of the referenced category.
func (l *LiveTV) ReferencedCategoryID() uint {
	if l.Category != nil {
		return l.Category.ID
	}
	return l.CategoryID
}

func (l *LiveTV) BeforeSave(_ *gorm.DB) error {
	l.CategoryID = l.ReferencedCategoryID()
	return nil
}
