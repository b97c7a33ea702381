package models

import "gorm.io/gorm"

// Highlight is a recorded clip.
type Highlight struct {
	Base
	Title      string       `gorm:"size:255;not null" json:"title" validate:"required,max=255"`
	URL        string       `gorm:"column:url;size:1000;not null" json:"url" validate:"required,url"`
	Thumbnail  string       `gorm:"size:1000" json:"thumbnail"`
	CategoryID uint         `gorm:"not null;index" json:"-"`
	Category   *CategoryRef `gorm:"foreignKey:CategoryID" json:"category" validate:"required"`
	Duration   string       `gorm:"size:20" json:"duration"`
	Views      int64        `gorm:"not null" json:"views" validate:"gte=0"`
	Tags       []string     `gorm:"type:text;serializer:json" json:"tags"`
}

func (Highlight) TableName() string { return "highlights" }

// ReferencedCategoryID returns the id of the referenced category.
func (h *Highlight) ReferencedCategoryID() uint {
	if h.Category != nil {
		return h.Category.ID
	}
	return h.CategoryID
}

func (h *Highlight) BeforeSave(_ *gorm.DB) error {
	h.CategoryID = h.ReferencedCategoryID()
	if h.Tags == nil {
		h.Tags = []string{}
	}
	return nil
}
