package models

// SocialLink points at one of the platform's social profiles.
type SocialLink struct {
	Base
	Platform string `gorm:"size:100;not null" json:"platform" validate:"required,max=100"`
	URL      string `gorm:"column:url;size:1000;not null" json:"url" validate:"required,url"`
	Icon     string `gorm:"size:500" json:"icon"`
	IsActive bool   `gorm:"not null;index" json:"isActive"`
	Order    int    `gorm:"column:sort_order;not null;index" json:"order"`
}

func (SocialLink) TableName() string { return "social_links" }

func (s *SocialLink) SetDefaults() {
	s.IsActive = true
}

// BaseURL is a named mirror or upstream host used by the player.
type BaseURL struct {
	Base
	Name     string `gorm:"size:100;not null" json:"name" validate:"required,max=100"`
	URL      string `gorm:"column:url;size:1000;not null" json:"url" validate:"required,url"`
	IsActive bool   `gorm:"not null;index" json:"isActive"`
	Order    int    `gorm:"column:sort_order;not null;index" json:"order"`
}

func (BaseURL) TableName() string { return "base_urls" }

func (b *BaseURL) SetDefaults() {
	b.IsActive = true
}
