package models

import "time"

// Setting keys.
const (
	SettingAppName = "app_name"
)

// AppSetting is a key/value configuration row editable from the dashboard.
type AppSetting struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Key       string    `gorm:"column:setting_key;size:100;not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (AppSetting) TableName() string { return "app_settings" }
