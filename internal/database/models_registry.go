package database

import "pitchside/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Category must be migrated in the same call as its referrers so CategoryRef resolves to it.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.AppSetting{},
		&models.Category{},
		&models.Stream{},
		&models.LiveTV{},
		&models.Highlight{},
		&models.Announcement{},
		&models.Ad{},
		&models.SocialLink{},
		&models.BaseURL{},
	}
}
