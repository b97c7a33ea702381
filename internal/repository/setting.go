package repository

import (
	"context"
	"errors"
	"time"

	"pitchside/internal/cache"
	"pitchside/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository reads and writes key/value application settings.
type SettingRepository interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type settingRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewSettingRepository returns a new SettingRepository implementation. c may be nil.
func NewSettingRepository(db *gorm.DB, c *cache.Cache) SettingRepository {
	return &settingRepository{db: db, cache: c}
}

type cachedSetting struct {
	Value string `json:"value"`
	Found bool   `json:"found"`
}

func (r *settingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var out cachedSetting
	err := r.cache.Aside(ctx, cache.SettingKey(key), &out, cache.SettingTTL, func() error {
		var s models.AppSetting
		err := r.db.WithContext(ctx).Where("setting_key = ?", key).First(&s).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			out = cachedSetting{}
			return nil
		case err != nil:
			return models.NewInternalError(err)
		}
		out = cachedSetting{Value: s.Value, Found: true}
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return out.Value, out.Found, nil
}

// Set upserts key and drops the cached copy.
func (r *settingRepository) Set(ctx context.Context, key, value string) error {
	s := models.AppSetting{Key: key, Value: value, UpdatedAt: time.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&s).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	r.cache.InvalidateSetting(ctx, key)
	return nil
}
