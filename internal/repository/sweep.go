package repository

import (
	"context"
	"time"

	"pitchside/internal/models"
	"pitchside/internal/observability"

	"gorm.io/gorm"
)

// SweepRepository runs the bulk expiry statements used by the sweeper. Each method is a
// single statement and returns the number of rows it touched.
type SweepRepository interface {
	DeleteExpiredStreams(ctx context.Context, now time.Time) (int64, error)
	DeactivateExpiredAnnouncements(ctx context.Context, now time.Time) (int64, error)
	DeactivateExpiredAds(ctx context.Context, now time.Time) (int64, error)
}

type sweepRepository struct {
	db *gorm.DB
}

// NewSweepRepository returns a new SweepRepository implementation.
func NewSweepRepository(db *gorm.DB) SweepRepository {
	return &sweepRepository{db: db}
}

func (r *sweepRepository) DeleteExpiredStreams(ctx context.Context, now time.Time) (int64, error) {
	defer observability.TrackQuery("sweep", "streams")()

	res := r.db.WithContext(ctx).Where("expiry_time < ?", now).Delete(&models.Stream{})
	return res.RowsAffected, res.Error
}

func (r *sweepRepository) DeactivateExpiredAnnouncements(ctx context.Context, now time.Time) (int64, error) {
	defer observability.TrackQuery("sweep", "announcements")()
	return r.deactivateExpired(ctx, &models.Announcement{}, now)
}

func (r *sweepRepository) DeactivateExpiredAds(ctx context.Context, now time.Time) (int64, error) {
	defer observability.TrackQuery("sweep", "ads")()
	return r.deactivateExpired(ctx, &models.Ad{}, now)
}

// deactivateExpired clears is_active on active rows whose expiry_date has passed. Rows
// without an expiry date are never touched.
func (r *sweepRepository) deactivateExpired(ctx context.Context, model any, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(model).
		Where("is_active = ? AND expiry_date IS NOT NULL AND expiry_date < ?", true, now).
		UpdateColumns(map[string]any{
			"is_active":  false,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}
