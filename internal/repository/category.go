package repository

import (
	"context"
	"fmt"

	"pitchside/internal/models"

	"gorm.io/gorm"
)

// categoryReferrers lists the tables whose rows point at a category.
var categoryReferrers = []any{&models.Stream{}, &models.LiveTV{}, &models.Highlight{}}

// CategoryInUse refuses to delete a category that streams, live channels or
// highlights still reference.
func CategoryInUse(ctx context.Context, db *gorm.DB, id uint) error {
	var total int64
	for _, model := range categoryReferrers {
		var n int64
		if err := db.WithContext(ctx).Model(model).Where("category_id = ?", id).Count(&n).Error; err != nil {
			return models.NewInternalError(err)
		}
		total += n
	}
	if total > 0 {
		return models.NewConflictError(fmt.Sprintf("Category is used by %d item(s) and cannot be deleted", total), nil)
	}
	return nil
}
