package repository

import (
	"fmt"
	"testing"
	"time"

	"pitchside/internal/database"
	"pitchside/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB returns a private in-memory database with the full schema. The single
// connection keeps every goroutine on the same memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func newStream(title string, categoryID uint, expiry time.Time) *models.Stream {
	return &models.Stream{
		Title:      title,
		Team1:      models.Team{Name: "Home"},
		Team2:      models.Team{Name: "Away"},
		Date:       expiry.Add(-2 * time.Hour),
		StreamURL:  "https://example.com/" + title,
		ExpiryTime: expiry,
		Category:   &models.CategoryRef{ID: categoryID},
	}
}

func ptr[T any](v T) *T { return &v }
