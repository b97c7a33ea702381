package seed

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"pitchside/internal/database"
	"pitchside/internal/models"
	"pitchside/internal/validation"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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

func TestDefaultFixtures(t *testing.T) {
	fx, err := DefaultFixtures()
	require.NoError(t, err)
	assert.NotEmpty(t, fx.Categories)
	assert.NotEmpty(t, fx.SocialLinks)
	assert.NotEmpty(t, fx.BaseURLs)
}

func TestParseFixtures(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "empty document", input: ""},
		{name: "unknown key", input: "teams:\n  - name: x\n", wantErr: "field teams not found"},
		{name: "category without name", input: "categories:\n  - slug: x\n", wantErr: "has no name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFixtures(strings.NewReader(tt.input))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestApplyFixtures_Idempotent(t *testing.T) {
	db := newTestDB(t)
	fx, err := ParseFixtures(strings.NewReader(`
categories:
  - name: Ice Hockey
  - name: Rugby
    slug: Rugby Union
socialLinks:
  - platform: Telegram
    url: https://t.me/example
baseURLs:
  - name: primary
    url: https://stream.example.com
`))
	require.NoError(t, err)

	res, err := ApplyFixtures(t.Context(), db, fx)
	require.NoError(t, err)
	assert.Equal(t, FixtureResult{Categories: 2, SocialLinks: 1, BaseURLs: 1}, res)

	res, err = ApplyFixtures(t.Context(), db, fx)
	require.NoError(t, err)
	assert.Equal(t, FixtureResult{}, res)

	var slugs []string
	require.NoError(t, db.Model(&models.Category{}).Order("id").Pluck("slug", &slugs).Error)
	assert.Equal(t, []string{"ice-hockey", "rugby-union"}, slugs)

	var link models.SocialLink
	require.NoError(t, db.First(&link).Error)
	assert.True(t, link.IsActive)
}

func TestFactory_Deterministic(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	a := NewFactory(42, clock).BuildStream(1)
	b := NewFactory(42, clock).BuildStream(1)
	assert.Equal(t, a.Title, b.Title)
	assert.Equal(t, a.StreamURL, b.StreamURL)
	assert.Equal(t, 3*time.Hour, a.ExpiryTime.Sub(a.Date))
	assert.False(t, a.Date.Before(clock.Now().Truncate(time.Minute)))
}

func TestFactory_BuildsValidRecords(t *testing.T) {
	f := NewFactory(7, nil)

	assert.Nil(t, validation.Struct(f.BuildStream(1)))
	assert.Nil(t, validation.Struct(f.BuildLiveTV(1)))
	assert.Nil(t, validation.Struct(f.BuildHighlight(1)))
	assert.Nil(t, validation.Struct(f.BuildAnnouncement()))
	assert.Nil(t, validation.Struct(f.BuildAd()))

	ad := f.BuildAd(func(a *models.Ad) { a.Type = models.AdTypeBanner })
	assert.Equal(t, models.AdTypeBanner, ad.Type)
	assert.True(t, ad.IsActive)
}

func TestSeeder_Run(t *testing.T) {
	db := newTestDB(t)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := NewSeeder(db, clock)

	fx := &Fixtures{Categories: []CategoryFixture{{Name: "Football"}, {Name: "Cricket"}}}
	opts := Options{Streams: 2, LiveTV: 1, Highlights: 1, Announcements: 2, Ads: 1, Seed: 1, Fixtures: fx}

	res, err := s.Run(t.Context(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Categories)
	assert.Equal(t, 4, res.Streams)
	assert.Equal(t, 2, res.LiveTV)
	assert.Equal(t, 2, res.Highlights)
	assert.Equal(t, 2, res.Announcements)
	assert.Equal(t, 1, res.Ads)

	var streams []models.Stream
	require.NoError(t, db.Preload("Category").Find(&streams).Error)
	require.Len(t, streams, 4)
	assert.NotEmpty(t, streams[0].Category.Name)

	opts.Clean = true
	opts.Streams = 1
	res, err = s.Run(t.Context(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Categories)

	var n int64
	require.NoError(t, db.Model(&models.Stream{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestSeeder_RequiresCategories(t *testing.T) {
	db := newTestDB(t)
	s := NewSeeder(db, nil)

	_, err := s.Run(t.Context(), Options{Streams: 1, Fixtures: &Fixtures{}})
	assert.ErrorContains(t, err, "no categories")
}
