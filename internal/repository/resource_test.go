package repository

import (
	"sync"
	"testing"
	"time"

	"pitchside/internal/models"
	"pitchside/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_CreateThenGet(t *testing.T) {
	db := newTestDB(t)
	res := NewResources(db)
	ctx := t.Context()
	football := seedCategory(t, db, "Football")

	created, err := res.Streams.Create(ctx, newStream("derby", football.ID, time.Now().UTC().Add(time.Hour)))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := res.Streams.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "derby", got.Title)
	assert.Equal(t, "Home", got.Team1.Name)
	require.NotNil(t, got.Category)
	assert.Equal(t, models.CategoryRef{ID: football.ID, Name: "Football", Slug: "football"}, *got.Category)
	assert.False(t, got.IsLive)
	assert.Zero(t, got.Views)
}

func TestResource_CreateRejectsUnknownCategory(t *testing.T) {
	db := newTestDB(t)
	res := NewResources(db)

	_, err := res.Streams.Create(t.Context(), newStream("orphan", 999, time.Now().UTC()))
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Equal(t, "Category not found", appErr.Message)
}

func TestResource_DuplicateCategoryIsConflict(t *testing.T) {
	db := newTestDB(t)
	res := NewResources(db)
	ctx := t.Context()

	_, err := res.Categories.Create(ctx, &models.Category{Name: "Cricket"})
	require.NoError(t, err)

	_, err = res.Categories.Create(ctx, &models.Category{Name: "Cricket"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeConflict, appErr.Code)
	assert.Equal(t, 409, appErr.Status())
}

func TestResource_UpdateKeepsIDAndRepopulates(t *testing.T) {
	db := newTestDB(t)
	res := NewResources(db)
	ctx := t.Context()
	football := seedCategory(t, db, "Football")
	tennis := seedCategory(t, db, "Tennis")

	created, err := res.Streams.Create(ctx, newStream("final", football.ID, time.Now().UTC().Add(time.Hour)))
	require.NoError(t, err)

	created.Title = "grand final"
	created.Category = &models.CategoryRef{ID: tennis.ID}
	updated, err := res.Streams.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "grand final", updated.Title)
	assert.Equal(t, "tennis", updated.Category.Slug)

	var n int64
	require.NoError(t, db.Model(&models.Category{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestResource_DeleteUnknownIsNotFound(t *testing.T) {
	db := newTestDB(t)
	res := NewResources(db)

	err := res.Ads.Delete(t.Context(), 12345)
	assert.True(t, models.IsNotFound(err))

	_, err = res.Ads.GetByID(t.Context(), 12345)
	assert.True(t, models.IsNotFound(err))
	assert.EqualError(t, err, "Ad not found")
}

func TestResource_DeleteReferencedCategoryIsBlocked(t *testing.T) {
	db := newTestDB(t)
	res := NewResources(db)
	ctx := t.Context()
	football := seedCategory(t, db, "Football")

	stream, err := res.Streams.Create(ctx, newStream("derby", football.ID, time.Now().UTC().Add(time.Hour)))
	require.NoError(t, err)

	err = res.Categories.Delete(ctx, football.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeConflict, appErr.Code)

	require.NoError(t, res.Streams.Delete(ctx, stream.ID))
	require.NoError(t, res.Categories.Delete(ctx, football.ID))
	assert.True(t, models.IsNotFound(res.Categories.Delete(ctx, football.ID)))
}

func TestResource_DoubleToggleRestores(t *testing.T) {
	db := newTestDB(t)
	res := NewResources(db)
	ctx := t.Context()

	a := &models.Announcement{Title: "Welcome", Message: "hi"}
	a.SetDefaults()
	created, err := res.Announcements.Create(ctx, a)
	require.NoError(t, err)
	require.True(t, created.IsActive)

	once, err := res.Announcements.Toggle(ctx, created.ID, "is_active")
	require.NoError(t, err)
	assert.False(t, once.IsActive)

	twice, err := res.Announcements.Toggle(ctx, created.ID, "is_active")
	require.NoError(t, err)
	assert.True(t, twice.IsActive)

	_, err = res.Announcements.Toggle(ctx, 999, "is_active")
	assert.True(t, models.IsNotFound(err))
}

func TestResource_ConcurrentIncrementsAreNotLost(t *testing.T) {
	db := newTestDB(t)
	res := NewResources(db)
	ctx := t.Context()

	ad := &models.Ad{Type: models.AdTypeBanner, Title: "Boots"}
	ad.SetDefaults()
	created, err := res.Ads.Create(ctx, ad)
	require.NoError(t, err)

	const clicks = 2
	var wg sync.WaitGroup
	errs := make(chan error, clicks)
	for range clicks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := res.Ads.Increment(ctx, created.ID, "click_count")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := res.Ads.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(clicks), got.ClickCount)
	assert.Zero(t, got.ViewCount)
}

func TestResource_ListFiltersSortsAndPaginates(t *testing.T) {
	db := newTestDB(t)
	res := NewResources(db)
	ctx := t.Context()
	football := seedCategory(t, db, "Football")
	tennis := seedCategory(t, db, "Tennis")

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"alpha", "beta", "gamma", "delta", "epsilon"} {
		cat := football.ID
		if i%2 == 1 {
			cat = tennis.ID
		}
		s := newStream(title, cat, base.Add(time.Duration(i)*time.Hour))
		s.IsLive = i < 2
		_, err := res.Streams.Create(ctx, s)
		require.NoError(t, err)
	}

	parse := func(values map[string]string) query.Params {
		p, err := StreamSpec.Parse(func(key string, _ ...string) string { return values[key] })
		require.NoError(t, err)
		return p
	}

	t.Run("default sort is newest date first", func(t *testing.T) {
		items, total, err := res.Streams.List(ctx, parse(nil))
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, items, 5)
		assert.Equal(t, "epsilon", items[0].Title)
		assert.Equal(t, "alpha", items[4].Title)
		require.NotNil(t, items[0].Category)
		assert.Equal(t, "football", items[0].Category.Slug)
	})

	t.Run("empty filter is no filter", func(t *testing.T) {
		_, withEmpty, err := res.Streams.List(ctx, parse(map[string]string{"isLive": ""}))
		require.NoError(t, err)
		_, without, err := res.Streams.List(ctx, parse(nil))
		require.NoError(t, err)
		assert.Equal(t, without, withEmpty)
	})

	t.Run("bool and category filters combine", func(t *testing.T) {
		items, total, err := res.Streams.List(ctx, parse(map[string]string{
			"isLive":   "true",
			"category": "1",
		}))
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, "alpha", items[0].Title)

		_, total, err = res.Streams.List(ctx, parse(map[string]string{"isLive": "nope"}))
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		items, total, err := res.Streams.List(ctx, parse(map[string]string{"search": "ELT"}))
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "delta", items[0].Title)
	})

	t.Run("pages", func(t *testing.T) {
		items, total, err := res.Streams.List(ctx, parse(map[string]string{"limit": "2", "page": "3", "sort": "title"}))
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, items, 1)
		assert.Equal(t, "gamma", items[0].Title)

		items, _, err = res.Streams.List(ctx, parse(map[string]string{"limit": "2", "page": "9"}))
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})
}

func TestResource_SearchMatchesWildcardsLiterally(t *testing.T) {
	db := newTestDB(t)
	res := NewResources(db)
	ctx := t.Context()

	for _, name := range []string{"100% Sports", "1000 Sports"} {
		l := &models.BaseURL{Name: name, URL: "https://example.com"}
		l.SetDefaults()
		_, err := res.BaseURLs.Create(ctx, l)
		require.NoError(t, err)
	}

	p, err := BaseURLSpec.Parse(func(key string, _ ...string) string {
		if key == "search" {
			return "0%"
		}
		return ""
	})
	require.NoError(t, err)

	items, total, err := res.BaseURLs.List(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "100% Sports", items[0].Name)
}

func TestResource_HighlightTagsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	res := NewResources(db)
	cricket := seedCategory(t, db, "Cricket")

	created, err := res.Highlights.Create(t.Context(), &models.Highlight{
		Title:    "Six",
		URL:      "https://example.com/six",
		Category: &models.CategoryRef{ID: cricket.ID},
		Tags:     []string{"ipl", "six"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ipl", "six"}, created.Tags)

	noTags, err := res.Highlights.Create(t.Context(), &models.Highlight{
		Title:    "Four",
		URL:      "https://example.com/four",
		Category: &models.CategoryRef{ID: cricket.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{}, noTags.Tags)
}
