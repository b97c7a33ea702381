package repository

import (
	"testing"
	"time"

	"pitchside/internal/cache"
	"pitchside/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.New(client), mr
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := newTestDB(t)
	c, mr := newTestCache(t)
	repo := NewUserRepository(db, c)
	ctx := t.Context()

	u := &models.User{Email: "  Mod@Example.com ", Password: "hash", Name: "Mod"}
	require.NoError(t, repo.Create(ctx, u))
	assert.Equal(t, models.RoleModerator, u.Role)

	byEmail, err := repo.GetByEmail(ctx, "MOD@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	cached, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "mod@example.com", cached.Email)
	assert.True(t, mr.Exists(cache.UserKey(u.ID)))
	assert.Empty(t, cached.Password, "cached users never carry the hash")

	full, err := repo.GetWithPassword(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", full.Password)

	err = repo.Create(ctx, &models.User{Email: "mod@example.com", Password: "x"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeConflict, appErr.Code)
}

func TestUserRepository_UpdateInvalidatesCache(t *testing.T) {
	db := newTestDB(t)
	c, mr := newTestCache(t)
	repo := NewUserRepository(db, c)
	ctx := t.Context()

	u := &models.User{Email: "a@example.com", Password: "hash", Name: "Before"}
	require.NoError(t, repo.Create(ctx, u))
	_, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(cache.UserKey(u.ID)))

	full, err := repo.GetWithPassword(ctx, u.ID)
	require.NoError(t, err)
	full.Name = "After"
	require.NoError(t, repo.Update(ctx, full))
	assert.False(t, mr.Exists(cache.UserKey(u.ID)))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)

	require.NoError(t, repo.Touch(ctx, u.ID, time.Now().UTC()))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastActive)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, models.IsNotFound(err))
}

func TestUserRepository_ListAndCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, nil)
	ctx := t.Context()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "admin@example.com", Password: "h", Role: models.RoleAdmin}))
	require.NoError(t, repo.Create(ctx, &models.User{Email: "mod@example.com", Password: "h"}))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "admin@example.com", users[0].Email)

	admins, err := repo.CountByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), admins)
}

func TestSettingRepository_GetSet(t *testing.T) {
	db := newTestDB(t)
	c, mr := newTestCache(t)
	repo := NewSettingRepository(db, c)
	ctx := t.Context()

	_, found, err := repo.Get(ctx, models.SettingAppName)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Set(ctx, models.SettingAppName, "Pitchside TV"))
	assert.False(t, mr.Exists(cache.SettingKey(models.SettingAppName)))

	v, found, err := repo.Get(ctx, models.SettingAppName)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Pitchside TV", v)
	assert.True(t, mr.Exists(cache.SettingKey(models.SettingAppName)))

	require.NoError(t, repo.Set(ctx, models.SettingAppName, "Renamed"))
	v, _, err = repo.Get(ctx, models.SettingAppName)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", v)

	var n int64
	require.NoError(t, db.Model(&models.AppSetting{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
