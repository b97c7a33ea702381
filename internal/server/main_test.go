package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"pitchside/internal/auth"
	"pitchside/internal/config"
	"pitchside/internal/database"
	"pitchside/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "server-test-secret-that-is-long-enough"

type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
}

type testEnv struct {
	srv   *Server
	app   *fiber.App
	db    *gorm.DB
	redis *miniredis.Miniredis
	clock fakeClock
}

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

func testConfig() *config.Config {
	return &config.Config{
		Port:                "0",
		Env:                 "test",
		AppName:             "Pitchside",
		JWTSecret:           testSecret,
		JWTExpiresIn:        "1h",
		AllowedOrigins:      "*",
		RegistrationEnabled: true,
	}
}

// newTestEnv builds a server on sqlite and miniredis. mutate may adjust the config first.
func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	clock := clockwork.NewFakeClockAt(time.Now().UTC().Truncate(time.Second))
	db := newTestDB(t)
	srv, err := NewServer(Deps{Config: cfg, DB: db, Redis: rdb, Clock: clock})
	require.NoError(t, err)

	return &testEnv{srv: srv, app: srv.App(), db: db, redis: mr, clock: clock}
}

// createUser stores a user with password "Secret123" and returns it with a valid token.
func (e *testEnv) createUser(t *testing.T, email string, role models.Role) (*models.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("Secret123")
	require.NoError(t, err)

	user := &models.User{Email: email, Password: hash, Role: role, Name: string(role)}
	require.NoError(t, e.db.Create(user).Error)

	token, err := e.srv.tokens.Issue(user)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) seedCategory(t *testing.T, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name}
	require.NoError(t, e.db.Create(&c).Error)
	return c
}

// do sends a request and decodes the JSON response body.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 && resp.Header.Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func dataOf(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", body)
	return data
}

func streamBody(categoryID uint, title string) map[string]any {
	now := time.Now().UTC()
	return map[string]any{
		"title":      title,
		"team1":      map[string]any{"name": "Home"},
		"team2":      map[string]any{"name": "Away"},
		"date":       now.Add(time.Hour).Format(time.RFC3339),
		"streamURL":  "https://example.com/" + title,
		"expiryTime": now.Add(4 * time.Hour).Format(time.RFC3339),
		"category":   categoryID,
	}
}
