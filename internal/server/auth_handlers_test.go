package server

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pitchside/internal/config"
	"pitchside/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetWithPassword(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func TestLogin_ThenMe(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "mod@example.com", models.RoleModerator)

	status, body := env.do(t, fiber.MethodPost, "/api/auth/login",
		map[string]string{"email": "MOD@example.com", "password": "Secret123"}, "")
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, true, body["success"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user := dataOf(t, body)
	assert.Equal(t, "mod@example.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotNil(t, user["lastActive"])

	status, body = env.do(t, fiber.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, fiber.StatusOK, status, body)
	me := dataOf(t, body)
	assert.Equal(t, "mod@example.com", me["email"])
	assert.Equal(t, "moderator", me["role"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "mod@example.com", models.RoleModerator)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"wrong password", map[string]string{"email": "mod@example.com", "password": "Wrong1234"}, fiber.StatusUnauthorized},
		{"unknown email", map[string]string{"email": "nobody@example.com", "password": "Secret123"}, fiber.StatusUnauthorized},
		{"missing password", map[string]string{"email": "mod@example.com"}, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, fiber.MethodPost, "/api/auth/login", tt.body, "")
			assert.Equal(t, tt.want, status)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestAuthRequired_RejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "mod@example.com", models.RoleModerator)

	status, body := env.do(t, fiber.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Not authorized to access this route", body["message"])

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	status, _ = env.do(t, fiber.MethodGet, "/api/auth/me", nil, tampered)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	env.clock.Advance(2 * time.Hour)
	status, body = env.do(t, fiber.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid or expired token", body["message"])
}

func TestAuthRequired_DeletedUser(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "gone@example.com", models.RoleModerator)
	require.NoError(t, env.db.Delete(&models.User{}, user.ID).Error)

	status, body := env.do(t, fiber.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "User no longer exists", body["message"])
}

func TestLogout_RevokesToken(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "mod@example.com", models.RoleModerator)

	status, _ := env.do(t, fiber.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, fiber.StatusOK, status)

	status, body := env.do(t, fiber.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Token has been revoked", body["message"])
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, fiber.MethodPost, "/api/auth/register",
		map[string]string{"name": "New Mod", "email": "new@example.com", "password": "Secret123"}, "")
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "moderator", dataOf(t, body)["role"])

	status, body = env.do(t, fiber.MethodPost, "/api/auth/register",
		map[string]string{"email": "new@example.com", "password": "Secret123"}, "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "User already exists", body["message"])

	status, body = env.do(t, fiber.MethodPost, "/api/auth/register",
		map[string]string{"email": "weak@example.com", "password": "short"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "password must be at least 8 characters long", body["message"])

	status, body = env.do(t, fiber.MethodPost, "/api/auth/register",
		map[string]string{"email": "not-an-email", "password": "Secret123"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "email must be a valid email address", body["message"])
}

func TestRegister_Disabled(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.RegistrationEnabled = false })

	status, body := env.do(t, fiber.MethodPost, "/api/auth/register",
		map[string]string{"email": "new@example.com", "password": "Secret123"}, "")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Registration is disabled", body["message"])
}

func TestUpdatePassword_IssuesFreshToken(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "mod@example.com", models.RoleModerator)

	status, _ := env.do(t, fiber.MethodPut, "/api/auth/updatepassword",
		map[string]string{"currentPassword": "nope", "newPassword": "Changed123"}, token)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := env.do(t, fiber.MethodPut, "/api/auth/updatepassword",
		map[string]string{"currentPassword": "Secret123", "newPassword": "Changed123"}, token)
	require.Equal(t, fiber.StatusOK, status, body)
	fresh, _ := body["token"].(string)
	require.NotEmpty(t, fresh)

	status, _ = env.do(t, fiber.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = env.do(t, fiber.MethodGet, "/api/auth/me", nil, fresh)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = env.do(t, fiber.MethodPost, "/api/auth/login",
		map[string]string{"email": "mod@example.com", "password": "Changed123"}, "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "mod@example.com", models.RoleModerator)
	env.createUser(t, "taken@example.com", models.RoleModerator)

	status, body := env.do(t, fiber.MethodPut, "/api/auth/profile",
		map[string]string{"name": "Renamed"}, token)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "Renamed", dataOf(t, body)["name"])
	assert.Equal(t, "mod@example.com", dataOf(t, body)["email"])

	status, body = env.do(t, fiber.MethodPut, "/api/auth/profile",
		map[string]string{"email": "taken@example.com"}, token)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Email is already in use", body["message"])

	status, body = env.do(t, fiber.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Renamed", dataOf(t, body)["name"])
}

func TestLogin_RepositoryFailureIsGeneric(t *testing.T) {
	env := newTestEnv(t)
	mockRepo := new(MockUserRepository)
	env.srv.userRepo = mockRepo
	mockRepo.On("GetByEmail", mock.Anything, "mod@example.com").
		Return(nil, models.NewInternalError(errors.New("connection reset")))

	status, body := env.do(t, fiber.MethodPost, "/api/auth/login",
		map[string]string{"email": "mod@example.com", "password": "Secret123"}, "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Server Error", body["message"])
	mockRepo.AssertExpectations(t)
}

func TestListUsers_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.createUser(t, "admin@example.com", models.RoleAdmin)
	_, modToken := env.createUser(t, "mod@example.com", models.RoleModerator)

	status, _ := env.do(t, fiber.MethodGet, "/api/admin/users", nil, modToken)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := env.do(t, fiber.MethodGet, "/api/admin/users", nil, adminToken)
	require.Equal(t, fiber.StatusOK, status)
	users, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, users, 2)
}
