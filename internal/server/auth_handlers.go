package server

import (
	"log/slog"
	"strings"

	"pitchside/internal/auth"
	"pitchside/internal/middleware"
	"pitchside/internal/models"
	"pitchside/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// Register handles POST /api/auth/register
// @Summary Register a dashboard account
// @Description Creates a moderator account. Disabled when REGISTRATION_ENABLED is false.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{name=string,email=string,password=string} true "Registration request"
// @Success 201 {object} object{success=bool,token=string,data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	if !s.config.RegistrationEnabled {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Registration is disabled"))
	}

	var req registerRequest
	if appErr := parseBody(c, &req); appErr != nil {
		return models.RespondWithAppError(c, appErr)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if appErr := validation.Struct(&req); appErr != nil {
		return models.RespondWithAppError(c, appErr)
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	existing, err := s.userRepo.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		return respondError(c, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("User already exists", nil))
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.NewInternalError(err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: hashed,
		Role:     models.RoleModerator,
	}
	if err := s.userRepo.Create(c.UserContext(), user); err != nil {
		return respondError(c, err)
	}

	return s.respondWithToken(c, fiber.StatusCreated, user)
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Authenticates a dashboard user and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} object{success=bool,token=string,data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if appErr := parseBody(c, &req); appErr != nil {
		return models.RespondWithAppError(c, appErr)
	}
	if appErr := validation.Struct(&req); appErr != nil {
		return models.RespondWithAppError(c, appErr)
	}

	user, err := s.userRepo.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		return respondError(c, err)
	}
	if user == nil || !auth.CheckPassword(user.Password, req.Password) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	now := s.clock.Now()
	if err := s.userRepo.Touch(c.UserContext(), user.ID, now); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "Failed to record last activity",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()),
		)
	} else {
		user.LastActive = &now
	}

	return s.respondWithToken(c, fiber.StatusOK, user)
}

// GetMe handles GET /api/auth/me
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,data=models.User}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": currentUser(c)})
}

// UpdateProfile handles PUT /api/auth/profile
// @Summary Update the current user's name or email
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,email=string} true "Profile fields"
// @Success 200 {object} object{success=bool,data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/profile [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if appErr := parseBody(c, &req); appErr != nil {
		return models.RespondWithAppError(c, appErr)
	}
	if req.Email != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &trimmed
	}
	if appErr := validation.Struct(&req); appErr != nil {
		return models.RespondWithAppError(c, appErr)
	}

	user, err := s.userRepo.GetWithPassword(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil && *req.Email != "" {
		user.Email = *req.Email
	}

	if err := s.userRepo.Update(c.UserContext(), user); err != nil {
		return respondError(c, err)
	}
	user.Password = ""
	return c.JSON(fiber.Map{"success": true, "data": user})
}

// UpdatePassword handles PUT /api/auth/updatepassword
// @Summary Change the current user's password
// @Description Verifies the current password, stores the new one, revokes the presented token and returns a fresh one
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{currentPassword=string,newPassword=string} true "Passwords"
// @Success 200 {object} object{success=bool,token=string,data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/updatepassword [put]
func (s *Server) UpdatePassword(c *fiber.Ctx) error {
	var req updatePasswordRequest
	if appErr := parseBody(c, &req); appErr != nil {
		return models.RespondWithAppError(c, appErr)
	}
	if appErr := validation.Struct(&req); appErr != nil {
		return models.RespondWithAppError(c, appErr)
	}

	user, err := s.userRepo.GetWithPassword(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Current password is incorrect"))
	}
	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = hashed
	if err := s.userRepo.Update(c.UserContext(), user); err != nil {
		return respondError(c, err)
	}

	s.revokeCurrentToken(c)
	return s.respondWithToken(c, fiber.StatusOK, user)
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Description Revokes the presented token until it would have expired
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	s.revokeCurrentToken(c)
	return c.JSON(fiber.Map{"success": true, "message": "Logged out successfully"})
}

// ListUsers handles GET /api/admin/users
// @Summary List dashboard users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,data=[]models.User}
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	users, err := s.userRepo.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": users})
}

// revokeCurrentToken blacklists the presented token's jti for the rest of its lifetime.
func (s *Server) revokeCurrentToken(c *fiber.Ctx) {
	claims := tokenClaims(c)
	if claims == nil || claims.JTI == "" {
		return
	}
	ttl := claims.ExpiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return
	}
	if err := s.cache.Revoke(c.UserContext(), claims.JTI, ttl); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "Failed to revoke token",
			slog.String("error", err.Error()),
		)
	}
}

func (s *Server) respondWithToken(c *fiber.Ctx, status int, user *models.User) error {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = ""
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"token":   token,
		"data":    user,
	})
}
