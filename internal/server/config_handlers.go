package server

import (
	"strings"

	"pitchside/internal/models"
	"pitchside/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type appNameRequest struct {
	AppName string `json:"appName" validate:"required,max=100"`
}

// GetAppName handles GET /api/config/app-name
// @Summary Application display name
// @Description Returns the stored name, or APP_NAME when none was saved
// @Tags config
// @Produce json
// @Success 200 {object} object{success=bool,data=object{appName=string}}
// @Router /config/app-name [get]
func (s *Server) GetAppName(c *fiber.Ctx) error {
	name, found, err := s.settingRepo.Get(c.UserContext(), models.SettingAppName)
	if err != nil {
		return respondError(c, err)
	}
	if !found {
		name = s.config.AppName
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"appName": name}})
}

// UpdateAppName handles PUT /api/config/app-name
// @Summary Change the application display name
// @Tags config
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{appName=string} true "New name"
// @Success 200 {object} object{success=bool,data=object{appName=string}}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /config/app-name [put]
func (s *Server) UpdateAppName(c *fiber.Ctx) error {
	var req appNameRequest
	if appErr := parseBody(c, &req); appErr != nil {
		return models.RespondWithAppError(c, appErr)
	}
	req.AppName = strings.TrimSpace(req.AppName)
	if appErr := validation.Struct(&req); appErr != nil {
		return models.RespondWithAppError(c, appErr)
	}

	if err := s.settingRepo.Set(c.UserContext(), models.SettingAppName, req.AppName); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"appName": req.AppName}})
}
