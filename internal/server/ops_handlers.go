package server

import (
	"context"
	"time"

	"pitchside/internal/models"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck handles GET /api/health
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} object{status=string}
// @Router /health [get]
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "OK"})
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   s.clock.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.cache.Enabled() {
		if err := s.cache.Ping(ctx); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis backs token revocation and rate limits, so it is required for readiness.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": s.clock.Now(),
	})
}

// GetSweeperStatus handles GET /api/admin/sweeper
// @Summary Content sweeper status
// @Description Last run, affected rows, last error and next run of every expiry job
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,data=object{enabled=bool,jobs=[]sweeper.JobStatus}}
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/sweeper [get]
func (s *Server) GetSweeperStatus(c *fiber.Ctx) error {
	if s.sweeper == nil {
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"enabled": false, "jobs": []any{}}})
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"enabled": true, "jobs": s.sweeper.Status()}})
}

// RunSweeper handles POST /api/admin/sweeper/run
// @Summary Run every expiry job now
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,data=[]sweeper.JobStatus}
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/sweeper/run [post]
func (s *Server) RunSweeper(c *fiber.Ctx) error {
	if s.sweeper == nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Sweeper is disabled", nil))
	}
	return c.JSON(fiber.Map{"success": true, "data": s.sweeper.RunOnce(c.UserContext())})
}
