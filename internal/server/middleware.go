package server

import (
	"context"
	"log/slog"
	"strings"

	"pitchside/internal/auth"
	"pitchside/internal/middleware"
	"pitchside/internal/models"

	"github.com/gofiber/fiber/v2"
)

// bearerToken returns the token from the Authorization header, falling back to ?token=.
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Query("token")
}

// AuthRequired returns the authentication middleware. It verifies the token, rejects
// revoked ones and loads the current user into locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Not authorized to access this route"))
		}

		claims, err := s.tokens.Parse(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		if claims.JTI != "" {
			revoked, err := s.cache.IsRevoked(c.UserContext(), claims.JTI)
			if err != nil {
				middleware.Logger.WarnContext(c.UserContext(), "Revocation check failed",
					slog.String("error", err.Error()),
				)
			}
			if revoked {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		user, err := s.userRepo.GetByID(c.UserContext(), claims.UserID)
		if err != nil {
			if models.IsNotFound(err) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("User no longer exists"))
			}
			return err
		}

		c.Locals(localUserID, user.ID)
		c.Locals(localUser, user)
		c.Locals(localClaims, claims)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// Permit returns middleware that rejects users whose role may not perform act on obj.
// Must be placed after AuthRequired.
func (s *Server) Permit(obj, act string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		if user == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Not authorized to access this route"))
		}

		allowed, err := s.enforcer.Allowed(string(user.Role), obj, act)
		if err != nil {
			return models.NewInternalError(err)
		}
		if !allowed {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("User role '"+string(user.Role)+"' is not authorized to access this route"))
		}
		return c.Next()
	}
}

// tokenClaims returns the verified claims stored by AuthRequired.
func tokenClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(localClaims).(*auth.Claims)
	return claims
}
