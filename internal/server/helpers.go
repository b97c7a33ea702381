package server

import (
	"errors"
	"strings"

	"pitchside/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Fiber locals set by AuthRequired.
const (
	localUserID = "userID"
	localUser   = "user"
	localClaims = "claims"
)

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "adId" -> "ad ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if prefix, ok := strings.CutSuffix(param, "Id"); ok {
		return strings.ToLower(prefix) + " ID"
	}
	return param
}

// respondError writes application errors locally and hands anything else to the error handler.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		if appErr.Code == models.CodeInternal {
			return err
		}
		return models.RespondWithAppError(c, appErr)
	}
	return err
}

// parseBody decodes the JSON body into dest. A malformed body is a validation error.
func parseBody(c *fiber.Ctx, dest any) *models.AppError {
	if err := c.BodyParser(dest); err != nil {
		if errors.Is(err, models.ErrInvalidCategory) || strings.Contains(err.Error(), models.ErrInvalidCategory.Error()) {
			return models.NewValidationError("Invalid category")
		}
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// currentUser returns the user loaded by AuthRequired.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}
