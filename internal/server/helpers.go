package server

import (
	"errors"

	"hirelink/internal/middleware"
	"hirelink/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// actorParty resolves the authenticated caller to a Party from the locals
// the auth middleware sets. On failure it writes a 401 and returns
// errResponseWritten.
func (s *Server) actorParty(c *fiber.Ctx) (models.Party, error) {
	actorID, _ := c.Locals("actorID").(string)
	role, _ := c.Locals("actorRole").(string)
	if actorID == "" {
		_ = models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authentication required"))
		return models.Party{}, errResponseWritten
	}
	if role == middleware.RoleEmployer {
		return models.EmployerParty(actorID), nil
	}
	return models.UserParty(actorID), nil
}

// requireParam extracts a non-empty route parameter. On failure it writes a
// 400 and returns errResponseWritten.
func requireParam(c *fiber.Ctx, name string) (string, error) {
	v := c.Params(name)
	if v == "" {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Missing "+name))
		return "", errResponseWritten
	}
	return v, nil
}

// handleServiceError writes the proper status for service-layer errors.
func handleServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return models.RespondWithError(c, fiber.StatusInternalServerError, appErr)
	}
	middleware.Logger.ErrorContext(c.Context(), "unhandled service error", "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}
