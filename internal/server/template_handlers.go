package server

import (
	"hirelink/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListTemplates returns the active template catalog, optionally filtered by
// category and trigger event. Served cache-aside; templates change rarely.
func (s *Server) ListTemplates(c *fiber.Ctx) error {
	if _, err := s.actorParty(c); err != nil {
		return nil
	}

	templates, err := s.templateService.ListTemplates(c.Context(), c.Query("category"), c.Query("trigger"))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"templates": templates,
		"count":     len(templates),
	})
}

// GetTemplate returns one template by its stable key.
func (s *Server) GetTemplate(c *fiber.Ctx) error {
	if _, err := s.actorParty(c); err != nil {
		return nil
	}
	key, err := requireParam(c, "templateKey")
	if err != nil {
		return nil
	}

	tmpl, err := s.templateService.GetTemplate(c.Context(), key)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(tmpl)
}

type previewTemplateRequest struct {
	Variables map[string]string `json:"variables"`
}

// PreviewTemplate renders a template against caller-supplied variables
// without sending anything.
func (s *Server) PreviewTemplate(c *fiber.Ctx) error {
	if _, err := s.actorParty(c); err != nil {
		return nil
	}
	templateID, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	var req previewTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	rendered, err := s.templateService.Preview(c.Context(), templateID, req.Variables)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(rendered)
}
