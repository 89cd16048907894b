package server

import (
	"github.com/gofiber/fiber/v2"
)

// ListNotifications returns the caller's notifications, newest first.
func (s *Server) ListNotifications(c *fiber.Ctx) error {
	actor, err := s.actorParty(c)
	if err != nil {
		return nil
	}

	limit := c.QueryInt("limit", 50)
	notifs, err := s.notificationService.ListForRecipient(c.Context(), actor, limit)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"notifications": notifs,
		"count":         len(notifs),
	})
}

// CancelNotification withdraws one of the caller's pending notifications.
func (s *Server) CancelNotification(c *fiber.Ctx) error {
	actor, err := s.actorParty(c)
	if err != nil {
		return nil
	}
	id, err := requireParam(c, "id")
	if err != nil {
		return nil
	}

	n, err := s.notificationService.CancelForRecipient(c.Context(), id, actor)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(n)
}
