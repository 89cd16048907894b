package server

import (
	"hirelink/internal/models"
	"hirelink/internal/notifications"
	"hirelink/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// ListThreads returns the caller's threads, filtered and ordered by most
// recent activity.
func (s *Server) ListThreads(c *fiber.Ctx) error {
	actor, err := s.actorParty(c)
	if err != nil {
		return nil
	}

	q := repository.ThreadListQuery{
		Filter:      repository.ThreadFilter(c.Query("filter", string(repository.ThreadFilterAll))),
		ContextType: c.Query("context"),
		Search:      c.Query("search"),
	}
	switch q.Filter {
	case repository.ThreadFilterAll, repository.ThreadFilterUnread, repository.ThreadFilterArchived:
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid filter: "+string(q.Filter)))
	}

	threads, err := s.threadService.ListThreads(c.Context(), actor, q)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"threads": threads,
		"count":   len(threads),
	})
}

// GetThread returns one thread the caller owns a side of.
func (s *Server) GetThread(c *fiber.Ctx) error {
	actor, err := s.actorParty(c)
	if err != nil {
		return nil
	}
	threadID, err := requireParam(c, "threadId")
	if err != nil {
		return nil
	}

	thread, err := s.threadService.GetThreadForParty(c.Context(), threadID, actor)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(thread)
}

// UnreadCount returns the caller's total unread messages across threads.
func (s *Server) UnreadCount(c *fiber.Ctx) error {
	actor, err := s.actorParty(c)
	if err != nil {
		return nil
	}
	total, err := s.threadService.UnreadCount(c.Context(), actor)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(fiber.Map{"unread_count": total})
}

// MarkThreadRead marks every message addressed to the caller as read and
// zeroes the thread's counter for their side.
func (s *Server) MarkThreadRead(c *fiber.Ctx) error {
	actor, err := s.actorParty(c)
	if err != nil {
		return nil
	}
	threadID, err := requireParam(c, "threadId")
	if err != nil {
		return nil
	}

	marked, err := s.messageService.MarkThreadRead(c.Context(), threadID, actor)
	if err != nil {
		return handleServiceError(c, err)
	}

	if thread, terr := s.threadService.GetThreadForParty(c.Context(), threadID, actor); terr == nil {
		s.publishThreadEvent(c.Context(), thread, notifications.EventMessageRead, map[string]interface{}{
			"thread_id":  threadID,
			"read_by":    string(actor.Side),
			"read_count": marked,
		})
	}

	return c.JSON(fiber.Map{
		"message":      "Thread marked as read",
		"marked_count": marked,
	})
}

// ArchiveThread hides a thread from the caller's default listing.
func (s *Server) ArchiveThread(c *fiber.Ctx) error {
	actor, err := s.actorParty(c)
	if err != nil {
		return nil
	}
	threadID, err := requireParam(c, "threadId")
	if err != nil {
		return nil
	}

	if err := s.threadService.Archive(c.Context(), threadID, actor); err != nil {
		return handleServiceError(c, err)
	}

	if thread, terr := s.threadService.GetThreadForParty(c.Context(), threadID, actor); terr == nil {
		s.publishThreadEvent(c.Context(), thread, notifications.EventThreadUpdated, threadSummary(thread))
	}

	return c.JSON(fiber.Map{"message": "Thread archived"})
}
