package server

import (
	"errors"

	"hirelink/internal/models"
	"hirelink/internal/notifications"
	"hirelink/internal/repository"
	"hirelink/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type sendMessageRequest struct {
	ThreadID          string                    `json:"threadId"`
	Recipient         string                    `json:"recipient"`
	ContextType       string                    `json:"contextType"`
	ContextID         *string                   `json:"contextId"`
	Subject           string                    `json:"subject"`
	Content           string                    `json:"content"`
	Priority          string                    `json:"priority"`
	TemplateID        *string                   `json:"templateId"`
	TemplateVariables map[string]string         `json:"templateVariables"`
	Files             []service.AttachmentInput `json:"files"`
}

// SendMessage posts a message into an existing thread, or resolves the
// recipient by contact and opens a new one.
func (s *Server) SendMessage(c *fiber.Ctx) error {
	actor, err := s.actorParty(c)
	if err != nil {
		return nil
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.PostMessageInput{
		ThreadID:          req.ThreadID,
		Subject:           req.Subject,
		Content:           req.Content,
		Priority:          req.Priority,
		TemplateID:        req.TemplateID,
		TemplateVariables: req.TemplateVariables,
		Attachments:       req.Files,
	}
	if actor.Side == models.SideEmployer {
		in.Sender = models.EmployerSender(actor.ID)
	} else {
		in.Sender = models.UserSender(actor.ID)
	}

	if req.ThreadID == "" {
		open, err := s.resolveNewThread(c, actor, req)
		if err != nil {
			return nil
		}
		in.NewThread = open
	}

	msg, thread, err := s.messageService.PostMessage(c.Context(), in)
	if err != nil {
		return handleServiceError(c, err)
	}

	s.publishThreadEvent(c.Context(), thread, notifications.EventNewMessage, map[string]interface{}{
		"thread_id": thread.ID,
		"message":   msg,
		"thread":    threadSummary(thread),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  msg,
		"threadId": thread.ID,
	})
}

// resolveNewThread maps the recipient contact string to the thread tuple for
// a thread-opening message. On failure it writes the response and returns a
// non-nil error.
func (s *Server) resolveNewThread(c *fiber.Ctx, actor models.Party, req sendMessageRequest) (*service.FindOrCreateThreadInput, error) {
	if req.Recipient == "" {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Recipient is required for new messages"))
		return nil, errResponseWritten
	}

	contextType := req.ContextType
	if contextType == "" {
		contextType = models.ContextGeneral
	}
	subject := req.Subject
	if subject == "" {
		subject = "New Message"
	}

	open := &service.FindOrCreateThreadInput{
		ContextType: contextType,
		ContextID:   req.ContextID,
		Subject:     subject,
		OpeningSide: actor.Side,
	}

	if actor.Side == models.SideUser {
		open.UserID = actor.ID
		employer, err := s.identityRepo.FindEmployerByContact(c.Context(), req.Recipient)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				_ = models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewInvalidRecipientError("Recipient not found"))
				return nil, errResponseWritten
			}
			_ = handleServiceError(c, err)
			return nil, errResponseWritten
		}
		open.EmployerID = &employer.ID
		return open, nil
	}

	open.EmployerID = &actor.ID
	user, err := s.identityRepo.FindUserByContact(c.Context(), req.Recipient)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewInvalidRecipientError("Recipient not found"))
			return nil, errResponseWritten
		}
		_ = handleServiceError(c, err)
		return nil, errResponseWritten
	}
	open.UserID = user.ID
	return open, nil
}

// ListThreadMessages returns a thread's messages newest-first.
func (s *Server) ListThreadMessages(c *fiber.Ctx) error {
	actor, err := s.actorParty(c)
	if err != nil {
		return nil
	}
	threadID, err := requireParam(c, "threadId")
	if err != nil {
		return nil
	}

	opts := repository.MessageListOptions{
		Search:   c.Query("search"),
		Priority: c.Query("priority"),
	}
	msgs, err := s.messageService.ListMessages(c.Context(), threadID, actor, opts)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"messages": msgs,
		"count":    len(msgs),
	})
}

type addReactionRequest struct {
	ReactionType string `json:"reactionType"`
}

// AddReaction records the caller's emoji reaction on a message.
func (s *Server) AddReaction(c *fiber.Ctx) error {
	actor, err := s.actorParty(c)
	if err != nil {
		return nil
	}
	messageID, err := requireParam(c, "messageId")
	if err != nil {
		return nil
	}

	var req addReactionRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	reaction, err := s.messageService.AddReaction(c.Context(), messageID, actor, req.ReactionType)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reaction)
}

// SearchRecipients finds parties on the other side the caller can open a
// thread with: users search employers, employers search users.
func (s *Server) SearchRecipients(c *fiber.Ctx) error {
	actor, err := s.actorParty(c)
	if err != nil {
		return nil
	}

	query := c.Query("q")
	if len(query) < 2 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query must be at least 2 characters"))
	}

	type recipient struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Kind  string `json:"kind"`
	}
	results := []recipient{}

	if actor.Side == models.SideUser {
		employers, err := s.identityRepo.SearchEmployers(c.Context(), query, 10)
		if err != nil {
			return handleServiceError(c, err)
		}
		for _, e := range employers {
			results = append(results, recipient{ID: e.ID, Name: e.CompanyName, Email: e.ContactEmail, Kind: "employer"})
		}
	} else {
		users, err := s.identityRepo.SearchUsers(c.Context(), query, 10)
		if err != nil {
			return handleServiceError(c, err)
		}
		for _, u := range users {
			results = append(results, recipient{ID: u.ID, Name: u.Name, Email: u.Email, Kind: "user"})
		}
	}

	return c.JSON(fiber.Map{"recipients": results})
}
