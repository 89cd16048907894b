package server

import (
	"hirelink/internal/models"
	"hirelink/internal/notifications"
	"hirelink/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateJobStatusRequest struct {
	Status string `json:"status"`
}

// UpdateJobStatus flips a job between draft, published, and closed. Only the
// owning employer may change it.
func (s *Server) UpdateJobStatus(c *fiber.Ctx) error {
	actor, err := s.actorParty(c)
	if err != nil {
		return nil
	}
	jobID, err := requireParam(c, "jobId")
	if err != nil {
		return nil
	}

	var req updateJobStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Job ID and status are required"))
	}

	job, err := s.jobRepo.GetByID(c.Context(), jobID)
	if err != nil {
		return handleServiceError(c, models.NewNotFoundError("Job", jobID))
	}
	if job.EmployerID != actor.ID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Only the owning employer can change this job"))
	}

	updated, err := s.statusService.UpdateJobStatus(c.Context(), jobID, req.Status)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Job status updated successfully",
		"job":     updated,
	})
}

type recordStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
	Notify bool   `json:"notify"`
}

// RecordApplicationStatus transitions an application's status, appends the
// audit row, and optionally notifies the applicant through a templated
// system message.
func (s *Server) RecordApplicationStatus(c *fiber.Ctx) error {
	actor, err := s.actorParty(c)
	if err != nil {
		return nil
	}
	applicationID, err := requireParam(c, "applicationId")
	if err != nil {
		return nil
	}

	var req recordStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Status is required"))
	}

	app, err := s.applicationRepo.GetByID(c.Context(), applicationID)
	if err != nil {
		return handleServiceError(c, models.NewNotFoundError("Application", applicationID))
	}
	if app.Job == nil || app.Job.EmployerID != actor.ID {
		return handleServiceError(c, models.NewNotFoundError("Application", applicationID))
	}

	entry, err := s.statusService.RecordTransition(c.Context(), service.RecordTransitionInput{
		ApplicationID: applicationID,
		ToStatus:      req.Status,
		ChangedBy:     actor.ID,
		ChangedByType: string(actor.Side),
		Reason:        req.Reason,
		Notes:         req.Notes,
		Notify:        req.Notify,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	if entry.MessageTriggered {
		s.publishPartyEvent(c.Context(), models.UserParty(app.UserID), notifications.EventNotification, map[string]interface{}{
			"application_id": applicationID,
			"to_status":      entry.ToStatus,
			"message_id":     entry.TriggeredMessageID,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

// GetStatusHistory returns an application's transitions oldest-first. The
// applicant and the job's employer can both read it.
func (s *Server) GetStatusHistory(c *fiber.Ctx) error {
	actor, err := s.actorParty(c)
	if err != nil {
		return nil
	}
	applicationID, err := requireParam(c, "applicationId")
	if err != nil {
		return nil
	}

	app, err := s.applicationRepo.GetByID(c.Context(), applicationID)
	if err != nil {
		return handleServiceError(c, models.NewNotFoundError("Application", applicationID))
	}

	allowed := (actor.Side == models.SideUser && app.UserID == actor.ID) ||
		(actor.Side == models.SideEmployer && app.Job != nil && app.Job.EmployerID == actor.ID)
	if !allowed {
		return handleServiceError(c, models.NewNotFoundError("Application", applicationID))
	}

	history, err := s.statusService.History(c.Context(), applicationID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"history": history,
		"count":   len(history),
	})
}
