package service

import (
	"context"
	"errors"
	"time"

	"hirelink/internal/middleware"
	"hirelink/internal/models"
	"hirelink/internal/repository"

	"gorm.io/gorm"
)

var validApplicationStatuses = map[string]bool{
	models.ApplicationStatusPending:   true,
	models.ApplicationStatusReviewing: true,
	models.ApplicationStatusAccepted:  true,
	models.ApplicationStatusRejected:  true,
	models.ApplicationStatusWithdrawn: true,
}

// StatusService records application status transitions as an append-only
// audit trail and, when asked, turns a transition into a templated system
// message plus an in-app notification for the applicant.
type StatusService struct {
	db                  *gorm.DB
	applicationRepo     repository.ApplicationRepository
	jobRepo             repository.JobRepository
	statusHistoryRepo   repository.StatusHistoryRepository
	templateRepo        repository.TemplateRepository
	messageService      *MessageService
	notificationService *NotificationService
}

// NewStatusService returns a new StatusService.
func NewStatusService(
	db *gorm.DB,
	applicationRepo repository.ApplicationRepository,
	jobRepo repository.JobRepository,
	statusHistoryRepo repository.StatusHistoryRepository,
	templateRepo repository.TemplateRepository,
	messageService *MessageService,
	notificationService *NotificationService,
) *StatusService {
	return &StatusService{
		db:                  db,
		applicationRepo:     applicationRepo,
		jobRepo:             jobRepo,
		statusHistoryRepo:   statusHistoryRepo,
		templateRepo:        templateRepo,
		messageService:      messageService,
		notificationService: notificationService,
	}
}

// RecordTransitionInput describes one application status change.
type RecordTransitionInput struct {
	ApplicationID string
	ToStatus      string
	ChangedBy     string
	ChangedByType string
	Reason        string
	Notes         string
	// Notify sends the applicant a templated system message and queues an
	// in-app notification when a template matches the transition's trigger.
	Notify bool
}

// RecordTransition updates the application's status and appends the audit
// row in one transaction. Notification side effects run after commit and
// never roll the transition back.
func (s *StatusService) RecordTransition(ctx context.Context, in RecordTransitionInput) (*models.ApplicationStatusHistory, error) {
	if !validApplicationStatuses[in.ToStatus] {
		return nil, models.NewValidationError("Unknown application status: " + in.ToStatus)
	}
	if in.ChangedBy == "" || in.ChangedByType == "" {
		return nil, models.NewValidationError("Transition requires the changing actor and actor type")
	}

	app, err := s.applicationRepo.GetByID(ctx, in.ApplicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Application", in.ApplicationID)
		}
		return nil, err
	}

	entry := &models.ApplicationStatusHistory{
		ApplicationID: app.ID,
		FromStatus:    app.Status,
		ToStatus:      in.ToStatus,
		ChangedBy:     in.ChangedBy,
		ChangedByType: in.ChangedByType,
		Reason:        in.Reason,
		Notes:         in.Notes,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txApps := repository.NewApplicationRepository(tx)
		if err := txApps.UpdateStatus(tx.Statement.Context, app.ID, in.ToStatus); err != nil {
			return err
		}
		if in.ToStatus == models.ApplicationStatusReviewing && app.ReviewedAt == nil {
			now := time.Now().UTC()
			if err := tx.Model(&models.Application{}).Where("id = ?", app.ID).
				Update("reviewed_at", now).Error; err != nil {
				return err
			}
		}
		return repository.NewStatusHistoryRepository(tx).Create(tx.Statement.Context, entry)
	})
	if err != nil {
		return nil, err
	}

	if in.Notify {
		s.notifyTransition(ctx, app, entry)
	}
	return entry, nil
}

// History returns the application's transitions oldest-first.
func (s *StatusService) History(ctx context.Context, applicationID string) ([]*models.ApplicationStatusHistory, error) {
	if _, err := s.applicationRepo.GetByID(ctx, applicationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Application", applicationID)
		}
		return nil, err
	}
	return s.statusHistoryRepo.ListByApplication(ctx, applicationID)
}

// notifyTransition is best effort: a missing template for the trigger event
// means the transition simply goes unannounced, and delivery problems are
// logged rather than surfaced.
func (s *StatusService) notifyTransition(ctx context.Context, app *models.Application, entry *models.ApplicationStatusHistory) {
	tmpl, err := s.templateRepo.GetByTrigger(ctx, "application_"+entry.ToStatus)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			middleware.Logger.WarnContext(ctx, "status transition template lookup failed",
				"application_id", app.ID, "to_status", entry.ToStatus, "error", err)
		}
		return
	}

	vars := map[string]string{
		"applicantName": applicantName(app),
		"status":        entry.ToStatus,
	}
	if app.Job != nil {
		vars["jobTitle"] = app.Job.Title
		if app.Job.Employer != nil {
			vars["companyName"] = app.Job.Employer.CompanyName
		}
	}
	rendered := RenderTemplate(tmpl, vars)

	msg, thread, err := s.messageService.PostMessage(ctx, PostMessageInput{
		NewThread: &FindOrCreateThreadInput{
			UserID:      app.UserID,
			ContextType: models.ContextApplication,
			ContextID:   &app.ID,
			Subject:     rendered.Subject,
		},
		Sender:            models.SystemSender(),
		RecipientSide:     models.SideUser,
		Subject:           rendered.Subject,
		Content:           rendered.Content,
		TemplateID:        &tmpl.ID,
		TemplateVariables: vars,
	})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "status transition message failed",
			"application_id", app.ID, "to_status", entry.ToStatus, "error", err)
		return
	}

	entry.MessageTriggered = true
	entry.TriggeredMessageID = &msg.ID
	if err := s.db.WithContext(ctx).Model(&models.ApplicationStatusHistory{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"message_triggered":    true,
			"triggered_message_id": msg.ID,
		}).Error; err != nil {
		middleware.Logger.WarnContext(ctx, "status history back-reference update failed",
			"history_id", entry.ID, "error", err)
	}

	if _, err := s.notificationService.Enqueue(ctx, EnqueueInput{
		Recipient: models.UserParty(app.UserID),
		Channel:   models.ChannelInApp,
		Type:      "application_status",
		Title:     rendered.Subject,
		Content:   PreviewText(rendered.Content),
		MessageID: &msg.ID,
		ThreadID:  &thread.ID,
	}); err != nil {
		middleware.Logger.WarnContext(ctx, "status transition notification enqueue failed",
			"application_id", app.ID, "error", err)
	}
}

func applicantName(app *models.Application) string {
	if app.User != nil {
		return app.User.Name
	}
	return ""
}

// UpdateJobStatus flips a job between draft, published, and closed, keeping
// the boolean flags consistent with the status.
func (s *StatusService) UpdateJobStatus(ctx context.Context, jobID, status string) (*models.Job, error) {
	switch status {
	case models.JobStatusDraft, models.JobStatusPublished, models.JobStatusClosed:
	default:
		return nil, models.NewValidationError("Invalid job status: " + status)
	}

	if _, err := s.jobRepo.GetByID(ctx, jobID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Job", jobID)
		}
		return nil, err
	}

	published := status == models.JobStatusPublished
	archived := status == models.JobStatusClosed
	if err := s.jobRepo.UpdateStatus(ctx, jobID, status, published, archived); err != nil {
		return nil, err
	}
	return s.jobRepo.GetByID(ctx, jobID)
}
