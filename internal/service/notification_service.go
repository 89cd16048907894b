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

// AttemptOutcome classifies one delivery attempt against a pending
// notification.
type AttemptOutcome string

const (
	AttemptSuccess          AttemptOutcome = "success"
	AttemptTransientFailure AttemptOutcome = "transient_failure"
	AttemptPermanentFailure AttemptOutcome = "permanent_failure"
)

// NotificationService owns the delivery queue state machine. Transitions only
// move forward: pending -> {sent, cancelled}, sent -> {delivered, failed},
// pending -> failed once the attempt budget is spent. Terminal states absorb
// every further transition request.
type NotificationService struct {
	db               *gorm.DB
	notificationRepo repository.NotificationRepository
}

// NewNotificationService returns a new NotificationService.
func NewNotificationService(db *gorm.DB, notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{db: db, notificationRepo: notificationRepo}
}

// EnqueueInput describes a new delivery task.
type EnqueueInput struct {
	Recipient    models.Party
	Channel      string
	Type         string
	Title        string
	Content      string
	MessageID    *string
	ThreadID     *string
	ScheduledFor time.Time
	MaxAttempts  int
}

// Enqueue creates a pending notification. Channel defaults to in_app,
// ScheduledFor to now, MaxAttempts to the default budget.
func (s *NotificationService) Enqueue(ctx context.Context, in EnqueueInput) (*models.Notification, error) {
	if !in.Recipient.Valid() {
		return nil, models.NewInvalidRecipientError("Notification requires exactly one recipient party")
	}
	if in.Channel != "" && !models.ValidChannel(in.Channel) {
		return nil, models.NewValidationError("Unknown notification channel: " + in.Channel)
	}
	if in.Type == "" {
		return nil, models.NewValidationError("Notification type is required")
	}
	if in.MaxAttempts < 0 {
		return nil, models.NewValidationError("Max attempts cannot be negative")
	}

	n := &models.Notification{
		Channel:      in.Channel,
		Type:         in.Type,
		Title:        in.Title,
		Content:      in.Content,
		MessageID:    in.MessageID,
		ThreadID:     in.ThreadID,
		Status:       models.NotificationPending,
		MaxAttempts:  in.MaxAttempts,
		ScheduledFor: in.ScheduledFor,
	}
	n.RecipientUserID, n.RecipientEmployerID = in.Recipient.Columns()
	if n.Channel == "" {
		n.Channel = models.ChannelInApp
	}
	if n.MaxAttempts == 0 {
		n.MaxAttempts = models.DefaultMaxAttempts
	}
	if n.ScheduledFor.IsZero() {
		n.ScheduledFor = time.Now().UTC()
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// RecordAttempt applies one delivery attempt to a pending notification.
// Success moves it to sent; a transient failure burns one attempt and keeps
// it pending until the budget runs out, at which point it fails; a permanent
// failure fails it immediately.
func (s *NotificationService) RecordAttempt(ctx context.Context, id string, outcome AttemptOutcome, attemptErr string) (*models.Notification, error) {
	return s.transition(ctx, id, func(n *models.Notification) error {
		if n.Status != models.NotificationPending {
			return models.NewInvalidTransitionError("Delivery attempts only apply to pending notifications (current: " + n.Status + ")")
		}

		n.Attempts++
		now := time.Now().UTC()
		switch outcome {
		case AttemptSuccess:
			n.Status = models.NotificationSent
			n.SentAt = &now
			n.LastError = ""
		case AttemptTransientFailure:
			n.LastError = attemptErr
			if n.Attempts >= n.MaxAttempts {
				n.Status = models.NotificationFailed
			}
		case AttemptPermanentFailure:
			n.Status = models.NotificationFailed
			n.LastError = attemptErr
		default:
			return models.NewValidationError("Unknown attempt outcome: " + string(outcome))
		}

		middleware.NotificationAttempts.WithLabelValues(string(outcome)).Inc()
		return nil
	})
}

// ConfirmDelivery moves a sent notification to delivered.
func (s *NotificationService) ConfirmDelivery(ctx context.Context, id string) (*models.Notification, error) {
	return s.transition(ctx, id, func(n *models.Notification) error {
		if n.Status != models.NotificationSent {
			return models.NewInvalidTransitionError("Only sent notifications can be confirmed delivered (current: " + n.Status + ")")
		}
		now := time.Now().UTC()
		n.Status = models.NotificationDelivered
		n.DeliveredAt = &now
		return nil
	})
}

// ReportDeliveryFailure moves a sent notification to failed, for channels
// that report post-send bounces.
func (s *NotificationService) ReportDeliveryFailure(ctx context.Context, id, reason string) (*models.Notification, error) {
	return s.transition(ctx, id, func(n *models.Notification) error {
		if n.Status != models.NotificationSent {
			return models.NewInvalidTransitionError("Only sent notifications can report a delivery failure (current: " + n.Status + ")")
		}
		n.Status = models.NotificationFailed
		n.LastError = reason
		return nil
	})
}

// Cancel withdraws a pending notification. Anything past pending is already
// in flight or settled and stays put.
func (s *NotificationService) Cancel(ctx context.Context, id string) (*models.Notification, error) {
	return s.transition(ctx, id, func(n *models.Notification) error {
		if n.Status != models.NotificationPending {
			return models.NewInvalidTransitionError("Only pending notifications can be cancelled (current: " + n.Status + ")")
		}
		n.Status = models.NotificationCancelled
		return nil
	})
}

// CancelForRecipient cancels a pending notification after checking it is
// addressed to the caller. A foreign id reads as missing so ids cannot be
// probed.
func (s *NotificationService) CancelForRecipient(ctx context.Context, id string, recipient models.Party) (*models.Notification, error) {
	n, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Notification", id)
		}
		return nil, err
	}
	owner, ok := n.Recipient()
	if !ok || owner != recipient {
		return nil, models.NewNotFoundError("Notification", id)
	}
	return s.Cancel(ctx, id)
}

// ListPendingDue returns pending notifications scheduled at or before due,
// oldest schedule first, for an external scheduler to drain.
func (s *NotificationService) ListPendingDue(ctx context.Context, due time.Time, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.notificationRepo.ListPendingDue(ctx, due, limit)
}

// ListForRecipient returns a party's notifications, newest first.
func (s *NotificationService) ListForRecipient(ctx context.Context, recipient models.Party, limit int) ([]*models.Notification, error) {
	if !recipient.Valid() {
		return nil, models.NewInvalidRecipientError("Notification listing requires exactly one recipient party")
	}
	if limit <= 0 {
		limit = 50
	}
	return s.notificationRepo.ListForRecipient(ctx, recipient, limit)
}

// transition loads, mutates, and writes back one notification. The write is
// guarded on the status the load observed: under read-committed two workers
// can both read the same row, so the loser's UPDATE matches zero rows and
// the transition fails instead of silently overwriting the winner's.
func (s *NotificationService) transition(ctx context.Context, id string, mutate func(*models.Notification) error) (*models.Notification, error) {
	var n *models.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := repository.NewNotificationRepository(tx).GetByID(tx.Statement.Context, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Notification", id)
			}
			return err
		}
		n = loaded

		before := n.Status
		beforeAttempts := n.Attempts
		if err := mutate(n); err != nil {
			return err
		}

		// Attempts are part of the guard: two workers draining the same
		// pending row would otherwise collapse their increments into one.
		res := tx.Model(&models.Notification{}).
			Where("id = ? AND status = ? AND attempts = ?", n.ID, before, beforeAttempts).
			Select("*").
			Updates(n)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewInvalidTransitionError("Notification changed concurrently (was: " + before + ")")
		}
		if n.Terminal() && before != n.Status {
			middleware.NotificationTerminal.WithLabelValues(n.Status).Inc()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}
