package repository

import (
	"context"
	"time"

	"hirelink/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for the delivery queue rows.
// State transitions happen inside GetForUpdate/Save pairs within a service
// transaction so concurrent workers never double-apply an attempt.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	ListPendingDue(ctx context.Context, due time.Time, limit int) ([]*models.Notification, error)
	ListForRecipient(ctx context.Context, recipient models.Party, limit int) ([]*models.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// ListPendingDue returns pending rows whose scheduled time has passed, oldest
// first, for an external scheduler to claim.
func (r *notificationRepository) ListPendingDue(ctx context.Context, due time.Time, limit int) ([]*models.Notification, error) {
	var rows []*models.Notification
	q := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", models.NotificationPending, due).
		Order("scheduled_for ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, recipient models.Party, limit int) ([]*models.Notification, error) {
	q := r.db.WithContext(ctx).Model(&models.Notification{})
	if recipient.Side == models.SideEmployer {
		q = q.Where("recipient_employer_id = ?", recipient.ID)
	} else {
		q = q.Where("recipient_user_id = ?", recipient.ID)
	}
	q = q.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []*models.Notification
	err := q.Find(&rows).Error
	return rows, err
}
