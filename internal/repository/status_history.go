package repository

import (
	"context"

	"hirelink/internal/models"

	"gorm.io/gorm"
)

// StatusHistoryRepository defines the interface for the append-only
// application status audit log.
type StatusHistoryRepository interface {
	Create(ctx context.Context, entry *models.ApplicationStatusHistory) error
	ListByApplication(ctx context.Context, applicationID string) ([]*models.ApplicationStatusHistory, error)
}

type statusHistoryRepository struct {
	db *gorm.DB
}

// NewStatusHistoryRepository creates a new status history repository.
func NewStatusHistoryRepository(db *gorm.DB) StatusHistoryRepository {
	return &statusHistoryRepository{db: db}
}

func (r *statusHistoryRepository) Create(ctx context.Context, entry *models.ApplicationStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *statusHistoryRepository) ListByApplication(ctx context.Context, applicationID string) ([]*models.ApplicationStatusHistory, error) {
	var entries []*models.ApplicationStatusHistory
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
