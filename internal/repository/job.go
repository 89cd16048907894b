package repository

import (
	"context"

	"hirelink/internal/models"

	"gorm.io/gorm"
)

// JobRepository defines the interface for job posting lookups and status
// flips. Full job CRUD lives with an external collaborator; the messaging
// core only needs enough to anchor contexts and transitions.
type JobRepository interface {
	GetByID(ctx context.Context, id string) (*models.Job, error)
	UpdateStatus(ctx context.Context, id, status string, published, archived bool) error
}

// ApplicationRepository defines the interface for application rows.
type ApplicationRepository interface {
	GetByID(ctx context.Context, id string) (*models.Application, error)
	UpdateStatus(ctx context.Context, id, status string) error
	ListByJob(ctx context.Context, jobID string) ([]*models.Application, error)
}

type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository.
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).Preload("Employer").First(&job, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) UpdateStatus(ctx context.Context, id, status string, published, archived bool) error {
	return r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"job_status":   status,
			"is_published": published,
			"is_archived":  archived,
		}).Error
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Job").
		Preload("Job.Employer").
		First(&app, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *applicationRepository) ListByJob(ctx context.Context, jobID string) ([]*models.Application, error) {
	var apps []*models.Application
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Preload("User").
		Order("applied_at DESC").
		Find(&apps).Error
	return apps, err
}
