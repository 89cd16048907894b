package repository

import (
	"context"

	"hirelink/internal/models"

	"gorm.io/gorm"
)

// TemplateRepository defines the interface for message template lookups.
// Templates are read-mostly; there is no mutation path in the core.
type TemplateRepository interface {
	GetByID(ctx context.Context, id string) (*models.MessageTemplate, error)
	GetByKey(ctx context.Context, key string) (*models.MessageTemplate, error)
	GetByTrigger(ctx context.Context, triggerEvent string) (*models.MessageTemplate, error)
	ListActive(ctx context.Context, category, triggerEvent string) ([]*models.MessageTemplate, error)
}

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*models.MessageTemplate, error) {
	var tmpl models.MessageTemplate
	if err := r.db.WithContext(ctx).First(&tmpl, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *templateRepository) GetByKey(ctx context.Context, key string) (*models.MessageTemplate, error) {
	var tmpl models.MessageTemplate
	if err := r.db.WithContext(ctx).First(&tmpl, "template_key = ?", key).Error; err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *templateRepository) GetByTrigger(ctx context.Context, triggerEvent string) (*models.MessageTemplate, error) {
	var tmpl models.MessageTemplate
	err := r.db.WithContext(ctx).
		Where("trigger_event = ? AND is_active = ?", triggerEvent, true).
		First(&tmpl).Error
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *templateRepository) ListActive(ctx context.Context, category, triggerEvent string) ([]*models.MessageTemplate, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if triggerEvent != "" {
		query = query.Where("trigger_event = ?", triggerEvent)
	}

	var templates []*models.MessageTemplate
	err := query.Order("template_name ASC").Find(&templates).Error
	return templates, err
}
