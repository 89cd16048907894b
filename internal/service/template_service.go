package service

import (
	"context"
	"errors"

	"hirelink/internal/cache"
	"hirelink/internal/models"
	"hirelink/internal/repository"

	"gorm.io/gorm"
)

// TemplateService serves the message template catalog. Reads go through the
// cache; rendering itself stays pure in RenderTemplate.
type TemplateService struct {
	templateRepo repository.TemplateRepository
}

// NewTemplateService returns a new TemplateService.
func NewTemplateService(templateRepo repository.TemplateRepository) *TemplateService {
	return &TemplateService{templateRepo: templateRepo}
}

// ListTemplates returns active templates, optionally filtered by category
// and trigger event, cached per filter pair.
func (s *TemplateService) ListTemplates(ctx context.Context, category, triggerEvent string) ([]*models.MessageTemplate, error) {
	var templates []*models.MessageTemplate
	err := cache.Aside(ctx, cache.TemplateListKey(category, triggerEvent), &templates, cache.TemplateListTTL, func() error {
		var err error
		templates, err = s.templateRepo.ListActive(ctx, category, triggerEvent)
		return err
	})
	return templates, err
}

// GetTemplate returns one template by its stable key.
func (s *TemplateService) GetTemplate(ctx context.Context, templateKey string) (*models.MessageTemplate, error) {
	var tmpl models.MessageTemplate
	err := cache.Aside(ctx, cache.TemplateKey(templateKey), &tmpl, cache.TemplateTTL, func() error {
		found, err := s.templateRepo.GetByKey(ctx, templateKey)
		if err != nil {
			return err
		}
		tmpl = *found
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Template", templateKey)
		}
		return nil, err
	}
	return &tmpl, nil
}

// Preview renders a template by id against caller-supplied variables without
// sending anything.
func (s *TemplateService) Preview(ctx context.Context, templateID string, variables map[string]string) (Rendered, error) {
	tmpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Rendered{}, models.NewNotFoundError("Template", templateID)
		}
		return Rendered{}, err
	}
	return RenderTemplate(tmpl, variables), nil
}
