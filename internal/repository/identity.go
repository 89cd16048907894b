package repository

import (
	"context"

	"hirelink/internal/models"

	"gorm.io/gorm"
)

// IdentityRepository exposes the read-only identity lookups the messaging
// core needs: display info and recipient resolution. Account management is
// owned by the identity collaborator.
type IdentityRepository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetEmployer(ctx context.Context, id string) (*models.Employer, error)
	FindEmployerByContact(ctx context.Context, emailOrCompany string) (*models.Employer, error)
	FindUserByContact(ctx context.Context, emailOrName string) (*models.User, error)
	SearchEmployers(ctx context.Context, query string, limit int) ([]*models.Employer, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]*models.User, error)
}

type identityRepository struct {
	db *gorm.DB
}

// NewIdentityRepository creates a new identity repository.
func NewIdentityRepository(db *gorm.DB) IdentityRepository {
	return &identityRepository{db: db}
}

func (r *identityRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *identityRepository) GetEmployer(ctx context.Context, id string) (*models.Employer, error) {
	var employer models.Employer
	if err := r.db.WithContext(ctx).First(&employer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &employer, nil
}

func (r *identityRepository) FindEmployerByContact(ctx context.Context, emailOrCompany string) (*models.Employer, error) {
	var employer models.Employer
	err := r.db.WithContext(ctx).
		Where("contact_email = ? OR company_name = ?", emailOrCompany, emailOrCompany).
		First(&employer).Error
	if err != nil {
		return nil, err
	}
	return &employer, nil
}

func (r *identityRepository) SearchEmployers(ctx context.Context, query string, limit int) ([]*models.Employer, error) {
	var employers []*models.Employer
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("company_name LIKE ? OR contact_email LIKE ?", pattern, pattern).
		Order("company_name ASC").
		Limit(limit).
		Find(&employers).Error
	return employers, err
}

func (r *identityRepository) SearchUsers(ctx context.Context, query string, limit int) ([]*models.User, error) {
	var users []*models.User
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("name LIKE ? OR email LIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *identityRepository) FindUserByContact(ctx context.Context, emailOrName string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ? OR name = ?", emailOrName, emailOrName).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
