package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Job statuses. Publishing and archiving flags are kept in sync with the
// status so list queries can filter on a single boolean.
const (
	JobStatusDraft     = "draft"
	JobStatusPublished = "published"
	JobStatusClosed    = "closed"
)

// Job is a posting owned by an employer. Full job CRUD is an external
// collaborator; the core keeps enough here to anchor thread contexts and
// status transitions.
type Job struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	EmployerID  string     `gorm:"not null;index" json:"employer_id"`
	Employer    *Employer  `gorm:"foreignKey:EmployerID" json:"employer,omitempty"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	JobStatus   string     `gorm:"default:'draft';not null" json:"job_status"`
	IsPublished bool       `gorm:"default:false;not null" json:"is_published"`
	IsArchived  bool       `gorm:"default:false;not null" json:"is_archived"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (j *Job) BeforeCreate(_ *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}

// Application statuses mirror the values the status history records.
const (
	ApplicationStatusPending   = "pending"
	ApplicationStatusReviewing = "reviewing"
	ApplicationStatusAccepted  = "accepted"
	ApplicationStatusRejected  = "rejected"
	ApplicationStatusWithdrawn = "withdrawn"
)

// Application links a user to a job. One application per (user, job).
type Application struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	UserID      string     `gorm:"not null;uniqueIndex:idx_application_user_job" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	JobID       string     `gorm:"not null;uniqueIndex:idx_application_user_job" json:"job_id"`
	Job         *Job       `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Status      string     `gorm:"default:'pending';not null" json:"status"`
	ResumeURL   string     `json:"resume_url,omitempty"`
	CoverLetter string     `gorm:"type:text" json:"cover_letter,omitempty"`
	IsWithdrawn bool       `gorm:"default:false;not null" json:"is_withdrawn"`
	AppliedAt   time.Time  `gorm:"autoCreateTime" json:"applied_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (a *Application) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
