package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Thread context types.
const (
	ContextApplication = "application"
	ContextJobInquiry  = "job_inquiry"
	ContextGeneral     = "general"
	ContextSystem      = "system"
)

// ValidContextType reports whether ct is one of the known context types.
func ValidContextType(ct string) bool {
	switch ct {
	case ContextApplication, ContextJobInquiry, ContextGeneral, ContextSystem:
		return true
	}
	return false
}

// PreviewMaxLen caps the last-message preview stored on a thread.
const PreviewMaxLen = 100

// Thread is a conversation between one user and (optionally) one employer
// scoped to a context. At most one live thread exists per
// (user, employer, context type, context id) tuple. Because employer_id and
// context_id are nullable and unique indexes treat NULLs as distinct, the
// tuple is enforced by the COALESCE expression index database.Migrate
// creates, not by column tags here.
type Thread struct {
	ID                 string    `gorm:"primaryKey" json:"id"`
	UserID             string    `gorm:"not null;index" json:"user_id"`
	User               *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	EmployerID         *string   `gorm:"index" json:"employer_id,omitempty"`
	Employer           *Employer `gorm:"foreignKey:EmployerID" json:"employer,omitempty"`
	ContextType        string    `gorm:"not null;default:'general'" json:"context_type"`
	ContextID          *string   `json:"context_id,omitempty"`
	Subject            string    `json:"subject"`
	IsArchived         bool      `gorm:"default:false;not null" json:"is_archived"`
	LastMessageAt      time.Time `gorm:"index" json:"last_message_at"`
	LastMessagePreview string    `gorm:"size:100" json:"last_message_preview"`
	UnreadByUser       int       `gorm:"default:0;not null" json:"unread_by_user"`
	UnreadByEmployer   int       `gorm:"default:0;not null" json:"unread_by_employer"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Messages []Message `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (t *Thread) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// UnreadFor returns the unread counter for the given side.
func (t *Thread) UnreadFor(side Side) int {
	if side == SideEmployer {
		return t.UnreadByEmployer
	}
	return t.UnreadByUser
}

// UnreadColumn maps a side to its counter column name.
func UnreadColumn(side Side) string {
	if side == SideEmployer {
		return "unread_by_employer"
	}
	return "unread_by_user"
}
