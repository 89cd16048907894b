package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplicationStatusHistory is an append-only audit row for a status
// transition on an application. Never mutated after insert; when the
// transition triggered a system message the row keeps a back-reference to it.
type ApplicationStatusHistory struct {
	ID            string       `gorm:"primaryKey" json:"id"`
	ApplicationID string       `gorm:"not null;index" json:"application_id"`
	Application   *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`

	FromStatus    string `json:"from_status"`
	ToStatus      string `gorm:"not null" json:"to_status"`
	ChangedBy     string `gorm:"not null" json:"changed_by"`
	ChangedByType string `gorm:"not null" json:"changed_by_type"`
	Reason        string `json:"reason,omitempty"`
	Notes         string `gorm:"type:text" json:"notes,omitempty"`

	MessageTriggered   bool    `gorm:"default:false;not null" json:"message_triggered"`
	TriggeredMessageID *string `json:"triggered_message_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (h *ApplicationStatusHistory) BeforeCreate(_ *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
