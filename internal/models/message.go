package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Message kinds.
const (
	MessageKindText     = "text"
	MessageKindSystem   = "system"
	MessageKindTemplate = "template"
)

// Message priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Message delivery statuses.
const (
	DeliverySent      = "sent"
	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
)

// MessageContentMaxLen and MessageSubjectMaxLen cap message fields at the
// validation boundary, before any persistence.
const (
	MessageContentMaxLen = 10000
	MessageSubjectMaxLen = 255
)

// Message belongs to exactly one thread. Authorship is exactly one of
// sender user, sender employer, or the system flag; the check constraint in
// the registry backs the Sender variant enforced at post time. Immutable
// after insert except for read and delivery status.
type Message struct {
	ID               string    `gorm:"primaryKey" json:"id"`
	ThreadID         string    `gorm:"not null;index" json:"thread_id"`
	Thread           *Thread   `gorm:"foreignKey:ThreadID" json:"thread,omitempty"`
	SenderUserID     *string   `gorm:"index" json:"sender_user_id,omitempty"`
	SenderUser       *User     `gorm:"foreignKey:SenderUserID" json:"sender_user,omitempty"`
	SenderEmployerID *string   `gorm:"index" json:"sender_employer_id,omitempty"`
	SenderEmployer   *Employer `gorm:"foreignKey:SenderEmployerID" json:"sender_employer,omitempty"`
	IsSystemMessage  bool      `gorm:"default:false;not null" json:"is_system_message"`

	Subject           string            `json:"subject,omitempty"`
	Content           string            `gorm:"type:text;not null" json:"content"`
	MessageType       string            `gorm:"default:'text';not null" json:"message_type"`
	TemplateID        *string           `json:"template_id,omitempty"`
	TemplateVariables datatypes.JSONMap `json:"template_variables,omitempty"`

	IsRead bool       `gorm:"default:false;not null" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
	ReadBy *string    `json:"read_by,omitempty"`

	Priority       string    `gorm:"default:'normal';not null" json:"priority"`
	DeliveryStatus string    `gorm:"default:'sent';not null" json:"delivery_status"`
	SentAt         time.Time `gorm:"index" json:"sent_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Attachments []Attachment `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (m *Message) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Sender rebuilds the authorship variant from the stored columns.
func (m *Message) Sender() Sender {
	if m.IsSystemMessage {
		return SystemSender()
	}
	if p, ok := PartyFromColumns(m.SenderUserID, m.SenderEmployerID); ok {
		if p.Side == SideUser {
			return UserSender(p.ID)
		}
		return EmployerSender(p.ID)
	}
	return Sender{}
}

// Attachment is an immutable file reference owned by one message. Byte
// handling lives in the storage collaborator; only the durable URL and
// metadata are kept here.
type Attachment struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	MessageID    string    `gorm:"not null;index" json:"message_id"`
	Filename     string    `gorm:"not null" json:"filename"`
	OriginalName string    `json:"original_name"`
	FileURL      string    `gorm:"not null" json:"file_url"`
	FileType     string    `json:"file_type"`
	MimeType     string    `gorm:"not null" json:"mime_type"`
	FileSize     int64     `gorm:"not null" json:"file_size"`
	CreatedAt    time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (a *Attachment) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// MessageTemplate is reusable text with {{name}} placeholders. Read-mostly;
// the template engine never writes back.
type MessageTemplate struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	TemplateKey  string         `gorm:"uniqueIndex;not null" json:"template_key"`
	TemplateName string         `gorm:"not null" json:"template_name"`
	Subject      string         `json:"subject"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	Category     string         `gorm:"index" json:"category"`
	TriggerEvent string         `gorm:"index" json:"trigger_event"`
	IsActive     bool           `gorm:"default:true;not null" json:"is_active"`
	Variables    datatypes.JSON `json:"variables,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (t *MessageTemplate) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Reaction is an emoji response to a message. Reactor exclusivity mirrors the
// message sender rule; the composite unique index keeps one reaction per
// reactor per type.
type Reaction struct {
	ID                 string    `gorm:"primaryKey" json:"id"`
	MessageID          string    `gorm:"not null;uniqueIndex:idx_reaction_unique" json:"message_id"`
	ReactorUserID      *string   `gorm:"uniqueIndex:idx_reaction_unique" json:"reactor_user_id,omitempty"`
	ReactorEmployerID  *string   `gorm:"uniqueIndex:idx_reaction_unique" json:"reactor_employer_id,omitempty"`
	ReactionType       string    `gorm:"not null;uniqueIndex:idx_reaction_unique" json:"reaction_type"`
	CreatedAt          time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (r *Reaction) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Reactor rebuilds the reacting party from the stored columns.
func (r *Reaction) Reactor() (Party, bool) {
	return PartyFromColumns(r.ReactorUserID, r.ReactorEmployerID)
}
