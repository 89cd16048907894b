package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification channels.
const (
	ChannelEmail = "email"
	ChannelPush  = "push"
	ChannelSMS   = "sms"
	ChannelInApp = "in_app"
)

// ValidChannel reports whether ch is a known delivery channel.
func ValidChannel(ch string) bool {
	switch ch {
	case ChannelEmail, ChannelPush, ChannelSMS, ChannelInApp:
		return true
	}
	return false
}

// Notification statuses. Transitions only move forward:
// pending -> {sent, cancelled}, sent -> {delivered, failed},
// pending -> failed once attempts are exhausted. Terminal states absorb.
const (
	NotificationPending   = "pending"
	NotificationSent      = "sent"
	NotificationDelivered = "delivered"
	NotificationFailed    = "failed"
	NotificationCancelled = "cancelled"
)

// DefaultMaxAttempts is the delivery attempt budget for new notifications.
const DefaultMaxAttempts = 3

// Notification is a queued delivery task addressed to exactly one recipient
// (user xor employer, same exclusivity pattern as Message authorship). The
// core tracks state and attempt counters; an external scheduler decides when
// a pending row is retried and a channel adapter performs the delivery.
type Notification struct {
	ID                  string    `gorm:"primaryKey" json:"id"`
	RecipientUserID     *string   `gorm:"index" json:"recipient_user_id,omitempty"`
	RecipientEmployerID *string   `gorm:"index" json:"recipient_employer_id,omitempty"`
	Channel             string    `gorm:"default:'in_app';not null" json:"channel"`
	Type                string    `gorm:"not null" json:"type"`
	Title               string    `gorm:"not null" json:"title"`
	Content             string    `gorm:"type:text;not null" json:"content"`
	MessageID           *string   `gorm:"index" json:"message_id,omitempty"`
	ThreadID            *string   `gorm:"index" json:"thread_id,omitempty"`

	Status       string     `gorm:"default:'pending';not null;index" json:"status"`
	Attempts     int        `gorm:"default:0;not null" json:"attempts"`
	MaxAttempts  int        `gorm:"default:3;not null" json:"max_attempts"`
	ScheduledFor time.Time  `gorm:"index" json:"scheduled_for"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	LastError    string     `json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// Recipient rebuilds the addressed party from the stored columns.
func (n *Notification) Recipient() (Party, bool) {
	return PartyFromColumns(n.RecipientUserID, n.RecipientEmployerID)
}

// Terminal reports whether the notification can change state again.
func (n *Notification) Terminal() bool {
	switch n.Status {
	case NotificationDelivered, NotificationFailed, NotificationCancelled:
		return true
	}
	return false
}
