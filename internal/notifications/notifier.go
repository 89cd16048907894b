// Package notifications provides real-time event fan-out over Redis pub/sub:
// publishing side events when threads change and a reconnecting subscriber
// for consumers that watch a party's channel.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"hirelink/internal/middleware"
	"hirelink/internal/models"

	"github.com/redis/go-redis/v9"
)

// Realtime event types pushed to party channels.
const (
	EventNewMessage    = "new_message"
	EventMessageRead   = "message_read"
	EventThreadUpdated = "thread_updated"
	EventNotification  = "notification"
)

// Event is the wire envelope for a realtime push.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// UserChannel returns the pub/sub channel carrying a user's events.
func UserChannel(userID string) string {
	return fmt.Sprintf("events:user:%s", userID)
}

// EmployerChannel returns the pub/sub channel carrying an employer's events.
func EmployerChannel(employerID string) string {
	return fmt.Sprintf("events:employer:%s", employerID)
}

// PartyChannel returns the channel for either side.
func PartyChannel(p models.Party) string {
	if p.Side == models.SideEmployer {
		return EmployerChannel(p.ID)
	}
	return UserChannel(p.ID)
}

// Notifier publishes events into Redis channels. A nil client makes every
// publish a no-op so the core works without Redis.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishParty sends an event to one party's channel.
func (n *Notifier) PublishParty(ctx context.Context, p models.Party, event Event) error {
	if n.rdb == nil {
		return nil
	}
	if !p.Valid() {
		return models.NewInvalidRecipientError("Event target must be exactly one party")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.rdb.Publish(ctx, PartyChannel(p), payload).Err(); err != nil {
		middleware.RedisErrors.WithLabelValues("publish").Inc()
		return err
	}
	middleware.RealtimeEventsPublished.WithLabelValues(event.Type).Inc()
	return nil
}

// PublishBothSides sends the same event to both parties of a thread.
// Publish errors degrade to a warning; realtime is best effort.
func (n *Notifier) PublishBothSides(ctx context.Context, thread *models.Thread, event Event) {
	if n.rdb == nil || thread == nil {
		return
	}
	targets := []models.Party{models.UserParty(thread.UserID)}
	if thread.EmployerID != nil && *thread.EmployerID != "" {
		targets = append(targets, models.EmployerParty(*thread.EmployerID))
	}
	for _, p := range targets {
		if err := n.PublishParty(ctx, p, event); err != nil {
			middleware.Logger.WarnContext(ctx, "realtime publish failed",
				"channel", PartyChannel(p), "event_type", event.Type, "error", err)
		}
	}
}
