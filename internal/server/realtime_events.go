package server

import (
	"context"

	"hirelink/internal/middleware"
	"hirelink/internal/models"
	"hirelink/internal/notifications"
)

// publishThreadEvent fans an event out to both sides of a thread. Realtime
// is best effort; a failed publish never fails the request that caused it.
func (s *Server) publishThreadEvent(ctx context.Context, thread *models.Thread, eventType string, payload map[string]interface{}) {
	if s.notifier == nil || thread == nil || s.realtimeDisabled() {
		return
	}
	s.notifier.PublishBothSides(ctx, thread, notifications.Event{
		Type:    eventType,
		Payload: payload,
	})
}

// realtimeDisabled is an operational kill switch for event publishing.
func (s *Server) realtimeDisabled() bool {
	return s.flags.Enabled("disable_realtime", "")
}

// publishPartyEvent targets a single side.
func (s *Server) publishPartyEvent(ctx context.Context, p models.Party, eventType string, payload map[string]interface{}) {
	if s.notifier == nil || s.realtimeDisabled() {
		return
	}
	err := s.notifier.PublishParty(ctx, p, notifications.Event{
		Type:    eventType,
		Payload: payload,
	})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "realtime publish failed",
			"event_type", eventType, "error", err)
	}
}

func threadSummary(t *models.Thread) map[string]interface{} {
	return map[string]interface{}{
		"id":                   t.ID,
		"context_type":         t.ContextType,
		"subject":              t.Subject,
		"last_message_at":      t.LastMessageAt,
		"last_message_preview": t.LastMessagePreview,
		"unread_by_user":       t.UnreadByUser,
		"unread_by_employer":   t.UnreadByEmployer,
		"is_archived":          t.IsArchived,
	}
}
