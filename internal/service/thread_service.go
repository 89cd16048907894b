package service

import (
	"context"
	"errors"
	"time"

	"hirelink/internal/models"
	"hirelink/internal/repository"

	"gorm.io/gorm"
)

// ThreadService owns conversation thread lifecycle: uniqueness of the
// (user, employer, context) tuple, unread counters, and the last-message
// preview.
type ThreadService struct {
	threadRepo repository.ThreadRepository
}

// NewThreadService returns a new ThreadService.
func NewThreadService(threadRepo repository.ThreadRepository) *ThreadService {
	return &ThreadService{threadRepo: threadRepo}
}

// FindOrCreateThreadInput is the input for resolving a thread for a context.
type FindOrCreateThreadInput struct {
	UserID      string
	EmployerID  *string
	ContextType string
	ContextID   *string
	Subject     string
	Preview     string
	OpeningSide models.Side
}

// PreviewText reduces message content to the stored thread preview: at most
// PreviewMaxLen bytes, sliced naively. Multi-byte characters at the cut
// point are split the same way the surrounding product code expects.
func PreviewText(content string) string {
	if len(content) > models.PreviewMaxLen {
		return content[:models.PreviewMaxLen]
	}
	return content
}

// FindOrCreateThread looks up the thread for the uniqueness tuple, creating
// it when absent. A freshly created thread already carries the first
// message's effects: the opening side's unread counter is 0, the other
// side's is 1, and preview/lastMessageAt are seeded. The returned flag tells
// callers whether creation happened so they do not apply the effects twice.
//
// Concurrent calls on the same tuple race through an insert-if-absent
// primitive: the loser's insert writes nothing and the follow-up lookup
// returns the winner's row.
func (s *ThreadService) FindOrCreateThread(ctx context.Context, in FindOrCreateThreadInput) (*models.Thread, bool, error) {
	if !models.ValidContextType(in.ContextType) {
		return nil, false, models.NewValidationError("Invalid thread context type")
	}
	if !in.OpeningSide.Valid() {
		return nil, false, models.NewValidationError("Invalid opening side")
	}

	existing, err := s.threadRepo.FindByTuple(ctx, in.UserID, in.EmployerID, in.ContextType, in.ContextID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	thread := &models.Thread{
		UserID:             in.UserID,
		EmployerID:         in.EmployerID,
		ContextType:        in.ContextType,
		ContextID:          in.ContextID,
		Subject:            in.Subject,
		LastMessageAt:      time.Now().UTC(),
		LastMessagePreview: PreviewText(in.Preview),
	}
	switch in.OpeningSide {
	case models.SideUser:
		thread.UnreadByEmployer = 1
	case models.SideEmployer:
		thread.UnreadByUser = 1
	}

	if err := s.threadRepo.InsertIfAbsent(ctx, thread); err != nil {
		return nil, false, err
	}

	// Re-lookup either way: on a lost race our insert was a no-op and the
	// tuple resolves to the winning row.
	winner, err := s.threadRepo.FindByTuple(ctx, in.UserID, in.EmployerID, in.ContextType, in.ContextID)
	if err != nil {
		return nil, false, err
	}
	return winner, winner.ID == thread.ID, nil
}

// AppendMessageEffects updates the thread for a newly appended message:
// preview, last-message timestamp, and the recipient side's unread counter.
func (s *ThreadService) AppendMessageEffects(ctx context.Context, threadID, content string, recipient models.Side) error {
	if !recipient.Valid() {
		return models.NewValidationError("Invalid recipient side")
	}
	return s.threadRepo.AppendMessageEffects(ctx, threadID, PreviewText(content), recipient, time.Now().UTC())
}

// MarkRead zeroes the reading side's unread counter. Fails with NotFound when
// the thread does not belong to the reader on that side.
func (s *ThreadService) MarkRead(ctx context.Context, threadID string, reader models.Party) error {
	thread, err := s.ownedThread(ctx, threadID, reader)
	if err != nil {
		return err
	}
	return s.threadRepo.ResetUnread(ctx, thread.ID, reader.Side)
}

// Archive marks the thread archived for its owner. History and unread
// counters are untouched.
func (s *ThreadService) Archive(ctx context.Context, threadID string, owner models.Party) error {
	thread, err := s.ownedThread(ctx, threadID, owner)
	if err != nil {
		return err
	}
	return s.threadRepo.Archive(ctx, thread.ID)
}

// ListThreads returns the owner's threads ordered by last message, newest
// first. The unread filter means unread-by-owner; the default filter hides
// archived threads.
func (s *ThreadService) ListThreads(ctx context.Context, owner models.Party, q repository.ThreadListQuery) ([]*models.Thread, error) {
	if !owner.Valid() {
		return nil, models.NewValidationError("Invalid thread owner")
	}
	return s.threadRepo.ListForSide(ctx, owner, q)
}

// UnreadCount totals the party's unread counters over every thread it owns,
// archived ones included.
func (s *ThreadService) UnreadCount(ctx context.Context, owner models.Party) (int, error) {
	if !owner.Valid() {
		return 0, models.NewValidationError("Listing requires exactly one owning party")
	}
	return s.threadRepo.SumUnread(ctx, owner)
}

// GetThreadForParty returns the thread when the party owns its side.
func (s *ThreadService) GetThreadForParty(ctx context.Context, threadID string, party models.Party) (*models.Thread, error) {
	return s.ownedThread(ctx, threadID, party)
}

func (s *ThreadService) ownedThread(ctx context.Context, threadID string, party models.Party) (*models.Thread, error) {
	thread, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Thread", threadID)
		}
		return nil, err
	}
	if !ThreadBelongsTo(thread, party) {
		// Ownership failures read as NotFound so ids are not probeable.
		return nil, models.NewNotFoundError("Thread", threadID)
	}
	return thread, nil
}

// ThreadBelongsTo reports whether the party owns the given side of the thread.
func ThreadBelongsTo(thread *models.Thread, party models.Party) bool {
	switch party.Side {
	case models.SideUser:
		return thread.UserID == party.ID
	case models.SideEmployer:
		return thread.EmployerID != nil && *thread.EmployerID == party.ID
	}
	return false
}
