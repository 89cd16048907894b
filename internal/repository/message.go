package repository

import (
	"context"
	"time"

	"hirelink/internal/models"

	"gorm.io/gorm"
)

// MessageListOptions narrow a thread's message listing. Zero values mean no
// filtering.
type MessageListOptions struct {
	Search   string
	Priority string
}

// MessageRepository defines the interface for message data operations.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	CreateAttachments(ctx context.Context, attachments []models.Attachment) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	ListByThread(ctx context.Context, threadID string, opts MessageListOptions) ([]*models.Message, error)
	MarkThreadRead(ctx context.Context, threadID string, side models.Side, at time.Time) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepository) CreateAttachments(ctx context.Context, attachments []models.Attachment) error {
	if len(attachments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&attachments).Error
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message
	err := r.db.WithContext(ctx).
		Preload("Attachments").
		Preload("SenderUser").
		Preload("SenderEmployer").
		First(&msg, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListByThread returns the thread's messages newest-first. Ties on sent_at
// fall back to insertion id so reads never reorder.
func (r *messageRepository) ListByThread(ctx context.Context, threadID string, opts MessageListOptions) ([]*models.Message, error) {
	q := r.db.WithContext(ctx).Where("thread_id = ?", threadID)
	if opts.Search != "" {
		like := "%" + opts.Search + "%"
		q = q.Where("content LIKE ? OR subject LIKE ?", like, like)
	}
	if opts.Priority != "" {
		q = q.Where("priority = ?", opts.Priority)
	}

	var messages []*models.Message
	err := q.
		Preload("Attachments").
		Preload("SenderUser").
		Preload("SenderEmployer").
		Order("sent_at DESC").
		Order("id DESC").
		Find(&messages).Error
	return messages, err
}

// MarkThreadRead flips every unread message in the thread to read for the
// given side and returns how many rows changed. A side's own messages are
// excluded: only mail addressed to the reader counts.
func (r *messageRepository) MarkThreadRead(ctx context.Context, threadID string, side models.Side, at time.Time) (int64, error) {
	ownSenderColumn := "sender_user_id"
	if side == models.SideEmployer {
		ownSenderColumn = "sender_employer_id"
	}
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("thread_id = ? AND is_read = ? AND "+ownSenderColumn+" IS NULL", threadID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": at,
			"read_by": string(side),
		})
	return res.RowsAffected, res.Error
}
