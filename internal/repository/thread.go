// Package repository provides data access interfaces and their GORM implementations.
package repository

import (
	"context"
	"time"

	"hirelink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ThreadFilter selects which threads a listing returns.
type ThreadFilter string

const (
	ThreadFilterAll      ThreadFilter = "all"
	ThreadFilterUnread   ThreadFilter = "unread"
	ThreadFilterArchived ThreadFilter = "archived"
)

// ThreadListQuery carries the optional listing filters.
type ThreadListQuery struct {
	Filter      ThreadFilter
	ContextType string
	Search      string
}

// ThreadRepository defines the interface for thread data operations.
type ThreadRepository interface {
	InsertIfAbsent(ctx context.Context, thread *models.Thread) error
	FindByTuple(ctx context.Context, userID string, employerID *string, contextType string, contextID *string) (*models.Thread, error)
	GetByID(ctx context.Context, id string) (*models.Thread, error)
	ListForSide(ctx context.Context, party models.Party, q ThreadListQuery) ([]*models.Thread, error)
	AppendMessageEffects(ctx context.Context, threadID, preview string, recipient models.Side, at time.Time) error
	ResetUnread(ctx context.Context, threadID string, side models.Side) error
	Archive(ctx context.Context, threadID string) error
	SumUnread(ctx context.Context, party models.Party) (int, error)
}

type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new thread repository.
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

// InsertIfAbsent creates the thread unless a row for its uniqueness tuple
// already exists. On conflict nothing is written and no error is returned;
// callers re-lookup by tuple to find the winning row.
func (r *threadRepository) InsertIfAbsent(ctx context.Context, thread *models.Thread) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(thread).Error
}

func (r *threadRepository) FindByTuple(ctx context.Context, userID string, employerID *string, contextType string, contextID *string) (*models.Thread, error) {
	q := r.db.WithContext(ctx).Where("user_id = ? AND context_type = ?", userID, contextType)
	if employerID != nil {
		q = q.Where("employer_id = ?", *employerID)
	} else {
		q = q.Where("employer_id IS NULL")
	}
	if contextID != nil {
		q = q.Where("context_id = ?", *contextID)
	} else {
		q = q.Where("context_id IS NULL")
	}

	var thread models.Thread
	if err := q.First(&thread).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepository) GetByID(ctx context.Context, id string) (*models.Thread, error) {
	var thread models.Thread
	err := r.db.WithContext(ctx).
		Preload("Employer").
		Preload("User").
		First(&thread, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepository) ListForSide(ctx context.Context, party models.Party, q ThreadListQuery) ([]*models.Thread, error) {
	query := r.db.WithContext(ctx).Model(&models.Thread{})

	if party.Side == models.SideEmployer {
		query = query.Where("employer_id = ?", party.ID)
	} else {
		query = query.Where("user_id = ?", party.ID)
	}

	switch q.Filter {
	case ThreadFilterUnread:
		query = query.Where(models.UnreadColumn(party.Side) + " > 0")
	case ThreadFilterArchived:
		query = query.Where("is_archived = ?", true)
	default:
		query = query.Where("is_archived = ?", false)
	}

	if q.ContextType != "" && q.ContextType != "all" {
		query = query.Where("context_type = ?", q.ContextType)
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.Where("subject LIKE ? OR last_message_preview LIKE ?", pattern, pattern)
	}

	var threads []*models.Thread
	err := query.
		Preload("Employer").
		Preload("User").
		Order("last_message_at DESC").
		Find(&threads).Error
	return threads, err
}

// AppendMessageEffects applies the per-message thread mutations: preview,
// last-message timestamp, and a relative-delta increment of the recipient
// side's unread counter. The delta keeps concurrent appends from losing
// updates.
func (r *threadRepository) AppendMessageEffects(ctx context.Context, threadID, preview string, recipient models.Side, at time.Time) error {
	col := models.UnreadColumn(recipient)
	return r.db.WithContext(ctx).Model(&models.Thread{}).
		Where("id = ?", threadID).
		Updates(map[string]interface{}{
			"last_message_at":      at,
			"last_message_preview": preview,
			col:                    gorm.Expr(col+" + ?", 1),
		}).Error
}

func (r *threadRepository) ResetUnread(ctx context.Context, threadID string, side models.Side) error {
	return r.db.WithContext(ctx).Model(&models.Thread{}).
		Where("id = ?", threadID).
		Update(models.UnreadColumn(side), 0).Error
}

// SumUnread totals one side's unread counters across all its threads,
// archived included.
func (r *threadRepository) SumUnread(ctx context.Context, party models.Party) (int, error) {
	col := models.UnreadColumn(party.Side)
	sideCol := "user_id"
	if party.Side == models.SideEmployer {
		sideCol = "employer_id"
	}
	var total int
	err := r.db.WithContext(ctx).Model(&models.Thread{}).
		Select("COALESCE(SUM("+col+"), 0)").
		Where(sideCol+" = ?", party.ID).
		Scan(&total).Error
	return total, err
}

func (r *threadRepository) Archive(ctx context.Context, threadID string) error {
	return r.db.WithContext(ctx).Model(&models.Thread{}).
		Where("id = ?", threadID).
		Update("is_archived", true).Error
}
