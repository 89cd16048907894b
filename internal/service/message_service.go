package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hirelink/internal/middleware"
	"hirelink/internal/models"
	"hirelink/internal/repository"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Attachment request-validation contract: caps and allow-list checked before
// any persistence. The storage collaborator owns the bytes; we only keep the
// durable URL and metadata.
const (
	maxAttachmentCount     = 10
	maxAttachmentFileSize  = 10 * 1024 * 1024
	maxAttachmentTotalSize = 50 * 1024 * 1024
)

var allowedAttachmentMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// MessageService owns ordered messages within a thread: the sender-identity
// invariant, read and delivery status, and attachments.
type MessageService struct {
	db            *gorm.DB
	messageRepo   repository.MessageRepository
	identityRepo  repository.IdentityRepository
	threadService *ThreadService
}

// NewMessageService returns a new MessageService.
func NewMessageService(
	db *gorm.DB,
	messageRepo repository.MessageRepository,
	identityRepo repository.IdentityRepository,
	threadService *ThreadService,
) *MessageService {
	return &MessageService{
		db:            db,
		messageRepo:   messageRepo,
		identityRepo:  identityRepo,
		threadService: threadService,
	}
}

// AttachmentInput describes one uploaded file reference.
type AttachmentInput struct {
	Filename     string
	OriginalName string
	FileURL      string
	MimeType     string
	FileSize     int64
}

// PostMessageInput is the input for posting a message. Either ThreadID names
// an existing thread or NewThread describes the context to find-or-create.
type PostMessageInput struct {
	ThreadID  string
	NewThread *FindOrCreateThreadInput

	Sender models.Sender
	// RecipientSide designates who a system message is for; ignored for
	// party senders, whose recipient is always the other side.
	RecipientSide models.Side

	Subject           string
	Content           string
	Priority          string
	TemplateID        *string
	TemplateVariables map[string]string
	Attachments       []AttachmentInput
}

// PostMessage validates the sender-exclusivity invariant and all content
// caps, persists the message with its attachments, and applies the thread's
// per-message effects, all inside one transaction.
func (s *MessageService) PostMessage(ctx context.Context, in PostMessageInput) (*models.Message, *models.Thread, error) {
	if err := validatePostMessage(in); err != nil {
		return nil, nil, err
	}

	recipientSide, err := resolveRecipientSide(in)
	if err != nil {
		return nil, nil, err
	}

	thread, created, err := s.resolveThread(ctx, in, recipientSide)
	if err != nil {
		return nil, nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	now := time.Now().UTC()
	msg := &models.Message{
		ThreadID:        thread.ID,
		IsSystemMessage: in.Sender.IsSystem(),
		Subject:         in.Subject,
		Content:         in.Content,
		MessageType:     messageKind(in),
		TemplateID:      in.TemplateID,
		Priority:        priority,
		DeliveryStatus:  models.DeliverySent,
		SentAt:          now,
	}
	if party, ok := in.Sender.Party(); ok {
		msg.SenderUserID, msg.SenderEmployerID = party.Columns()
	}
	if len(in.TemplateVariables) > 0 {
		vars := make(datatypes.JSONMap, len(in.TemplateVariables))
		for k, v := range in.TemplateVariables {
			vars[k] = v
		}
		msg.TemplateVariables = vars
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txMessages := repository.NewMessageRepository(tx)
		if err := txMessages.Create(tx.Statement.Context, msg); err != nil {
			return err
		}

		if len(in.Attachments) > 0 {
			attachments := make([]models.Attachment, 0, len(in.Attachments))
			for i, f := range in.Attachments {
				filename := f.Filename
				if filename == "" {
					filename = fmt.Sprintf("%s_%d_%s", msg.ID, i, f.OriginalName)
				}
				attachments = append(attachments, models.Attachment{
					MessageID:    msg.ID,
					Filename:     filename,
					OriginalName: f.OriginalName,
					FileURL:      f.FileURL,
					FileType:     fileType(f.MimeType),
					MimeType:     f.MimeType,
					FileSize:     f.FileSize,
				})
			}
			if err := txMessages.CreateAttachments(tx.Statement.Context, attachments); err != nil {
				return err
			}
			msg.Attachments = attachments
		}

		// A freshly created thread already carries the first message's
		// effects from its seed values; applying them again would double
		// the unread counter.
		if !created {
			txThreads := repository.NewThreadRepository(tx)
			return txThreads.AppendMessageEffects(tx.Statement.Context, thread.ID, PreviewText(in.Content), recipientSide, now)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	middleware.MessagesPosted.WithLabelValues(msg.MessageType).Inc()
	s.attachSenderInfo(ctx, msg)

	return msg, thread, nil
}

// ListMessages returns the thread's messages with attachments and sender
// display info, newest first, after checking the requester owns a side of
// the thread. Options narrow the listing by content/subject search and
// priority.
func (s *MessageService) ListMessages(ctx context.Context, threadID string, requester models.Party, opts repository.MessageListOptions) ([]*models.Message, error) {
	if opts.Priority != "" && !models.ValidPriority(opts.Priority) {
		return nil, models.NewValidationError("Invalid priority filter: " + opts.Priority)
	}
	if _, err := s.threadService.GetThreadForParty(ctx, threadID, requester); err != nil {
		return nil, err
	}
	return s.messageRepo.ListByThread(ctx, threadID, opts)
}

// MarkThreadRead bulk-transitions every unread message in the thread to read
// for the reader's side and zeroes the thread counter. Both writes commit
// together or not at all.
func (s *MessageService) MarkThreadRead(ctx context.Context, threadID string, reader models.Party) (int64, error) {
	if _, err := s.threadService.GetThreadForParty(ctx, threadID, reader); err != nil {
		return 0, err
	}

	var marked int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := repository.NewMessageRepository(tx).MarkThreadRead(tx.Statement.Context, threadID, reader.Side, time.Now().UTC())
		if err != nil {
			return err
		}
		marked = n
		return repository.NewThreadRepository(tx).ResetUnread(tx.Statement.Context, threadID, reader.Side)
	})
	if err != nil {
		return 0, err
	}
	return marked, nil
}

// AddReaction records an emoji reaction. Reactor exclusivity mirrors the
// message sender rule; repeats of the same (reactor, type) pair are no-ops
// through the unique index.
func (s *MessageService) AddReaction(ctx context.Context, messageID string, reactor models.Party, reactionType string) (*models.Reaction, error) {
	if !reactor.Valid() {
		return nil, models.NewValidationError("Reaction requires exactly one reacting party")
	}
	if reactionType == "" {
		return nil, models.NewValidationError("Reaction type is required")
	}

	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", messageID)
		}
		return nil, err
	}
	if _, err := s.threadService.GetThreadForParty(ctx, msg.ThreadID, reactor); err != nil {
		return nil, err
	}

	reaction := &models.Reaction{
		MessageID:    messageID,
		ReactionType: reactionType,
	}
	reaction.ReactorUserID, reaction.ReactorEmployerID = reactor.Columns()

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(reaction).Error
	if err != nil {
		return nil, err
	}
	return reaction, nil
}

func (s *MessageService) resolveThread(ctx context.Context, in PostMessageInput, recipientSide models.Side) (*models.Thread, bool, error) {
	if in.ThreadID != "" {
		if party, ok := in.Sender.Party(); ok {
			thread, err := s.threadService.GetThreadForParty(ctx, in.ThreadID, party)
			return thread, false, err
		}
		// System messages target a thread directly; existence still checked.
		thread, err := s.threadService.threadRepo.GetByID(ctx, in.ThreadID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, models.NewNotFoundError("Thread", in.ThreadID)
			}
			return nil, false, err
		}
		return thread, false, nil
	}

	if in.NewThread == nil {
		return nil, false, models.NewValidationError("Recipient is required for new messages")
	}

	open := *in.NewThread
	if open.Subject == "" {
		open.Subject = in.Subject
	}
	open.Preview = in.Content
	open.OpeningSide = recipientSide.Other()
	return s.threadService.FindOrCreateThread(ctx, open)
}

func (s *MessageService) attachSenderInfo(ctx context.Context, msg *models.Message) {
	switch {
	case msg.SenderUserID != nil:
		if user, err := s.identityRepo.GetUser(ctx, *msg.SenderUserID); err == nil {
			msg.SenderUser = user
		}
	case msg.SenderEmployerID != nil:
		if employer, err := s.identityRepo.GetEmployer(ctx, *msg.SenderEmployerID); err == nil {
			msg.SenderEmployer = employer
		}
	}
}

func validatePostMessage(in PostMessageInput) error {
	if !in.Sender.Valid() {
		return models.NewInvalidSenderError("Message sender must be exactly one of user, employer, or system")
	}
	if in.Content == "" {
		return models.NewValidationError("Message content is required")
	}
	if len(in.Content) > models.MessageContentMaxLen {
		return models.NewContentTooLongError("Message content too long (max 10000 characters)")
	}
	if len(in.Subject) > models.MessageSubjectMaxLen {
		return models.NewValidationError("Subject is too long (max 255 characters)")
	}
	if in.Priority != "" && !models.ValidPriority(in.Priority) {
		return models.NewValidationError("Invalid message priority")
	}
	return validateAttachments(in.Attachments)
}

func validateAttachments(files []AttachmentInput) error {
	if len(files) > maxAttachmentCount {
		return models.NewValidationError("Too many attachments (max 10 files)")
	}
	var total int64
	for _, f := range files {
		if !allowedAttachmentMimeTypes[f.MimeType] {
			return models.NewValidationError("File type not allowed: " + f.MimeType)
		}
		if f.FileSize > maxAttachmentFileSize {
			return models.NewValidationError("File too large (max 10MB per file)")
		}
		total += f.FileSize
	}
	if total > maxAttachmentTotalSize {
		return models.NewValidationError("Attachments too large (max 50MB total)")
	}
	return nil
}

func resolveRecipientSide(in PostMessageInput) (models.Side, error) {
	if party, ok := in.Sender.Party(); ok {
		return party.Side.Other(), nil
	}
	if !in.RecipientSide.Valid() {
		return "", models.NewValidationError("System messages require a recipient side")
	}
	return in.RecipientSide, nil
}

func messageKind(in PostMessageInput) string {
	switch {
	case in.TemplateID != nil:
		return models.MessageKindTemplate
	case in.Sender.IsSystem():
		return models.MessageKindSystem
	default:
		return models.MessageKindText
	}
}

func fileType(mimeType string) string {
	for i := 0; i < len(mimeType); i++ {
		if mimeType[i] == '/' {
			return mimeType[:i]
		}
	}
	return mimeType
}
