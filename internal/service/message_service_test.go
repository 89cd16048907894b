package service

import (
	"context"
	"testing"

	"hirelink/internal/models"
	"hirelink/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMessageServiceTest(t *testing.T) (*MessageService, *ThreadService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Employer{},
		&models.Thread{},
		&models.Message{},
		&models.Attachment{},
		&models.Reaction{},
	))

	threadSvc := NewThreadService(repository.NewThreadRepository(db))
	msgSvc := NewMessageService(db, repository.NewMessageRepository(db), repository.NewIdentityRepository(db), threadSvc)
	return msgSvc, threadSvc, db
}

func seedParties(t *testing.T, db *gorm.DB) (models.Party, models.Party) {
	t.Helper()
	user := models.User{Name: "Ana Lima", Email: "ana@example.com"}
	require.NoError(t, db.Create(&user).Error)
	employer := models.Employer{CompanyName: "Acme Corp", ContactEmail: "jobs@acme.example"}
	require.NoError(t, db.Create(&employer).Error)
	return models.UserParty(user.ID), models.EmployerParty(employer.ID)
}

func TestPostMessageOpensThreadWithSingleUnread(t *testing.T) {
	t.Parallel()
	svc, _, db := setupMessageServiceTest(t)
	user, employer := seedParties(t, db)
	ctx := context.Background()

	msg, thread, err := svc.PostMessage(ctx, PostMessageInput{
		NewThread: &FindOrCreateThreadInput{
			UserID:      user.ID,
			EmployerID:  &employer.ID,
			ContextType: models.ContextGeneral,
		},
		Sender:  models.UserSender(user.ID),
		Subject: "Question about the role",
		Content: "Hi, is the position still open?",
	})
	require.NoError(t, err)
	require.NotEmpty(t, msg.ID)
	assert.Equal(t, models.MessageKindText, msg.MessageType)
	assert.Equal(t, models.PriorityNormal, msg.Priority)

	var stored models.Thread
	require.NoError(t, db.First(&stored, "id = ?", thread.ID).Error)
	assert.Equal(t, 0, stored.UnreadByUser)
	assert.Equal(t, 1, stored.UnreadByEmployer, "opening message counts once, not twice")
	assert.Equal(t, "Hi, is the position still open?", stored.LastMessagePreview)
}

func TestPostMessageToExistingThreadIncrementsRecipient(t *testing.T) {
	t.Parallel()
	svc, _, db := setupMessageServiceTest(t)
	user, employer := seedParties(t, db)
	ctx := context.Background()

	open := &FindOrCreateThreadInput{UserID: user.ID, EmployerID: &employer.ID, ContextType: models.ContextGeneral}
	_, thread, err := svc.PostMessage(ctx, PostMessageInput{
		NewThread: open,
		Sender:    models.UserSender(user.ID),
		Content:   "first",
	})
	require.NoError(t, err)

	_, _, err = svc.PostMessage(ctx, PostMessageInput{
		ThreadID: thread.ID,
		Sender:   models.EmployerSender(employer.ID),
		Content:  "reply from the employer",
	})
	require.NoError(t, err)

	var stored models.Thread
	require.NoError(t, db.First(&stored, "id = ?", thread.ID).Error)
	assert.Equal(t, 1, stored.UnreadByUser)
	assert.Equal(t, 1, stored.UnreadByEmployer)
	assert.Equal(t, "reply from the employer", stored.LastMessagePreview)
}

func TestPostMessageRejectsEmptySender(t *testing.T) {
	t.Parallel()
	svc, _, db := setupMessageServiceTest(t)
	user, employer := seedParties(t, db)

	_, _, err := svc.PostMessage(context.Background(), PostMessageInput{
		NewThread: &FindOrCreateThreadInput{UserID: user.ID, EmployerID: &employer.ID, ContextType: models.ContextGeneral},
		Sender:    models.Sender{},
		Content:   "who am I?",
	})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeInvalidSender, appErr.Code)
}

func TestPostMessageContentCap(t *testing.T) {
	t.Parallel()
	svc, _, db := setupMessageServiceTest(t)
	user, employer := seedParties(t, db)

	long := make([]byte, models.MessageContentMaxLen+1)
	for i := range long {
		long[i] = 'a'
	}

	_, _, err := svc.PostMessage(context.Background(), PostMessageInput{
		NewThread: &FindOrCreateThreadInput{UserID: user.ID, EmployerID: &employer.ID, ContextType: models.ContextGeneral},
		Sender:    models.UserSender(user.ID),
		Content:   string(long),
	})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeContentTooLong, appErr.Code)
}

func TestPostMessageAttachmentRules(t *testing.T) {
	t.Parallel()
	svc, _, db := setupMessageServiceTest(t)
	user, employer := seedParties(t, db)
	ctx := context.Background()
	open := &FindOrCreateThreadInput{UserID: user.ID, EmployerID: &employer.ID, ContextType: models.ContextGeneral}

	t.Run("disallowed mime type", func(t *testing.T) {
		_, _, err := svc.PostMessage(ctx, PostMessageInput{
			NewThread: open,
			Sender:    models.UserSender(user.ID),
			Content:   "see attached",
			Attachments: []AttachmentInput{
				{OriginalName: "run.sh", FileURL: "https://files.example/run.sh", MimeType: "application/x-sh", FileSize: 100},
			},
		})
		require.Error(t, err)
	})

	t.Run("too many files", func(t *testing.T) {
		files := make([]AttachmentInput, maxAttachmentCount+1)
		for i := range files {
			files[i] = AttachmentInput{OriginalName: "cv.pdf", FileURL: "https://files.example/cv.pdf", MimeType: "application/pdf", FileSize: 10}
		}
		_, _, err := svc.PostMessage(ctx, PostMessageInput{
			NewThread:   open,
			Sender:      models.UserSender(user.ID),
			Content:     "all my files",
			Attachments: files,
		})
		require.Error(t, err)
	})

	t.Run("oversized file", func(t *testing.T) {
		_, _, err := svc.PostMessage(ctx, PostMessageInput{
			NewThread: open,
			Sender:    models.UserSender(user.ID),
			Content:   "big one",
			Attachments: []AttachmentInput{
				{OriginalName: "scan.pdf", FileURL: "https://files.example/scan.pdf", MimeType: "application/pdf", FileSize: maxAttachmentFileSize + 1},
			},
		})
		require.Error(t, err)
	})

	t.Run("valid attachments persist", func(t *testing.T) {
		msg, _, err := svc.PostMessage(ctx, PostMessageInput{
			NewThread: open,
			Sender:    models.UserSender(user.ID),
			Content:   "resume attached",
			Attachments: []AttachmentInput{
				{OriginalName: "cv.pdf", FileURL: "https://files.example/cv.pdf", MimeType: "application/pdf", FileSize: 2048},
			},
		})
		require.NoError(t, err)
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, "application", msg.Attachments[0].FileType)

		var count int64
		require.NoError(t, db.Model(&models.Attachment{}).Where("message_id = ?", msg.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})
}

func TestPostMessageOutsiderCannotUseThread(t *testing.T) {
	t.Parallel()
	svc, _, db := setupMessageServiceTest(t)
	user, employer := seedParties(t, db)
	ctx := context.Background()

	_, thread, err := svc.PostMessage(ctx, PostMessageInput{
		NewThread: &FindOrCreateThreadInput{UserID: user.ID, EmployerID: &employer.ID, ContextType: models.ContextGeneral},
		Sender:    models.UserSender(user.ID),
		Content:   "private conversation",
	})
	require.NoError(t, err)

	intruder := models.User{Name: "Eve", Email: "eve@example.com"}
	require.NoError(t, db.Create(&intruder).Error)

	_, _, err = svc.PostMessage(ctx, PostMessageInput{
		ThreadID: thread.ID,
		Sender:   models.UserSender(intruder.ID),
		Content:  "let me in",
	})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code, "thread ids are not probeable by outsiders")
}

func TestMarkThreadReadBulkAndCounterReset(t *testing.T) {
	t.Parallel()
	svc, _, db := setupMessageServiceTest(t)
	user, employer := seedParties(t, db)
	ctx := context.Background()

	_, thread, err := svc.PostMessage(ctx, PostMessageInput{
		NewThread: &FindOrCreateThreadInput{UserID: user.ID, EmployerID: &employer.ID, ContextType: models.ContextGeneral},
		Sender:    models.EmployerSender(employer.ID),
		Content:   "interview invite",
	})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, _, err = svc.PostMessage(ctx, PostMessageInput{
			ThreadID: thread.ID,
			Sender:   models.EmployerSender(employer.ID),
			Content:  "follow up",
		})
		require.NoError(t, err)
	}

	var before models.Thread
	require.NoError(t, db.First(&before, "id = ?", thread.ID).Error)
	require.Equal(t, 3, before.UnreadByUser)

	marked, err := svc.MarkThreadRead(ctx, thread.ID, models.UserParty(user.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 3, marked)

	var after models.Thread
	require.NoError(t, db.First(&after, "id = ?", thread.ID).Error)
	assert.Equal(t, 0, after.UnreadByUser)

	// Idempotent: nothing left to mark, counter stays at zero.
	marked, err = svc.MarkThreadRead(ctx, thread.ID, models.UserParty(user.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 0, marked)
}

func TestMarkThreadReadLeavesOwnSentMessagesAlone(t *testing.T) {
	t.Parallel()
	svc, _, db := setupMessageServiceTest(t)
	user, employer := seedParties(t, db)
	ctx := context.Background()

	_, thread, err := svc.PostMessage(ctx, PostMessageInput{
		NewThread: &FindOrCreateThreadInput{UserID: user.ID, EmployerID: &employer.ID, ContextType: models.ContextGeneral},
		Sender:    models.UserSender(user.ID),
		Content:   "my own message",
	})
	require.NoError(t, err)

	marked, err := svc.MarkThreadRead(ctx, thread.ID, models.UserParty(user.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 0, marked, "a reader's own messages are not theirs to mark")
}

func TestListMessagesNewestFirst(t *testing.T) {
	t.Parallel()
	svc, _, db := setupMessageServiceTest(t)
	user, employer := seedParties(t, db)
	ctx := context.Background()

	_, thread, err := svc.PostMessage(ctx, PostMessageInput{
		NewThread: &FindOrCreateThreadInput{UserID: user.ID, EmployerID: &employer.ID, ContextType: models.ContextGeneral},
		Sender:    models.UserSender(user.ID),
		Content:   "first",
	})
	require.NoError(t, err)
	_, _, err = svc.PostMessage(ctx, PostMessageInput{ThreadID: thread.ID, Sender: models.EmployerSender(employer.ID), Content: "second"})
	require.NoError(t, err)
	_, _, err = svc.PostMessage(ctx, PostMessageInput{ThreadID: thread.ID, Sender: models.UserSender(user.ID), Content: "third"})
	require.NoError(t, err)

	msgs, err := svc.ListMessages(ctx, thread.ID, models.UserParty(user.ID), repository.MessageListOptions{})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "third", msgs[0].Content)
	assert.Equal(t, "first", msgs[2].Content)
}

func TestListMessagesFilters(t *testing.T) {
	t.Parallel()
	svc, _, db := setupMessageServiceTest(t)
	user, employer := seedParties(t, db)
	ctx := context.Background()

	_, thread, err := svc.PostMessage(ctx, PostMessageInput{
		NewThread: &FindOrCreateThreadInput{UserID: user.ID, EmployerID: &employer.ID, ContextType: models.ContextGeneral},
		Sender:    models.UserSender(user.ID),
		Content:   "when can I expect an update?",
	})
	require.NoError(t, err)
	_, _, err = svc.PostMessage(ctx, PostMessageInput{
		ThreadID: thread.ID,
		Sender:   models.EmployerSender(employer.ID),
		Content:  "offer details attached",
		Priority: models.PriorityUrgent,
	})
	require.NoError(t, err)

	reader := models.UserParty(user.ID)

	msgs, err := svc.ListMessages(ctx, thread.ID, reader, repository.MessageListOptions{Search: "offer"})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "offer details attached", msgs[0].Content)

	msgs, err = svc.ListMessages(ctx, thread.ID, reader, repository.MessageListOptions{Priority: models.PriorityUrgent})
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	_, err = svc.ListMessages(ctx, thread.ID, reader, repository.MessageListOptions{Priority: "shouting"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestAddReactionIsIdempotentPerReactor(t *testing.T) {
	t.Parallel()
	svc, _, db := setupMessageServiceTest(t)
	user, employer := seedParties(t, db)
	ctx := context.Background()

	msg, _, err := svc.PostMessage(ctx, PostMessageInput{
		NewThread: &FindOrCreateThreadInput{UserID: user.ID, EmployerID: &employer.ID, ContextType: models.ContextGeneral},
		Sender:    models.EmployerSender(employer.ID),
		Content:   "congratulations!",
	})
	require.NoError(t, err)

	_, err = svc.AddReaction(ctx, msg.ID, user, "🎉")
	require.NoError(t, err)
	_, err = svc.AddReaction(ctx, msg.ID, user, "🎉")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Reaction{}).Where("message_id = ?", msg.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
