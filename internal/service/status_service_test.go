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

type statusServiceFixture struct {
	db  *gorm.DB
	svc *StatusService

	user     models.User
	employer models.Employer
	job      models.Job
	app      models.Application
}

func setupStatusServiceTest(t *testing.T) *statusServiceFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Employer{},
		&models.Job{},
		&models.Application{},
		&models.ApplicationStatusHistory{},
		&models.Thread{},
		&models.Message{},
		&models.Attachment{},
		&models.MessageTemplate{},
		&models.Notification{},
	))

	threadSvc := NewThreadService(repository.NewThreadRepository(db))
	msgSvc := NewMessageService(db, repository.NewMessageRepository(db), repository.NewIdentityRepository(db), threadSvc)
	notifSvc := NewNotificationService(db, repository.NewNotificationRepository(db))
	svc := NewStatusService(
		db,
		repository.NewApplicationRepository(db),
		repository.NewJobRepository(db),
		repository.NewStatusHistoryRepository(db),
		repository.NewTemplateRepository(db),
		msgSvc,
		notifSvc,
	)

	f := &statusServiceFixture{db: db, svc: svc}
	f.user = models.User{Name: "Ana Lima", Email: "ana@example.com"}
	require.NoError(t, db.Create(&f.user).Error)
	f.employer = models.Employer{CompanyName: "Acme Corp", ContactEmail: "jobs@acme.example"}
	require.NoError(t, db.Create(&f.employer).Error)
	f.job = models.Job{EmployerID: f.employer.ID, Title: "Backend Engineer", JobStatus: models.JobStatusPublished, IsPublished: true}
	require.NoError(t, db.Create(&f.job).Error)
	f.app = models.Application{UserID: f.user.ID, JobID: f.job.ID, Status: models.ApplicationStatusPending}
	require.NoError(t, db.Create(&f.app).Error)
	return f
}

func (f *statusServiceFixture) seedAcceptedTemplate(t *testing.T) models.MessageTemplate {
	t.Helper()
	tmpl := models.MessageTemplate{
		TemplateKey:  "application-accepted",
		TemplateName: "Application accepted",
		Subject:      "Good news about {{jobTitle}}",
		Content:      "Hi {{applicantName}}, {{companyName}} accepted your application for {{jobTitle}}.",
		Category:     "application",
		TriggerEvent: "application_accepted",
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(&tmpl).Error)
	return tmpl
}

func TestRecordTransitionAppendsHistory(t *testing.T) {
	t.Parallel()
	f := setupStatusServiceTest(t)
	ctx := context.Background()

	entry, err := f.svc.RecordTransition(ctx, RecordTransitionInput{
		ApplicationID: f.app.ID,
		ToStatus:      models.ApplicationStatusReviewing,
		ChangedBy:     f.employer.ID,
		ChangedByType: "employer",
		Reason:        "screening started",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPending, entry.FromStatus)
	assert.Equal(t, models.ApplicationStatusReviewing, entry.ToStatus)
	assert.False(t, entry.MessageTriggered)

	var app models.Application
	require.NoError(t, f.db.First(&app, "id = ?", f.app.ID).Error)
	assert.Equal(t, models.ApplicationStatusReviewing, app.Status)
	require.NotNil(t, app.ReviewedAt)
}

func TestRecordTransitionUnknownApplication(t *testing.T) {
	t.Parallel()
	f := setupStatusServiceTest(t)

	_, err := f.svc.RecordTransition(context.Background(), RecordTransitionInput{
		ApplicationID: "missing",
		ToStatus:      models.ApplicationStatusAccepted,
		ChangedBy:     f.employer.ID,
		ChangedByType: "employer",
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestRecordTransitionRejectsUnknownStatus(t *testing.T) {
	t.Parallel()
	f := setupStatusServiceTest(t)

	_, err := f.svc.RecordTransition(context.Background(), RecordTransitionInput{
		ApplicationID: f.app.ID,
		ToStatus:      "hired",
		ChangedBy:     f.employer.ID,
		ChangedByType: "employer",
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestRecordTransitionWithNotifyPostsSystemMessage(t *testing.T) {
	t.Parallel()
	f := setupStatusServiceTest(t)
	tmpl := f.seedAcceptedTemplate(t)
	ctx := context.Background()

	entry, err := f.svc.RecordTransition(ctx, RecordTransitionInput{
		ApplicationID: f.app.ID,
		ToStatus:      models.ApplicationStatusAccepted,
		ChangedBy:     f.employer.ID,
		ChangedByType: "employer",
		Notify:        true,
	})
	require.NoError(t, err)
	assert.True(t, entry.MessageTriggered)
	require.NotNil(t, entry.TriggeredMessageID)

	var msg models.Message
	require.NoError(t, f.db.First(&msg, "id = ?", *entry.TriggeredMessageID).Error)
	assert.True(t, msg.IsSystemMessage)
	assert.Equal(t, models.MessageKindTemplate, msg.MessageType)
	require.NotNil(t, msg.TemplateID)
	assert.Equal(t, tmpl.ID, *msg.TemplateID)
	assert.Equal(t, "Good news about Backend Engineer", msg.Subject)
	assert.Equal(t, "Hi Ana Lima, Acme Corp accepted your application for Backend Engineer.", msg.Content)

	var thread models.Thread
	require.NoError(t, f.db.First(&thread, "id = ?", msg.ThreadID).Error)
	assert.Equal(t, models.ContextApplication, thread.ContextType)
	require.NotNil(t, thread.ContextID)
	assert.Equal(t, f.app.ID, *thread.ContextID)
	assert.Equal(t, 1, thread.UnreadByUser)

	var notifs []models.Notification
	require.NoError(t, f.db.Find(&notifs).Error)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationPending, notifs[0].Status)
	assert.Equal(t, models.ChannelInApp, notifs[0].Channel)
	require.NotNil(t, notifs[0].RecipientUserID)
	assert.Equal(t, f.user.ID, *notifs[0].RecipientUserID)
	require.NotNil(t, notifs[0].MessageID)
	assert.Equal(t, msg.ID, *notifs[0].MessageID)
}

func TestRecordTransitionNotifyWithoutTemplateIsSilent(t *testing.T) {
	t.Parallel()
	f := setupStatusServiceTest(t)
	ctx := context.Background()

	entry, err := f.svc.RecordTransition(ctx, RecordTransitionInput{
		ApplicationID: f.app.ID,
		ToStatus:      models.ApplicationStatusRejected,
		ChangedBy:     f.employer.ID,
		ChangedByType: "employer",
		Notify:        true,
	})
	require.NoError(t, err)
	assert.False(t, entry.MessageTriggered)

	var msgCount int64
	require.NoError(t, f.db.Model(&models.Message{}).Count(&msgCount).Error)
	assert.EqualValues(t, 0, msgCount)
}

func TestHistoryIsOldestFirst(t *testing.T) {
	t.Parallel()
	f := setupStatusServiceTest(t)
	ctx := context.Background()

	for _, status := range []string{models.ApplicationStatusReviewing, models.ApplicationStatusAccepted} {
		_, err := f.svc.RecordTransition(ctx, RecordTransitionInput{
			ApplicationID: f.app.ID,
			ToStatus:      status,
			ChangedBy:     f.employer.ID,
			ChangedByType: "employer",
		})
		require.NoError(t, err)
	}

	history, err := f.svc.History(ctx, f.app.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.ApplicationStatusReviewing, history[0].ToStatus)
	assert.Equal(t, models.ApplicationStatusAccepted, history[1].ToStatus)
	assert.Equal(t, models.ApplicationStatusReviewing, history[1].FromStatus)
}

func TestUpdateJobStatusKeepsFlagsConsistent(t *testing.T) {
	t.Parallel()
	f := setupStatusServiceTest(t)
	ctx := context.Background()

	job, err := f.svc.UpdateJobStatus(ctx, f.job.ID, models.JobStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusClosed, job.JobStatus)
	assert.False(t, job.IsPublished)
	assert.True(t, job.IsArchived)

	job, err = f.svc.UpdateJobStatus(ctx, f.job.ID, models.JobStatusPublished)
	require.NoError(t, err)
	assert.True(t, job.IsPublished)
	assert.False(t, job.IsArchived)

	_, err = f.svc.UpdateJobStatus(ctx, f.job.ID, "archived")
	require.Error(t, err)

	_, err = f.svc.UpdateJobStatus(ctx, "missing", models.JobStatusDraft)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}
