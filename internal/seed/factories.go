package seed

import (
	"fmt"
	"math/rand"
	"time"

	"hirelink/internal/models"
	"hirelink/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample applicant.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Name:   gofakeit.Name(),
		Email:  gofakeit.Email(),
		Avatar: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateEmployer constructs and persists a sample company account.
func (f *Factory) CreateEmployer(overrides ...func(*models.Employer)) (*models.Employer, error) {
	company := gofakeit.Company()
	employer := &models.Employer{
		UserID:       gofakeit.UUID(),
		CompanyName:  company,
		ContactEmail: gofakeit.Email(),
		IsVerified:   f.rand.Intn(4) > 0,
	}
	for _, override := range overrides {
		override(employer)
	}
	if err := f.db.Create(employer).Error; err != nil {
		return nil, err
	}
	return employer, nil
}

// CreateJob persists a posting for the employer with a realistic status mix.
func (f *Factory) CreateJob(employer *models.Employer, overrides ...func(*models.Job)) (*models.Job, error) {
	job := &models.Job{
		EmployerID:  employer.ID,
		Title:       gofakeit.JobTitle(),
		Description: gofakeit.Paragraph(2, 4, 8, "\n"),
		JobStatus:   models.JobStatusPublished,
		IsPublished: true,
	}

	// roughly one in five postings is still a draft, one in ten closed
	switch f.rand.Intn(10) {
	case 0:
		job.JobStatus = models.JobStatusClosed
		job.IsPublished = false
		job.IsArchived = true
	case 1, 2:
		job.JobStatus = models.JobStatusDraft
		job.IsPublished = false
	}
	if job.IsPublished {
		posted := f.pastTime(60)
		job.PostedAt = &posted
	}

	for _, override := range overrides {
		override(job)
	}
	if err := f.db.Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// CreateApplication persists an application from user to job.
func (f *Factory) CreateApplication(user *models.User, job *models.Job, overrides ...func(*models.Application)) (*models.Application, error) {
	app := &models.Application{
		UserID:      user.ID,
		JobID:       job.ID,
		Status:      models.ApplicationStatusPending,
		CoverLetter: gofakeit.Paragraph(1, 3, 10, "\n"),
		AppliedAt:   f.pastTime(30),
	}
	for _, override := range overrides {
		override(app)
	}
	if err := f.db.Create(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

// CreateConversation persists a thread between user and employer with a
// handful of alternating messages and counters that match the message rows.
func (f *Factory) CreateConversation(user *models.User, employer *models.Employer, numMessages int) (*models.Thread, error) {
	if numMessages < 1 {
		numMessages = 1
	}

	thread := &models.Thread{
		UserID:      user.ID,
		EmployerID:  &employer.ID,
		ContextType: models.ContextGeneral,
		Subject:     gofakeit.Sentence(4),
	}
	if err := f.db.Create(thread).Error; err != nil {
		return nil, err
	}

	start := f.pastTime(20)
	for i := 0; i < numMessages; i++ {
		sentAt := start.Add(time.Duration(i) * time.Duration(5+f.rand.Intn(180)) * time.Minute)
		msg := models.Message{
			ThreadID:       thread.ID,
			Content:        gofakeit.Paragraph(1, 2, 8, " "),
			MessageType:    models.MessageKindText,
			Priority:       models.PriorityNormal,
			DeliveryStatus: models.DeliverySent,
			SentAt:         sentAt,
			CreatedAt:      sentAt,
		}

		fromUser := i%2 == 0
		if fromUser {
			msg.SenderUserID = &user.ID
		} else {
			msg.SenderEmployerID = &employer.ID
		}

		// older messages were read, the tail of the thread was not
		if i < numMessages-2 {
			msg.IsRead = true
			readAt := sentAt.Add(time.Duration(1+f.rand.Intn(60)) * time.Minute)
			msg.ReadAt = &readAt
		} else if fromUser {
			thread.UnreadByEmployer++
		} else {
			thread.UnreadByUser++
		}

		if err := f.db.Create(&msg).Error; err != nil {
			return nil, err
		}
		thread.LastMessageAt = sentAt
		thread.LastMessagePreview = service.PreviewText(msg.Content)
	}

	if err := f.db.Save(thread).Error; err != nil {
		return nil, err
	}
	return thread, nil
}

func (f *Factory) pastTime(maxDays int) time.Time {
	if maxDays <= 0 {
		maxDays = 1
	}
	daysBack := f.rand.Intn(maxDays)
	hoursBack := f.rand.Intn(24)
	minsBack := f.rand.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}
