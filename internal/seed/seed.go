// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"

	"hirelink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	NumEmployers    int
	JobsPerEmployer int
	NumThreads      int
	ShouldClean     bool
}

// Seed populates the database with demo data: applicants, employers with
// postings, applications, the built-in status templates, and a mesh of
// conversations with believable unread tails.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d users, %d employers, %d threads...",
		opts.NumUsers, opts.NumEmployers, opts.NumThreads)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	if err := SeedTemplates(db); err != nil {
		return fmt.Errorf("failed to seed templates: %w", err)
	}

	f := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, u)
	}
	log.Printf("created %d users", len(users))

	employers := make([]*models.Employer, 0, opts.NumEmployers)
	jobs := make([]*models.Job, 0, opts.NumEmployers*opts.JobsPerEmployer)
	for i := 0; i < opts.NumEmployers; i++ {
		e, err := f.CreateEmployer()
		if err != nil {
			return fmt.Errorf("failed to create employer: %w", err)
		}
		employers = append(employers, e)

		for j := 0; j < opts.JobsPerEmployer; j++ {
			job, err := f.CreateJob(e)
			if err != nil {
				return fmt.Errorf("failed to create job: %w", err)
			}
			jobs = append(jobs, job)
		}
	}
	log.Printf("created %d employers with %d jobs", len(employers), len(jobs))

	applications := 0
	for i, job := range jobs {
		if !job.IsPublished || len(users) == 0 {
			continue
		}
		// every other posting gets one application from a rotating user
		if i%2 == 0 {
			if _, err := f.CreateApplication(users[i%len(users)], job); err != nil {
				return fmt.Errorf("failed to create application: %w", err)
			}
			applications++
		}
	}
	log.Printf("created %d applications", applications)

	for i := 0; i < opts.NumThreads && len(users) > 0 && len(employers) > 0; i++ {
		user := users[i%len(users)]
		employer := employers[i%len(employers)]
		if _, err := f.CreateConversation(user, employer, 3+f.rand.Intn(6)); err != nil {
			return fmt.Errorf("failed to create conversation: %w", err)
		}
	}
	log.Printf("created %d conversations", opts.NumThreads)

	log.Println("Seeding complete")
	return nil
}

// builtInTemplates are the stock templates the status tracker resolves by
// trigger event when an application changes status.
var builtInTemplates = []models.MessageTemplate{
	{
		TemplateKey:  "application_received",
		TemplateName: "Application Received",
		Subject:      "We received your application for {{jobTitle}}",
		Content:      "Hi {{applicantName}}, thanks for applying to {{jobTitle}} at {{companyName}}. We will review your application and get back to you soon.",
		Category:     "application",
		TriggerEvent: "application_pending",
	},
	{
		TemplateKey:  "application_under_review",
		TemplateName: "Application Under Review",
		Subject:      "Your application for {{jobTitle}} is being reviewed",
		Content:      "Hi {{applicantName}}, {{companyName}} is now reviewing your application for {{jobTitle}}.",
		Category:     "application",
		TriggerEvent: "application_reviewing",
	},
	{
		TemplateKey:  "application_accepted",
		TemplateName: "Application Accepted",
		Subject:      "Good news about {{jobTitle}}",
		Content:      "Hi {{applicantName}}, great news! {{companyName}} accepted your application for {{jobTitle}}. They will reach out with next steps.",
		Category:     "application",
		TriggerEvent: "application_accepted",
	},
	{
		TemplateKey:  "application_rejected",
		TemplateName: "Application Declined",
		Subject:      "Update on your {{jobTitle}} application",
		Content:      "Hi {{applicantName}}, thank you for your interest in {{jobTitle}} at {{companyName}}. After careful review they decided to move forward with other candidates.",
		Category:     "application",
		TriggerEvent: "application_rejected",
	},
	{
		TemplateKey:  "interview_invitation",
		TemplateName: "Interview Invitation",
		Subject:      "Interview invitation from {{companyName}}",
		Content:      "Hi {{applicantName}}, {{companyName}} would like to schedule an interview with you for the {{jobTitle}} position. Please reply with your availability.",
		Category:     "interview",
	},
}

// SeedTemplates upserts the built-in message templates. Safe to run on every
// boot; existing rows keyed by template_key are left untouched.
func SeedTemplates(db *gorm.DB) error {
	for i := range builtInTemplates {
		t := builtInTemplates[i]
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "template_key"}},
			DoNothing: true,
		}).Create(&t).Error
		if err != nil {
			return fmt.Errorf("template %s: %w", t.TemplateKey, err)
		}
	}
	return nil
}

// clearData removes seeded rows child-first so foreign keys hold.
func clearData(db *gorm.DB) error {
	tables := []string{
		"reactions", "attachments", "messages", "threads",
		"notifications", "application_status_histories", "applications",
		"jobs", "employers", "users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
