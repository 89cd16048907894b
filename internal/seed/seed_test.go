package seed

import (
	"testing"

	"hirelink/internal/database"
	"hirelink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedTest(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func TestSeedPopulatesAllEntities(t *testing.T) {
	db := setupSeedTest(t)

	err := Seed(db, Options{
		NumUsers:        5,
		NumEmployers:    2,
		JobsPerEmployer: 2,
		NumThreads:      4,
	})
	require.NoError(t, err)

	var users, employers, jobs, threads, messages, templates int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Employer{}).Count(&employers)
	db.Model(&models.Job{}).Count(&jobs)
	db.Model(&models.Thread{}).Count(&threads)
	db.Model(&models.Message{}).Count(&messages)
	db.Model(&models.MessageTemplate{}).Count(&templates)

	assert.EqualValues(t, 5, users)
	assert.EqualValues(t, 2, employers)
	assert.EqualValues(t, 4, jobs)
	assert.EqualValues(t, 4, threads)
	assert.GreaterOrEqual(t, messages, int64(4))
	assert.EqualValues(t, len(builtInTemplates), templates)
}

func TestSeedTemplatesIsIdempotent(t *testing.T) {
	db := setupSeedTest(t)

	require.NoError(t, SeedTemplates(db))
	require.NoError(t, SeedTemplates(db))

	var count int64
	db.Model(&models.MessageTemplate{}).Count(&count)
	assert.EqualValues(t, len(builtInTemplates), count)

	var accepted models.MessageTemplate
	require.NoError(t, db.First(&accepted, "trigger_event = ?", "application_accepted").Error)
	assert.Equal(t, "application_accepted", accepted.TemplateKey)
	assert.True(t, accepted.IsActive)
}

func TestConversationCountersMatchUnreadRows(t *testing.T) {
	db := setupSeedTest(t)
	f := NewFactory(db)

	user, err := f.CreateUser()
	require.NoError(t, err)
	employer, err := f.CreateEmployer()
	require.NoError(t, err)

	thread, err := f.CreateConversation(user, employer, 5)
	require.NoError(t, err)

	var unreadFromUser, unreadFromEmployer int64
	db.Model(&models.Message{}).
		Where("thread_id = ? AND is_read = ? AND sender_user_id IS NOT NULL", thread.ID, false).
		Count(&unreadFromUser)
	db.Model(&models.Message{}).
		Where("thread_id = ? AND is_read = ? AND sender_employer_id IS NOT NULL", thread.ID, false).
		Count(&unreadFromEmployer)

	assert.EqualValues(t, thread.UnreadByEmployer, unreadFromUser)
	assert.EqualValues(t, thread.UnreadByUser, unreadFromEmployer)
	assert.NotEmpty(t, thread.LastMessagePreview)
	assert.False(t, thread.LastMessageAt.IsZero())
}
