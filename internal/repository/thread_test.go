package repository

import (
	"context"
	"testing"

	"hirelink/internal/database"
	"hirelink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupThreadRepoTest(t *testing.T) (*gorm.DB, ThreadRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// Full migration: the tuple uniqueness lives in an expression index,
	// not in the model tags, so AutoMigrate alone is not enough here.
	require.NoError(t, database.Migrate(db))
	return db, NewThreadRepository(db)
}

func countThreads(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Thread{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

// Two racers that both passed the existence lookup insert the same tuple;
// exactly one row may survive even when employer_id and context_id are NULL.
func TestInsertIfAbsentSingleRowPerTuple(t *testing.T) {
	t.Parallel()
	db, repo := setupThreadRepoTest(t)
	ctx := context.Background()

	user := models.User{Name: "Ana Lima", Email: "ana@example.com"}
	require.NoError(t, db.Create(&user).Error)
	employer := models.Employer{CompanyName: "Acme Corp", ContactEmail: "jobs@acme.example"}
	require.NoError(t, db.Create(&employer).Error)

	t.Run("nil employer and context", func(t *testing.T) {
		first := &models.Thread{UserID: user.ID, ContextType: models.ContextGeneral}
		second := &models.Thread{UserID: user.ID, ContextType: models.ContextGeneral}
		require.NoError(t, repo.InsertIfAbsent(ctx, first))
		require.NoError(t, repo.InsertIfAbsent(ctx, second))

		assert.EqualValues(t, 1, countThreads(t, db, user.ID))

		winner, err := repo.FindByTuple(ctx, user.ID, nil, models.ContextGeneral, nil)
		require.NoError(t, err)
		assert.Equal(t, first.ID, winner.ID)
	})

	t.Run("employer set, nil context id", func(t *testing.T) {
		first := &models.Thread{UserID: user.ID, EmployerID: &employer.ID, ContextType: models.ContextGeneral}
		second := &models.Thread{UserID: user.ID, EmployerID: &employer.ID, ContextType: models.ContextGeneral}
		require.NoError(t, repo.InsertIfAbsent(ctx, first))
		require.NoError(t, repo.InsertIfAbsent(ctx, second))

		winner, err := repo.FindByTuple(ctx, user.ID, &employer.ID, models.ContextGeneral, nil)
		require.NoError(t, err)
		assert.Equal(t, first.ID, winner.ID)
	})

	t.Run("distinct tuples still insert", func(t *testing.T) {
		appID := "app-1"
		appThread := &models.Thread{
			UserID:      user.ID,
			ContextType: models.ContextApplication,
			ContextID:   &appID,
		}
		require.NoError(t, repo.InsertIfAbsent(ctx, appThread))

		found, err := repo.FindByTuple(ctx, user.ID, nil, models.ContextApplication, &appID)
		require.NoError(t, err)
		assert.Equal(t, appThread.ID, found.ID)
	})

	// one per subtest tuple
	assert.EqualValues(t, 3, countThreads(t, db, user.ID))
}
