package repository_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/VictorLi621/5620-Marker/internal/model"
	"github.com/VictorLi621/5620-Marker/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// One connection so every query sees the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Assignment{},
		&model.Submission{},
		&model.Grade{},
		&model.Appeal{},
	))
	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_appeals_pending ON appeals (submission_id) WHERE status = 'PENDING'",
	).Error)

	return db
}

func seedSubmission(t *testing.T, db *gorm.DB) *model.Submission {
	t.Helper()
	assignment := &model.Assignment{TeacherID: 1, Title: "Essay", CourseCode: "BIOL1001", TotalMarks: 100}
	require.NoError(t, db.Create(assignment).Error)
	submission := &model.Submission{
		AssignmentID:    assignment.ID,
		StudentID:       2,
		OriginalFileRef: "submissions/x.txt",
		Status:          model.SubmissionScored,
	}
	require.NoError(t, db.Create(submission).Error)
	return submission
}

func TestUpdateVersionedDetectsConcurrentWrite(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewGradeRepository(db)
	submission := seedSubmission(t, db)

	grade := &model.Grade{SubmissionID: submission.ID, AiScore: 70, AiConfidence: 0.9, Status: model.GradeHighConfidence, Version: 1}
	require.NoError(t, repo.Create(grade))

	// Two readers load the same version.
	first, err := repo.FindByID(grade.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(grade.ID)
	require.NoError(t, err)

	first.Status = model.GradeReviewed
	require.NoError(t, repo.UpdateVersioned(first))
	assert.Equal(t, 2, first.Version)

	second.Status = model.GradePublished
	err = repo.UpdateVersioned(second)
	require.ErrorIs(t, err, repository.ErrStaleGrade)
	// The loser keeps its original version so it can re-read and retry.
	assert.Equal(t, 1, second.Version)

	stored, err := repo.FindByID(grade.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GradeReviewed, stored.Status)
	assert.Equal(t, 2, stored.Version)
}

func TestPendingAppealIndexAllowsOnePending(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAppealRepository(db)
	submission := seedSubmission(t, db)

	first := &model.Appeal{SubmissionID: submission.ID, StudentID: 2, Reason: "r1", Status: model.AppealPending}
	require.NoError(t, repo.Create(nil, first))

	dup := &model.Appeal{SubmissionID: submission.ID, StudentID: 2, Reason: "r2", Status: model.AppealPending}
	err := repo.Create(nil, dup)
	require.Error(t, err)
	assert.True(t, repository.IsUniqueViolation(err))

	// Resolved appeals do not block a new pending one.
	first.Status = model.AppealRejected
	require.NoError(t, repo.Update(first))
	again := &model.Appeal{SubmissionID: submission.ID, StudentID: 2, Reason: "r3", Status: model.AppealPending}
	require.NoError(t, repo.Create(nil, again))

	pending, err := repo.HasPendingForSubmission(submission.ID)
	require.NoError(t, err)
	assert.True(t, pending)
}
