package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VictorLi621/5620-Marker/internal/apperr"
	"github.com/VictorLi621/5620-Marker/internal/model"
	"github.com/VictorLi621/5620-Marker/internal/service"
)

// publishGrade walks a seeded NEEDS_REVIEW grade through review and publish.
func publishGrade(t *testing.T, e *env, submissionID uint) *model.Grade {
	t.Helper()
	_, err := e.grades.Review(testTeacherID, submissionID, 82, "solid work")
	require.NoError(t, err)
	grade, err := e.grades.Publish(testTeacherID, submissionID, "")
	require.NoError(t, err)
	return grade
}

func TestFileAppealMarksGradeAppealed(t *testing.T) {
	e := newEnv(t)
	submission, _ := e.seedScoredSubmission(t, model.GradeNeedsReview, 0.6)
	publishGrade(t, e, submission.ID)

	appeal, err := e.appeals.File(testStudentID, submission.ID, "the rubric was misapplied")
	require.NoError(t, err)
	assert.Equal(t, model.AppealPending, appeal.Status)

	grade, err := e.gradeRepo.FindBySubmissionID(submission.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GradeAppealed, grade.Status)
}

func TestFileAppealGuards(t *testing.T) {
	e := newEnv(t)
	submission, _ := e.seedScoredSubmission(t, model.GradeNeedsReview, 0.6)

	t.Run("blank reason", func(t *testing.T) {
		_, err := e.appeals.File(testStudentID, submission.ID, "   ")
		require.Error(t, err)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	})

	t.Run("unpublished grade", func(t *testing.T) {
		_, err := e.appeals.File(testStudentID, submission.ID, "not fair")
		require.Error(t, err)
		assert.Equal(t, apperr.InvalidState, apperr.KindOf(err))
	})

	t.Run("wrong student", func(t *testing.T) {
		publishGrade(t, e, submission.ID)
		_, err := e.appeals.File(777, submission.ID, "not fair")
		require.Error(t, err)
		assert.Equal(t, apperr.Authorization, apperr.KindOf(err))
	})

	t.Run("duplicate pending appeal", func(t *testing.T) {
		_, err := e.appeals.File(testStudentID, submission.ID, "first appeal")
		require.NoError(t, err)

		_, err = e.appeals.File(testStudentID, submission.ID, "second appeal")
		require.Error(t, err)
		assert.Equal(t, apperr.InvalidState, apperr.KindOf(err))
	})
}

func TestResolveAppealApproved(t *testing.T) {
	e := newEnv(t)
	submission, _ := e.seedScoredSubmission(t, model.GradeNeedsReview, 0.6)
	published := publishGrade(t, e, submission.ID)
	firstPublishedAt := *published.PublishedAt

	appeal, err := e.appeals.File(testStudentID, submission.ID, "the rubric was misapplied")
	require.NoError(t, err)

	newScore := 88.0
	resolved, err := e.appeals.Resolve(testTeacherID, appeal.ID, model.AppealApproved, "second marker agreed", &newScore)
	require.NoError(t, err)
	assert.Equal(t, model.AppealApproved, resolved.Status)
	require.NotNil(t, resolved.NewScore)
	assert.Equal(t, 88.0, *resolved.NewScore)
	assert.NotNil(t, resolved.ResolvedAt)

	grade, err := e.gradeRepo.FindBySubmissionID(submission.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GradePublished, grade.Status)
	assert.Equal(t, 88.0, grade.EffectiveScore())
	assert.Contains(t, *grade.TeacherComments, "[Adjusted after appeal]")

	// Republication keeps the original publication time.
	require.NotNil(t, grade.PublishedAt)
	assert.WithinDuration(t, firstPublishedAt, *grade.PublishedAt, time.Second)

	snapshots, err := e.snapshotRepo.FindBySubmission(submission.ID)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, 2, snapshots[0].VersionNumber)
	assert.Equal(t, 88.0, snapshots[0].FinalScore)

	assert.Contains(t, e.producer.topics(), service.TopicAppealResolved)
}

func TestResolveAppealRejected(t *testing.T) {
	e := newEnv(t)
	submission, _ := e.seedScoredSubmission(t, model.GradeNeedsReview, 0.6)
	publishGrade(t, e, submission.ID)

	appeal, err := e.appeals.File(testStudentID, submission.ID, "the rubric was misapplied")
	require.NoError(t, err)

	resolved, err := e.appeals.Resolve(testTeacherID, appeal.ID, model.AppealRejected, "original marking stands", nil)
	require.NoError(t, err)
	assert.Equal(t, model.AppealRejected, resolved.Status)
	assert.Nil(t, resolved.NewScore)

	grade, err := e.gradeRepo.FindBySubmissionID(submission.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GradePublished, grade.Status)
	// Score is untouched on rejection.
	assert.Equal(t, 82.0, grade.EffectiveScore())
	assert.Contains(t, *grade.TeacherComments, "[Appeal rejected]")

	// No new snapshot for a rejection.
	snapshots, err := e.snapshotRepo.FindBySubmission(submission.ID)
	require.NoError(t, err)
	assert.Len(t, snapshots, 1)
}

func TestResolveAppealGuards(t *testing.T) {
	e := newEnv(t)
	submission, _ := e.seedScoredSubmission(t, model.GradeNeedsReview, 0.6)
	publishGrade(t, e, submission.ID)

	appeal, err := e.appeals.File(testStudentID, submission.ID, "the rubric was misapplied")
	require.NoError(t, err)

	newScore := 88.0
	tooHigh := 150.0

	t.Run("approve without new score", func(t *testing.T) {
		_, err := e.appeals.Resolve(testTeacherID, appeal.ID, model.AppealApproved, "agreed", nil)
		require.Error(t, err)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	})

	t.Run("new score out of range", func(t *testing.T) {
		_, err := e.appeals.Resolve(testTeacherID, appeal.ID, model.AppealApproved, "agreed", &tooHigh)
		require.Error(t, err)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	})

	t.Run("blank resolution", func(t *testing.T) {
		_, err := e.appeals.Resolve(testTeacherID, appeal.ID, model.AppealApproved, " ", &newScore)
		require.Error(t, err)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	})

	t.Run("wrong teacher", func(t *testing.T) {
		_, err := e.appeals.Resolve(99, appeal.ID, model.AppealApproved, "agreed", &newScore)
		require.Error(t, err)
		assert.Equal(t, apperr.Authorization, apperr.KindOf(err))
	})

	t.Run("invalid decision", func(t *testing.T) {
		_, err := e.appeals.Resolve(testTeacherID, appeal.ID, model.AppealPending, "agreed", &newScore)
		require.Error(t, err)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	})

	t.Run("resolve twice", func(t *testing.T) {
		_, err := e.appeals.Resolve(testTeacherID, appeal.ID, model.AppealApproved, "agreed", &newScore)
		require.NoError(t, err)

		_, err = e.appeals.Resolve(testTeacherID, appeal.ID, model.AppealRejected, "changed my mind", nil)
		require.Error(t, err)
		assert.Equal(t, apperr.InvalidState, apperr.KindOf(err))
	})
}

func TestAppealAgainAfterResolution(t *testing.T) {
	e := newEnv(t)
	submission, _ := e.seedScoredSubmission(t, model.GradeNeedsReview, 0.6)
	publishGrade(t, e, submission.ID)

	appeal, err := e.appeals.File(testStudentID, submission.ID, "first appeal")
	require.NoError(t, err)
	_, err = e.appeals.Resolve(testTeacherID, appeal.ID, model.AppealRejected, "stands", nil)
	require.NoError(t, err)

	// Once the first appeal is terminal, a fresh one may be filed.
	second, err := e.appeals.File(testStudentID, submission.ID, "second appeal")
	require.NoError(t, err)
	assert.Equal(t, model.AppealPending, second.Status)

	all, err := e.appeals.BySubmission(submission.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFileAppealConcurrentAttemptsLeaveOnePending(t *testing.T) {
	e := newEnv(t)
	submission, _ := e.seedScoredSubmission(t, model.GradeNeedsReview, 0.6)
	publishGrade(t, e, submission.ID)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.appeals.File(testStudentID, submission.ID, "the rubric was misapplied")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		if err == nil {
			won++
			continue
		}
		lost++
		kind := apperr.KindOf(err)
		assert.Contains(t, []apperr.Kind{apperr.Conflict, apperr.InvalidState}, kind)
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	appeals, err := e.appeals.BySubmission(submission.ID)
	require.NoError(t, err)
	require.Len(t, appeals, 1)
	assert.Equal(t, model.AppealPending, appeals[0].Status)
}
