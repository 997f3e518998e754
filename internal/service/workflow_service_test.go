package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VictorLi621/5620-Marker/internal/apperr"
	"github.com/VictorLi621/5620-Marker/internal/model"
	"github.com/VictorLi621/5620-Marker/internal/service"
)

func TestAdvanceWalksThePipeline(t *testing.T) {
	e := newEnv(t)
	assignment := e.seedAssignment(t)
	submission := e.seedSubmission(t, assignment.ID, model.SubmissionUploaded)
	ctx := context.Background()

	status, err := e.workflow.Advance(ctx, submission.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionAnonymizing, status)

	status, err = e.workflow.Advance(ctx, submission.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionScoring, status)

	status, err = e.workflow.Advance(ctx, submission.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionScored, status)

	stored, err := e.submissionRepo.FindByID(submission.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ExtractedText)
	require.NotNil(t, stored.AnonymizedText)
	assert.Contains(t, *stored.AnonymizedText, "[ANON]")

	grade, err := e.gradeRepo.FindBySubmissionID(submission.ID)
	require.NoError(t, err)
	assert.Equal(t, 78.0, grade.AiScore)
	assert.Equal(t, model.GradeNeedsReview, grade.Status)

	// Advancing a terminal submission is rejected.
	_, err = e.workflow.Advance(ctx, submission.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidState, apperr.KindOf(err))
}

func TestAdvanceExtractionFailure(t *testing.T) {
	e := newEnv(t)
	e.extractor.err = errUpstreamDown
	assignment := e.seedAssignment(t)
	submission := e.seedSubmission(t, assignment.ID, model.SubmissionUploaded)

	status, err := e.workflow.Advance(context.Background(), submission.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.Upstream, apperr.KindOf(err))
	assert.Equal(t, model.SubmissionFailed, status)

	stored, err := e.submissionRepo.FindByID(submission.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionFailed, stored.Status)
	require.NotNil(t, stored.FailureReason)
	assert.Contains(t, *stored.FailureReason, "text extraction failed")

	// No grade is created for a failed submission.
	_, err = e.gradeRepo.FindBySubmissionID(submission.ID)
	assert.Error(t, err)

	// FAILED is terminal too.
	_, err = e.workflow.Advance(context.Background(), submission.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidState, apperr.KindOf(err))
}

func TestAdvanceConcurrentConflict(t *testing.T) {
	e := newEnv(t)
	e.extractor.started = make(chan struct{})
	e.extractor.release = make(chan struct{})
	assignment := e.seedAssignment(t)
	submission := e.seedSubmission(t, assignment.ID, model.SubmissionUploaded)

	firstDone := make(chan error, 1)
	go func() {
		_, err := e.workflow.Advance(context.Background(), submission.ID)
		firstDone <- err
	}()

	<-e.extractor.started

	_, err := e.workflow.Advance(context.Background(), submission.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	close(e.extractor.release)
	require.NoError(t, <-firstDone)
}

func TestAdvanceStageTimeout(t *testing.T) {
	e := newEnv(t)
	assignment := e.seedAssignment(t)
	submission := e.seedSubmission(t, assignment.ID, model.SubmissionUploaded)

	runner := service.NewStageRunner(stalledExtractor{}, e.anonymizer, e.scorer, 20*time.Millisecond)
	workflow := service.NewWorkflowService(e.db, e.submissionRepo, e.gradeRepo, runner, e.grades)

	status, err := workflow.Advance(context.Background(), submission.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.Upstream, apperr.KindOf(err))
	assert.Equal(t, model.SubmissionFailed, status)
}

func TestRunProcessesToTerminal(t *testing.T) {
	e := newEnv(t)
	assignment := e.seedAssignment(t)
	submission := e.seedSubmission(t, assignment.ID, model.SubmissionUploaded)

	e.workflow.Run(context.Background(), submission.ID)

	status, _, err := e.workflow.Status(submission.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionScored, status)

	// Re-running a finished submission leaves it untouched.
	e.workflow.Run(context.Background(), submission.ID)
	status, _, err = e.workflow.Status(submission.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionScored, status)
}

func TestStatusPassesThroughDatabaseFailure(t *testing.T) {
	e := newEnv(t)

	sqlDB, err := e.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, _, err = e.workflow.Status(1)
	require.Error(t, err)
	assert.NotEqual(t, apperr.NotFound, apperr.KindOf(err))
}

func TestStatusUnknownSubmission(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.workflow.Status(9999)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

// stalledExtractor never returns until its context expires.
type stalledExtractor struct{}

func (stalledExtractor) Extract(ctx context.Context, fileRef, fileType string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
