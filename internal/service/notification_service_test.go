package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VictorLi621/5620-Marker/internal/model"
	"github.com/VictorLi621/5620-Marker/internal/service"
)

func TestNotifyRecordsSentAttempt(t *testing.T) {
	e := newEnv(t)

	e.notifications.NotifyTeacherReviewNeeded(testTeacherID, 42)

	var attempts []model.NotificationAttempt
	require.NoError(t, e.db.Find(&attempts).Error)
	require.Len(t, attempts, 1)
	assert.Equal(t, model.NotificationSent, attempts[0].Status)
	assert.Equal(t, model.NotifyReviewNeeded, attempts[0].NotificationType)
	assert.Equal(t, uint(42), attempts[0].ReferenceID)
	assert.Equal(t, 1, attempts[0].AttemptCount)

	topics := e.producer.topics()
	require.Len(t, topics, 1)
	assert.Equal(t, service.TopicReviewNeeded, topics[0])
}

func TestNotifyFailureSchedulesRetry(t *testing.T) {
	e := newEnv(t)
	e.producer.err = errUpstreamDown

	e.notifications.NotifyStudentGradePublished(testStudentID, 42, 82)

	var attempts []model.NotificationAttempt
	require.NoError(t, e.db.Find(&attempts).Error)
	require.Len(t, attempts, 1)
	assert.Equal(t, model.NotificationFailed, attempts[0].Status)
	assert.NotNil(t, attempts[0].NextRetryAt)
	assert.NotNil(t, attempts[0].ErrorMessage)
}

func TestRetryDueDeliversFailedAttempt(t *testing.T) {
	e := newEnv(t)
	e.producer.err = errUpstreamDown
	e.notifications.NotifyStudentGradePublished(testStudentID, 42, 82)

	// Bring the broker back and force the backoff window to elapse.
	e.producer.err = nil
	require.NoError(t, e.db.Model(&model.NotificationAttempt{}).
		Where("status = ?", model.NotificationFailed).
		Update("next_retry_at", nil).Error)

	e.notifications.RetryDue(context.Background())

	var attempts []model.NotificationAttempt
	require.NoError(t, e.db.Find(&attempts).Error)
	require.Len(t, attempts, 1)
	assert.Equal(t, model.NotificationSent, attempts[0].Status)
	assert.Equal(t, 2, attempts[0].AttemptCount)
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	e := newEnv(t)
	e.producer.err = errUpstreamDown
	e.notifications.NotifyStudentAppealResolved(testStudentID, 7, "rejected")

	for i := 0; i < 6; i++ {
		require.NoError(t, e.db.Model(&model.NotificationAttempt{}).
			Where("status = ?", model.NotificationFailed).
			Update("next_retry_at", nil).Error)
		e.notifications.RetryDue(context.Background())
	}

	var attempts []model.NotificationAttempt
	require.NoError(t, e.db.Find(&attempts).Error)
	require.Len(t, attempts, 1)
	assert.Equal(t, model.NotificationExhausted, attempts[0].Status)
	assert.Equal(t, 5, attempts[0].AttemptCount)
}
