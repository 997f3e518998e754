package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/VictorLi621/5620-Marker/internal/model"
	"github.com/VictorLi621/5620-Marker/internal/repository"
)

// Topics notification events are published on.
const (
	TopicReviewNeeded   = "grading.review-needed"
	TopicGradePublished = "grading.grade-published"
	TopicAppealResolved = "grading.appeal-resolved"
)

const maxNotificationAttempts = 5

// EventProducer abstracts the Kafka producer so tests can capture events.
type EventProducer interface {
	Send(ctx context.Context, topic string, message any) error
}

// NotificationService fires workflow events. Delivery is best-effort:
// every event is recorded as a NotificationAttempt, failed sends are
// retried by the worker, and no notify call ever fails the workflow.
type NotificationService interface {
	NotifyTeacherReviewNeeded(teacherID, submissionID uint)
	NotifyStudentGradePublished(studentID, submissionID uint, score float64)
	NotifyStudentAppealResolved(studentID, appealID uint, resolution string)
	RetryDue(ctx context.Context)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	producer         EventProducer
}

func NewNotificationService(notificationRepo repository.NotificationRepository, producer EventProducer) NotificationService {
	return &notificationService{notificationRepo: notificationRepo, producer: producer}
}

func (s *notificationService) NotifyTeacherReviewNeeded(teacherID, submissionID uint) {
	s.dispatch(teacherID, model.NotifyReviewNeeded, submissionID, TopicReviewNeeded,
		fmt.Sprintf("Submission %d needs teacher review", submissionID))
}

func (s *notificationService) NotifyStudentGradePublished(studentID, submissionID uint, score float64) {
	s.dispatch(studentID, model.NotifyGradePublished, submissionID, TopicGradePublished,
		fmt.Sprintf("Your grade for submission %d has been published: %.2f", submissionID, score))
}

func (s *notificationService) NotifyStudentAppealResolved(studentID, appealID uint, resolution string) {
	s.dispatch(studentID, model.NotifyAppealResolved, appealID, TopicAppealResolved,
		fmt.Sprintf("Your appeal %d has been resolved: %s", appealID, resolution))
}

func (s *notificationService) dispatch(userID uint, notificationType string, referenceID uint, topic, message string) {
	attempt := &model.NotificationAttempt{
		UserID:           userID,
		NotificationType: notificationType,
		ReferenceID:      referenceID,
		Message:          message,
		Status:           model.NotificationPending,
	}
	if err := s.notificationRepo.Create(attempt); err != nil {
		log.Error().Err(err).Str("type", notificationType).Uint("referenceID", referenceID).Msg("Failed to record notification attempt")
		return
	}
	s.trySend(context.Background(), attempt, topic)
}

func (s *notificationService) trySend(ctx context.Context, attempt *model.NotificationAttempt, topic string) {
	now := time.Now()
	attempt.AttemptCount++
	attempt.LastAttemptAt = &now

	payload := map[string]any{
		"user_id":      attempt.UserID,
		"type":         attempt.NotificationType,
		"reference_id": attempt.ReferenceID,
		"message":      attempt.Message,
	}

	if err := s.producer.Send(ctx, topic, payload); err != nil {
		msg := err.Error()
		attempt.ErrorMessage = &msg
		if attempt.AttemptCount >= maxNotificationAttempts {
			attempt.Status = model.NotificationExhausted
			attempt.NextRetryAt = nil
		} else {
			attempt.Status = model.NotificationFailed
			retryAt := now.Add(backoff(attempt.AttemptCount))
			attempt.NextRetryAt = &retryAt
		}
		log.Warn().Err(err).Uint("attemptID", attempt.ID).Int("count", attempt.AttemptCount).Msg("Notification send failed")
	} else {
		attempt.Status = model.NotificationSent
		attempt.ErrorMessage = nil
		attempt.NextRetryAt = nil
	}

	if err := s.notificationRepo.Update(attempt); err != nil {
		log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("Failed to persist notification attempt state")
	}
}

// RetryDue re-sends every pending or failed attempt whose backoff has elapsed.
func (s *notificationService) RetryDue(ctx context.Context) {
	due, err := s.notificationRepo.FindDue(time.Now(), 100)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load due notifications")
		return
	}
	for i := range due {
		attempt := due[i]
		s.trySend(ctx, &attempt, topicFor(attempt.NotificationType))
	}
}

func topicFor(notificationType string) string {
	switch notificationType {
	case model.NotifyReviewNeeded:
		return TopicReviewNeeded
	case model.NotifyGradePublished:
		return TopicGradePublished
	case model.NotifyAppealResolved:
		return TopicAppealResolved
	default:
		return TopicGradePublished
	}
}

func backoff(attemptCount int) time.Duration {
	d := time.Minute
	for i := 1; i < attemptCount; i++ {
		d *= 2
	}
	if d > 30*time.Minute {
		d = 30 * time.Minute
	}
	return d
}
