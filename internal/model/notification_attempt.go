package model

import "time"

type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "PENDING"
	NotificationSent      NotificationStatus = "SENT"
	NotificationFailed    NotificationStatus = "FAILED"
	NotificationExhausted NotificationStatus = "EXHAUSTED"
)

// Notification event types.
const (
	NotifyReviewNeeded   = "REVIEW_NEEDED"
	NotifyGradePublished = "GRADE_PUBLISHED"
	NotifyAppealResolved = "APPEAL_RESOLVED"
)

// NotificationAttempt records one outbound notification and its delivery state,
// so failed sends can be retried by the background worker.
type NotificationAttempt struct {
	ID               uint               `gorm:"primarykey" json:"id"`
	UserID           uint               `json:"user_id" gorm:"not null;index"`
	NotificationType string             `json:"notification_type" gorm:"not null"`
	ReferenceID      uint               `json:"reference_id" gorm:"not null"` // submissionId or appealId
	Message          string             `json:"message" gorm:"type:text;not null"`
	Status           NotificationStatus `json:"status" gorm:"not null;index"`
	AttemptCount     int                `json:"attempt_count" gorm:"not null;default:0"`
	ErrorMessage     *string            `json:"error_message,omitempty" gorm:"type:text"`
	LastAttemptAt    *time.Time         `json:"last_attempt_at,omitempty"`
	NextRetryAt      *time.Time         `json:"next_retry_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
