package model

import (
	"time"

	"gorm.io/gorm"
)

// AppealStatus is terminal once the appeal leaves PENDING.
type AppealStatus string

const (
	AppealPending  AppealStatus = "PENDING"
	AppealApproved AppealStatus = "APPROVED"
	AppealRejected AppealStatus = "REJECTED"
)

func (s AppealStatus) IsValid() bool {
	switch s {
	case AppealPending, AppealApproved, AppealRejected:
		return true
	default:
		return false
	}
}

type Appeal struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	SubmissionID uint       `json:"submission_id" gorm:"not null;index"`
	Submission   Submission `json:"submission,omitempty" gorm:"foreignKey:SubmissionID"`
	StudentID    uint       `json:"student_id" gorm:"not null;index"`

	Reason string       `json:"reason" gorm:"type:text;not null"`
	Status AppealStatus `json:"status" gorm:"not null;index"`

	ResolverTeacherID *uint      `json:"resolver_teacher_id,omitempty"`
	Resolution        *string    `json:"resolution,omitempty" gorm:"type:text"`
	NewScore          *float64   `json:"new_score,omitempty"` // set only when APPROVED
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
