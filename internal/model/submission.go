package model

import (
	"time"

	"gorm.io/gorm"
)

// SubmissionStatus tracks a submission through the processing pipeline.
type SubmissionStatus string

const (
	SubmissionUploaded      SubmissionStatus = "UPLOADED"
	SubmissionOCRProcessing SubmissionStatus = "OCR_PROCESSING"
	SubmissionAnonymizing   SubmissionStatus = "ANONYMIZING"
	SubmissionScoring       SubmissionStatus = "SCORING"
	SubmissionScored        SubmissionStatus = "SCORED"
	SubmissionFailed        SubmissionStatus = "FAILED"
)

// IsTerminal reports whether the pipeline is done with this submission.
func (s SubmissionStatus) IsTerminal() bool {
	return s == SubmissionScored || s == SubmissionFailed
}

func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionUploaded, SubmissionOCRProcessing, SubmissionAnonymizing,
		SubmissionScoring, SubmissionScored, SubmissionFailed:
		return true
	default:
		return false
	}
}

type Submission struct {
	ID               uint             `gorm:"primarykey" json:"id"`
	AssignmentID     uint             `json:"assignment_id" gorm:"not null;index"`
	Assignment       Assignment       `json:"assignment,omitempty" gorm:"foreignKey:AssignmentID"`
	StudentID        uint             `json:"student_id" gorm:"not null;index"`
	OriginalFileRef  string           `json:"original_file_ref" gorm:"size:500;not null"`
	OriginalFileName string           `json:"original_file_name"`
	FileType         string           `json:"file_type"` // pdf, txt, md, jpg, png ...
	ExtractedText    *string          `json:"extracted_text,omitempty" gorm:"type:text"`
	AnonymizedText   *string          `json:"anonymized_text,omitempty" gorm:"type:text"`
	Status           SubmissionStatus `json:"status" gorm:"not null;index;default:'UPLOADED'"`
	FailureReason    *string          `json:"failure_reason,omitempty" gorm:"type:text"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`
}
