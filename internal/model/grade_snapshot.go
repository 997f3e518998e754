package model

import "time"

// GradeSnapshot is an immutable record of one publication of a grade.
// Version 1 is the first publish; appeal-driven republications append
// higher versions without touching the grade's publishedAt.
type GradeSnapshot struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	SubmissionID  uint       `json:"submission_id" gorm:"not null;index:idx_snapshot_version,unique"`
	VersionNumber int        `json:"version_number" gorm:"not null;index:idx_snapshot_version,unique"`
	Submission    Submission `json:"submission,omitempty" gorm:"foreignKey:SubmissionID"`

	FinalScore    float64 `json:"final_score" gorm:"not null"`
	PublishedByID uint    `json:"published_by_id" gorm:"not null"`
	PublishNotes  string  `json:"publish_notes,omitempty" gorm:"type:text"`
	Feedback      string  `json:"feedback,omitempty" gorm:"type:text"` // combined AI + teacher feedback

	CreatedAt time.Time `json:"created_at"`
}
