package model

import (
	"time"

	"gorm.io/gorm"
)

// GradeStatus tracks the grading lifecycle after a submission is scored.
type GradeStatus string

const (
	GradeHighConfidence GradeStatus = "HIGH_CONFIDENCE"
	GradeNeedsReview    GradeStatus = "NEEDS_REVIEW"
	GradeReviewed       GradeStatus = "REVIEWED"
	GradePublished      GradeStatus = "PUBLISHED"
	GradeAppealed       GradeStatus = "APPEALED"
)

func (s GradeStatus) IsValid() bool {
	switch s {
	case GradeHighConfidence, GradeNeedsReview, GradeReviewed, GradePublished, GradeAppealed:
		return true
	default:
		return false
	}
}

// Suggestion is one actionable improvement item in the AI feedback.
type Suggestion struct {
	Issue        string `json:"issue"`
	Suggestion   string `json:"suggestion"`
	Why          string `json:"why"`
	HowToImprove string `json:"how_to_improve"`
}

// Feedback is the structured AI feedback stored on a grade.
type Feedback struct {
	Strengths   []string     `json:"strengths"`
	Weaknesses  []string     `json:"weaknesses"`
	Suggestions []Suggestion `json:"suggestions"`
}

type Grade struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	SubmissionID uint       `json:"submission_id" gorm:"not null;uniqueIndex"`
	Submission   Submission `json:"submission,omitempty" gorm:"foreignKey:SubmissionID"`

	AiScore      float64  `json:"ai_score"`                               // 0-100
	AiConfidence float64  `json:"ai_confidence"`                          // 0.00-1.00
	AiFeedback   Feedback `json:"ai_feedback" gorm:"serializer:json;type:text"`

	TeacherScore    *float64   `json:"teacher_score,omitempty"`
	TeacherComments *string    `json:"teacher_comments,omitempty" gorm:"type:text"`
	ReviewedByID    *uint      `json:"reviewed_by_id,omitempty" gorm:"index"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`

	Status                GradeStatus `json:"status" gorm:"not null;index"`
	PublishedAt           *time.Time  `json:"published_at,omitempty"`
	AcknowledgedByStudent bool        `json:"acknowledged_by_student" gorm:"not null;default:false"`

	// Optimistic concurrency token; bumped on every write.
	Version int `json:"version" gorm:"not null;default:1"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// EffectiveScore is the score the student sees: teacher score when a review
// happened, AI score otherwise.
func (g *Grade) EffectiveScore() float64 {
	if g.TeacherScore != nil {
		return *g.TeacherScore
	}
	return g.AiScore
}
