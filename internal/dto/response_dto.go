package dto

import (
	"time"

	"github.com/VictorLi621/5620-Marker/internal/model"
)

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type AssignmentResponse struct {
	ID          uint       `json:"id"`
	TeacherID   uint       `json:"teacher_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	CourseCode  string     `json:"course_code"`
	TotalMarks  int        `json:"total_marks"`
	Rubric      *string    `json:"rubric,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SubmissionResponse struct {
	ID               uint                   `json:"id"`
	AssignmentID     uint                   `json:"assignment_id"`
	StudentID        uint                   `json:"student_id"`
	OriginalFileName string                 `json:"original_file_name"`
	FileType         string                 `json:"file_type"`
	Status           model.SubmissionStatus `json:"status"`
	FailureReason    *string                `json:"failure_reason,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

type SubmissionStatusResponse struct {
	SubmissionID  uint                   `json:"submission_id"`
	Status        model.SubmissionStatus `json:"status"`
	FailureReason *string                `json:"failure_reason,omitempty"`
}

type GradeResponse struct {
	ID                    uint              `json:"id"`
	SubmissionID          uint              `json:"submission_id"`
	AiScore               float64           `json:"ai_score"`
	AiConfidence          float64           `json:"ai_confidence"`
	AiFeedback            model.Feedback    `json:"ai_feedback"`
	TeacherScore          *float64          `json:"teacher_score,omitempty"`
	TeacherComments       *string           `json:"teacher_comments,omitempty"`
	ReviewedByID          *uint             `json:"reviewed_by_id,omitempty"`
	ReviewedAt            *time.Time        `json:"reviewed_at,omitempty"`
	Status                model.GradeStatus `json:"status"`
	FinalScore            float64           `json:"final_score"`
	PublishedAt           *time.Time        `json:"published_at,omitempty"`
	AcknowledgedByStudent bool              `json:"acknowledged_by_student"`
	Version               int               `json:"version"`
}

type PendingGradeResponse struct {
	GradeID      uint              `json:"grade_id"`
	SubmissionID uint              `json:"submission_id"`
	AssignmentID uint              `json:"assignment_id"`
	StudentID    uint              `json:"student_id"`
	AiScore      float64           `json:"ai_score"`
	AiConfidence float64           `json:"ai_confidence"`
	Status       model.GradeStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
}

type AppealResponse struct {
	ID                uint               `json:"id"`
	SubmissionID      uint               `json:"submission_id"`
	StudentID         uint               `json:"student_id"`
	Reason            string             `json:"reason"`
	Status            model.AppealStatus `json:"status"`
	ResolverTeacherID *uint              `json:"resolver_teacher_id,omitempty"`
	Resolution        *string            `json:"resolution,omitempty"`
	NewScore          *float64           `json:"new_score,omitempty"`
	ResolvedAt        *time.Time         `json:"resolved_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

type ScoreBandCount struct {
	Band  string `json:"band"`
	Count int    `json:"count"`
}

type AssignmentStatisticsResponse struct {
	AssignmentID    uint             `json:"assignment_id"`
	SubmissionCount int              `json:"submission_count"`
	GradedCount     int              `json:"graded_count"`
	PublishedCount  int              `json:"published_count"`
	FailedCount     int              `json:"failed_count"`
	AverageScore    *float64         `json:"average_score,omitempty"`
	HighestScore    *float64         `json:"highest_score,omitempty"`
	LowestScore     *float64         `json:"lowest_score,omitempty"`
	Distribution    []ScoreBandCount `json:"distribution"`
	FailureReasons  map[string]int   `json:"failure_reasons"`
}
