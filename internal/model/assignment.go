package model

import (
	"time"

	"gorm.io/gorm"
)

// DefaultTotalMarks applies when an assignment does not specify an upper bound.
const DefaultTotalMarks = 100

type Assignment struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	TeacherID   uint    `json:"teacher_id" gorm:"not null;index"`
	Title       string  `json:"title" gorm:"not null"`
	Description string  `json:"description,omitempty" gorm:"type:text"`
	CourseCode  string  `json:"course_code" gorm:"not null;index"`
	TotalMarks  int     `json:"total_marks" gorm:"not null;default:100"`
	Rubric      *string `json:"rubric,omitempty" gorm:"type:text"` // free-form grading criteria fed to the scorer
	DueDate     *time.Time `json:"due_date,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// MaxScore returns the scoring upper bound for this assignment.
func (a *Assignment) MaxScore() float64 {
	if a.TotalMarks <= 0 {
		return DefaultTotalMarks
	}
	return float64(a.TotalMarks)
}

// Enrollment links a student to a course roster.
type Enrollment struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	StudentID  uint   `json:"student_id" gorm:"not null;index:idx_enrollment,unique"`
	CourseCode string `json:"course_code" gorm:"not null;index:idx_enrollment,unique"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
