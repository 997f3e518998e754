package dto

import "time"

type CreateAssignmentRequest struct {
	TeacherID   uint       `json:"teacher_id" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	CourseCode  string     `json:"course_code" binding:"required"`
	TotalMarks  int        `json:"total_marks"`
	Rubric      *string    `json:"rubric"`
	DueDate     *time.Time `json:"due_date"`
}

type EnrollStudentRequest struct {
	StudentID  uint   `json:"student_id" binding:"required"`
	CourseCode string `json:"course_code" binding:"required"`
}

type ReviewGradeRequest struct {
	TeacherID    uint    `json:"teacher_id" binding:"required"`
	TeacherScore float64 `json:"teacher_score" binding:"min=0"`
	Comments     string  `json:"comments"`
}

type PublishGradeRequest struct {
	TeacherID uint   `json:"teacher_id" binding:"required"`
	Notes     string `json:"notes"`
}

type AcknowledgeGradeRequest struct {
	StudentID uint `json:"student_id" binding:"required"`
}

type FileAppealRequest struct {
	StudentID uint   `json:"student_id" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

type ResolveAppealRequest struct {
	TeacherID  uint     `json:"teacher_id" binding:"required"`
	Decision   string   `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Resolution string   `json:"resolution" binding:"required"`
	NewScore   *float64 `json:"new_score"`
}
