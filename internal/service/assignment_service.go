package service

import (
	"strings"

	"github.com/VictorLi621/5620-Marker/internal/apperr"
	"github.com/VictorLi621/5620-Marker/internal/model"
	"github.com/VictorLi621/5620-Marker/internal/repository"
)

type AssignmentService interface {
	Create(assignment *model.Assignment) error
	GetByID(id uint) (*model.Assignment, error)
	ListByTeacher(teacherID uint) ([]model.Assignment, error)
	Enroll(studentID uint, courseCode string) error
}

type assignmentService struct {
	assignmentRepo repository.AssignmentRepository
	enrollmentRepo repository.EnrollmentRepository
}

func NewAssignmentService(assignmentRepo repository.AssignmentRepository, enrollmentRepo repository.EnrollmentRepository) AssignmentService {
	return &assignmentService{assignmentRepo: assignmentRepo, enrollmentRepo: enrollmentRepo}
}

func (s *assignmentService) Create(assignment *model.Assignment) error {
	if strings.TrimSpace(assignment.Title) == "" {
		return apperr.Validationf("assignment title must not be blank")
	}
	if strings.TrimSpace(assignment.CourseCode) == "" {
		return apperr.Validationf("assignment course code must not be blank")
	}
	if assignment.TotalMarks <= 0 {
		assignment.TotalMarks = model.DefaultTotalMarks
	}
	return s.assignmentRepo.Create(assignment)
}

func (s *assignmentService) GetByID(id uint) (*model.Assignment, error) {
	assignment, err := s.assignmentRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "assignment %d not found", id)
	}
	return assignment, nil
}

func (s *assignmentService) ListByTeacher(teacherID uint) ([]model.Assignment, error) {
	return s.assignmentRepo.FindByTeacher(teacherID)
}

func (s *assignmentService) Enroll(studentID uint, courseCode string) error {
	if strings.TrimSpace(courseCode) == "" {
		return apperr.Validationf("course code must not be blank")
	}
	return s.enrollmentRepo.Create(&model.Enrollment{StudentID: studentID, CourseCode: courseCode})
}
