package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/VictorLi621/5620-Marker/internal/repository"
)

// RosterService answers "who may act on what": teacher ownership of
// assignments and student enrollment in courses.
type RosterService interface {
	IsTeacherOf(teacherID, assignmentID uint) (bool, error)
	IsEnrolled(studentID uint, courseCode string) (bool, error)
}

type rosterService struct {
	assignmentRepo repository.AssignmentRepository
	enrollmentRepo repository.EnrollmentRepository
}

func NewRosterService(assignmentRepo repository.AssignmentRepository, enrollmentRepo repository.EnrollmentRepository) RosterService {
	return &rosterService{assignmentRepo: assignmentRepo, enrollmentRepo: enrollmentRepo}
}

func (s *rosterService) IsTeacherOf(teacherID, assignmentID uint) (bool, error) {
	assignment, err := s.assignmentRepo.FindByID(assignmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return assignment.TeacherID == teacherID, nil
}

func (s *rosterService) IsEnrolled(studentID uint, courseCode string) (bool, error) {
	return s.enrollmentRepo.IsEnrolled(studentID, courseCode)
}
