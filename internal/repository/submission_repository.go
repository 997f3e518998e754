package repository

import (
	"github.com/VictorLi621/5620-Marker/internal/model"
	"gorm.io/gorm"
)

type SubmissionRepository interface {
	Create(submission *model.Submission) error
	FindByID(id uint) (*model.Submission, error)
	FindByIDWithAssignment(id uint) (*model.Submission, error)
	FindByAssignment(assignmentID uint) ([]model.Submission, error)
	FindByStudent(studentID uint) ([]model.Submission, error)
	Update(submission *model.Submission) error
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(submission *model.Submission) error {
	return r.db.Create(submission).Error
}

func (r *submissionRepository) FindByID(id uint) (*model.Submission, error) {
	var submission model.Submission
	if err := r.db.First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) FindByIDWithAssignment(id uint) (*model.Submission, error) {
	var submission model.Submission
	if err := r.db.Preload("Assignment").First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) FindByAssignment(assignmentID uint) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.db.Where("assignment_id = ?", assignmentID).Order("created_at desc").Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) FindByStudent(studentID uint) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.db.Where("student_id = ?", studentID).Order("created_at desc").Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) Update(submission *model.Submission) error {
	return r.db.Save(submission).Error
}
