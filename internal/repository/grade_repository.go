package repository

import (
	"errors"

	"github.com/VictorLi621/5620-Marker/internal/model"
	"gorm.io/gorm"
)

// ErrStaleGrade signals that a grade write lost an optimistic-concurrency race.
var ErrStaleGrade = errors.New("grade was modified concurrently")

type GradeRepository interface {
	Create(grade *model.Grade) error
	CreateTx(tx *gorm.DB, grade *model.Grade) error
	FindByID(id uint) (*model.Grade, error)
	FindBySubmissionID(submissionID uint) (*model.Grade, error)
	FindPendingByAssignments(assignmentIDs []uint) ([]model.Grade, error)
	FindByAssignment(assignmentID uint) ([]model.Grade, error)
	// UpdateVersioned persists the grade only if its version column still
	// matches grade.Version; on success the in-memory version is bumped.
	UpdateVersioned(grade *model.Grade) error
}

type gradeRepository struct {
	db *gorm.DB
}

func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) Create(grade *model.Grade) error {
	return r.db.Create(grade).Error
}

func (r *gradeRepository) CreateTx(tx *gorm.DB, grade *model.Grade) error {
	return tx.Create(grade).Error
}

func (r *gradeRepository) FindByID(id uint) (*model.Grade, error) {
	var grade model.Grade
	if err := r.db.First(&grade, id).Error; err != nil {
		return nil, err
	}
	return &grade, nil
}

func (r *gradeRepository) FindBySubmissionID(submissionID uint) (*model.Grade, error) {
	var grade model.Grade
	if err := r.db.Where("submission_id = ?", submissionID).First(&grade).Error; err != nil {
		return nil, err
	}
	return &grade, nil
}

func (r *gradeRepository) FindPendingByAssignments(assignmentIDs []uint) ([]model.Grade, error) {
	if len(assignmentIDs) == 0 {
		return nil, nil
	}
	var grades []model.Grade
	err := r.db.
		Joins("JOIN submissions ON submissions.id = grades.submission_id").
		Where("submissions.assignment_id IN ?", assignmentIDs).
		Where("grades.status IN ?", []model.GradeStatus{
			model.GradeNeedsReview, model.GradeHighConfidence, model.GradeReviewed,
		}).
		Preload("Submission").
		Order("grades.created_at asc").
		Find(&grades).Error
	return grades, err
}

func (r *gradeRepository) FindByAssignment(assignmentID uint) ([]model.Grade, error) {
	var grades []model.Grade
	err := r.db.
		Joins("JOIN submissions ON submissions.id = grades.submission_id").
		Where("submissions.assignment_id = ?", assignmentID).
		Find(&grades).Error
	return grades, err
}

func (r *gradeRepository) UpdateVersioned(grade *model.Grade) error {
	current := grade.Version
	grade.Version = current + 1

	res := r.db.Model(&model.Grade{}).
		Where("id = ? AND version = ?", grade.ID, current).
		Select("*").
		Omit("id", "created_at").
		Updates(grade)
	if res.Error != nil {
		grade.Version = current
		return res.Error
	}
	if res.RowsAffected == 0 {
		grade.Version = current
		return ErrStaleGrade
	}
	return nil
}
