package repository

import (
	"github.com/VictorLi621/5620-Marker/internal/model"
	"gorm.io/gorm"
)

type EnrollmentRepository interface {
	Create(enrollment *model.Enrollment) error
	IsEnrolled(studentID uint, courseCode string) (bool, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.db.Create(enrollment).Error
}

func (r *enrollmentRepository) IsEnrolled(studentID uint, courseCode string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Enrollment{}).
		Where("student_id = ? AND course_code = ?", studentID, courseCode).
		Count(&count).Error
	return count > 0, err
}
