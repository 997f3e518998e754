package repository

import (
	"github.com/VictorLi621/5620-Marker/internal/model"
	"gorm.io/gorm"
)

type SnapshotRepository interface {
	Create(tx *gorm.DB, snapshot *model.GradeSnapshot) error
	LatestVersion(submissionID uint) (int, error)
	FindBySubmission(submissionID uint) ([]model.GradeSnapshot, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Create(tx *gorm.DB, snapshot *model.GradeSnapshot) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(snapshot).Error
}

func (r *snapshotRepository) LatestVersion(submissionID uint) (int, error) {
	var latest model.GradeSnapshot
	err := r.db.Where("submission_id = ?", submissionID).
		Order("version_number desc").
		First(&latest).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return latest.VersionNumber, nil
}

func (r *snapshotRepository) FindBySubmission(submissionID uint) ([]model.GradeSnapshot, error) {
	var snapshots []model.GradeSnapshot
	err := r.db.Where("submission_id = ?", submissionID).
		Order("version_number desc").
		Find(&snapshots).Error
	return snapshots, err
}
