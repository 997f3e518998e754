package repository

import (
	"strings"

	"github.com/VictorLi621/5620-Marker/internal/model"
	"gorm.io/gorm"
)

type AppealRepository interface {
	Create(tx *gorm.DB, appeal *model.Appeal) error
	FindByID(id uint) (*model.Appeal, error)
	FindByIDWithSubmission(id uint) (*model.Appeal, error)
	FindBySubmission(submissionID uint) ([]model.Appeal, error)
	FindByStatus(status model.AppealStatus) ([]model.Appeal, error)
	HasPendingForSubmission(submissionID uint) (bool, error)
	Update(appeal *model.Appeal) error
}

type appealRepository struct {
	db *gorm.DB
}

func NewAppealRepository(db *gorm.DB) AppealRepository {
	return &appealRepository{db: db}
}

func (r *appealRepository) Create(tx *gorm.DB, appeal *model.Appeal) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(appeal).Error
}

func (r *appealRepository) FindByID(id uint) (*model.Appeal, error) {
	var appeal model.Appeal
	if err := r.db.First(&appeal, id).Error; err != nil {
		return nil, err
	}
	return &appeal, nil
}

func (r *appealRepository) FindByIDWithSubmission(id uint) (*model.Appeal, error) {
	var appeal model.Appeal
	if err := r.db.Preload("Submission.Assignment").First(&appeal, id).Error; err != nil {
		return nil, err
	}
	return &appeal, nil
}

func (r *appealRepository) FindBySubmission(submissionID uint) ([]model.Appeal, error) {
	var appeals []model.Appeal
	err := r.db.Where("submission_id = ?", submissionID).Order("created_at desc").Find(&appeals).Error
	return appeals, err
}

func (r *appealRepository) FindByStatus(status model.AppealStatus) ([]model.Appeal, error) {
	var appeals []model.Appeal
	err := r.db.Where("status = ?", status).Order("created_at asc").Find(&appeals).Error
	return appeals, err
}

func (r *appealRepository) HasPendingForSubmission(submissionID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Appeal{}).
		Where("submission_id = ? AND status = ?", submissionID, model.AppealPending).
		Count(&count).Error
	return count > 0, err
}

func (r *appealRepository) Update(appeal *model.Appeal) error {
	return r.db.Save(appeal).Error
}

// IsUniqueViolation reports whether err is a unique-constraint failure.
// The partial index on appeals(submission_id) WHERE status = 'PENDING'
// enforces the one-pending-appeal invariant under concurrent writers;
// postgres and sqlite phrase the violation differently.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
