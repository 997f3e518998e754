package repository

import (
	"time"

	"github.com/VictorLi621/5620-Marker/internal/model"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(attempt *model.NotificationAttempt) error
	Update(attempt *model.NotificationAttempt) error
	FindDue(now time.Time, limit int) ([]model.NotificationAttempt, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(attempt *model.NotificationAttempt) error {
	return r.db.Create(attempt).Error
}

func (r *notificationRepository) Update(attempt *model.NotificationAttempt) error {
	return r.db.Save(attempt).Error
}

func (r *notificationRepository) FindDue(now time.Time, limit int) ([]model.NotificationAttempt, error) {
	var attempts []model.NotificationAttempt
	err := r.db.
		Where("status IN ?", []model.NotificationStatus{model.NotificationPending, model.NotificationFailed}).
		Where("next_retry_at IS NULL OR next_retry_at <= ?", now).
		Order("created_at asc").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}
