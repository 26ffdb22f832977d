package repository

import (
	"vocaman_backend/internal/model"

	"gorm.io/gorm"
)

const notificationListLimit = 100

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) WithTx(tx *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: tx}
}

func (r *NotificationRepository) Create(notifications ...*model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.DB.Create(notifications).Error
}

func (r *NotificationRepository) FindByID(id uint64) (*model.Notification, error) {
	var n model.Notification
	err := r.DB.First(&n, id).Error
	return &n, err
}

// ListForUser returns the newest notifications of a recipient.
func (r *NotificationRepository) ListForUser(userID uint64) ([]model.Notification, error) {
	var list []model.Notification
	err := r.DB.Where("recipient_user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(notificationListLimit).
		Find(&list).Error
	return list, err
}

func (r *NotificationRepository) CountUnread(userID uint64) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Notification{}).
		Where("recipient_user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkRead(id uint64) error {
	return r.DB.Model(&model.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}
