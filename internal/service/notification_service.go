package service

import (
	"context"
	"vocaman_backend/internal/model"
	"vocaman_backend/internal/repository"
	"vocaman_backend/internal/util"

	"gorm.io/gorm"
)

type NotificationService struct {
	Store            *repository.Store
	NotificationRepo *repository.NotificationRepository
}

func NewNotificationService(store *repository.Store, notificationRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{Store: store, NotificationRepo: notificationRepo}
}

type NotificationList struct {
	Data        []model.Notification `json:"data"`
	UnreadCount int64                `json:"unreadCount"`
}

func (s *NotificationService) List(ctx context.Context, userID uint64) (*NotificationList, error) {
	list := &NotificationList{Data: []model.Notification{}}
	err := s.Store.Read(ctx, func(db *gorm.DB) error {
		notifications := s.NotificationRepo.WithTx(db)
		rows, err := notifications.ListForUser(userID)
		if err != nil {
			return err
		}
		if rows != nil {
			list.Data = rows
		}
		list.UnreadCount, err = notifications.CountUnread(userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// MarkRead marks one of the user's notifications as read. Marking twice is harmless.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint64) error {
	return s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		notifications := s.NotificationRepo.WithTx(tx)
		n, err := notifications.FindByID(notificationID)
		if err != nil {
			if repository.IsNotFound(err) {
				return util.ErrNotificationNotFound
			}
			return err
		}
		if n.RecipientUserID != userID {
			return util.ErrForbidden
		}
		if n.IsRead {
			return nil
		}
		return notifications.MarkRead(notificationID)
	})
}
