package service

import (
	"context"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/logger"
	"peerrent-backend/internal/repository"
)

type notificationService struct {
	store repository.Store
}

func NewNotificationService(store repository.Store) NotificationService {
	return &notificationService{store: store}
}

// Notify writes the notification row and swallows any failure. A booking
// transition must never roll back because its notification could not be
// stored; dispatch to the user is an external concern.
func (s *notificationService) Notify(ctx context.Context, accountID int32, notifType, title, content, referenceType string, referenceID int32) {
	note := &domain.Notification{
		AccountID:     accountID,
		Type:          notifType,
		Title:         title,
		Content:       content,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
	}
	if err := s.store.Repos().Notifications.Create(ctx, note); err != nil {
		logger.Error("failed to store notification",
			"account_id", accountID, "type", notifType, "error", err)
	}
}

func (s *notificationService) List(ctx context.Context, actor Actor, limit, offset int32) ([]domain.Notification, int32, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.Repos().Notifications.List(ctx, actor.AccountID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, actor Actor, notificationID int32) error {
	return s.store.Repos().Notifications.MarkAsRead(ctx, notificationID, actor.AccountID)
}
