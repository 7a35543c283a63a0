package service

import (
	"context"

	"omegavideos/internal/model"
	"omegavideos/internal/repository"
)

type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) List(ctx context.Context, userID int64) ([]model.Notification, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, userID, model.MaxNotificationList)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	if err := requireActor(userID); err != nil {
		return 0, err
	}
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead with nil ids marks everything read. A non-nil slice marks only
// those ids, so an empty slice marks nothing.
func (s *NotificationService) MarkRead(ctx context.Context, userID int64, ids []int64) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	if ids == nil {
		return s.repo.MarkAllRead(ctx, userID)
	}
	return s.repo.MarkRead(ctx, userID, ids)
}

func (s *NotificationService) Delete(ctx context.Context, userID, id int64) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID, id)
}

func (s *NotificationService) Clear(ctx context.Context, userID int64) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	return s.repo.DeleteAll(ctx, userID)
}
