package services

import (
	"context"

	"mahberhub/internal/models"
	"mahberhub/internal/repositories"

	"go.uber.org/zap"
)

type notificationService struct {
	notifications repositories.NotificationRepository
	realtime      RealtimePublisher
	logger        *zap.Logger
}

// NewNotificationService creates the notification fan-out service
func NewNotificationService(
	notifications repositories.NotificationRepository,
	realtime RealtimePublisher,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{notifications: notifications, realtime: realtime, logger: logger}
}

func (s *notificationService) List(ctx context.Context, userID int64, page Page) (*NotificationFeed, error) {
	notifications, total, err := s.notifications.List(ctx, userID, page.opts())
	if err != nil {
		return nil, NewInternalError("failed to list notifications", err)
	}
	unread, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to count unread notifications", err)
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	return &NotificationFeed{
		Notifications: notifications,
		UnreadCount:   unread,
		TotalCount:    total,
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	if err := s.notifications.MarkRead(ctx, userID, notificationID); err != nil {
		if repositories.IsNotFound(err) {
			return NewNotFoundError("notification not found")
		}
		return NewInternalError("failed to mark notification read", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int64) error {
	if err := s.notifications.MarkAllRead(ctx, userID); err != nil {
		return NewInternalError("failed to mark notifications read", err)
	}
	return nil
}

// Notify stores a single notification. Nothing is recorded when the
// recipient is the actor themselves.
func (s *notificationService) Notify(ctx context.Context, notification *models.Notification) error {
	if notification.UserID == notification.ActorID {
		return nil
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return err
	}
	s.realtime.Publish(notification.UserID, "notification", notification)
	return nil
}

// NotifyMany fans out the template to every recipient except the
// actor.
func (s *notificationService) NotifyMany(ctx context.Context, userIDs []int64, template *models.Notification) error {
	records := make([]*models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		if id == template.ActorID {
			continue
		}
		records = append(records, &models.Notification{
			UserID:     id,
			ActorID:    template.ActorID,
			Type:       template.Type,
			Content:    template.Content,
			LinkTarget: template.LinkTarget,
		})
	}
	if len(records) == 0 {
		return nil
	}

	if err := s.notifications.CreateBulk(ctx, records); err != nil {
		return err
	}

	for _, n := range records {
		s.realtime.Publish(n.UserID, "notification", n)
	}
	s.logger.Debug("notifications fanned out",
		zap.String("type", template.Type),
		zap.Int("recipients", len(records)),
	)
	return nil
}
