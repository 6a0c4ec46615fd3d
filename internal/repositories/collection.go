package repositories

import (
	"mahberhub/internal/database"

	"go.uber.org/zap"
)

// NewCollection wires every repository against the shared manager
func NewCollection(db *database.Manager, logger *zap.Logger) *Collection {
	return &Collection{
		Users:         NewUserRepository(db, logger),
		Classes:       NewClassRepository(db, logger),
		Posts:         NewPostRepository(db, logger),
		Comments:      NewCommentRepository(db, logger),
		Announcements: NewAnnouncementRepository(db, logger),
		Messages:      NewMessageRepository(db, logger),
		Notifications: NewNotificationRepository(db, logger),
		Activity:      NewActivityRepository(db, logger),
	}
}
