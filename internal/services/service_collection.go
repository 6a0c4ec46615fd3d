package services

import (
	"fmt"

	"mahberhub/internal/cache"
	"mahberhub/internal/config"
	"mahberhub/internal/repositories"

	"go.uber.org/zap"
)

// Collection bundles every service for dependency injection
type Collection struct {
	Auth          AuthService
	Admin         AdminService
	Classes       ClassService
	Posts         PostService
	Announcements AnnouncementService
	Messages      MessageService
	Notifications NotificationService
	Uploads       UploadService
}

// NewCollection wires the service graph. The realtime publisher is
// injected so the websocket hub can live outside this package.
func NewCollection(
	repos *repositories.Collection,
	c cache.Cache,
	cfg *config.Config,
	realtime RealtimePublisher,
	logger *zap.Logger,
) (*Collection, error) {
	uploads, err := NewUploadService(&cfg.Uploads, logger)
	if err != nil {
		return nil, fmt.Errorf("init upload service: %w", err)
	}

	notifications := NewNotificationService(repos.Notifications, realtime, logger)

	return &Collection{
		Auth:          NewAuthService(repos.Users, repos.Classes, c, &cfg.Auth, logger),
		Admin:         NewAdminService(repos.Users, repos.Classes, repos.Activity, c, logger),
		Classes:       NewClassService(repos.Classes, c, logger),
		Posts:         NewPostService(repos.Posts, repos.Comments, repos.Classes, repos.Users, repos.Activity, notifications, logger),
		Announcements: NewAnnouncementService(repos.Announcements, repos.Classes, repos.Users, notifications, logger),
		Messages:      NewMessageService(repos.Messages, repos.Users, notifications, realtime, logger),
		Notifications: notifications,
		Uploads:       uploads,
	}, nil
}
