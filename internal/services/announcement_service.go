package services

import (
	"context"
	"fmt"

	"mahberhub/internal/contextutils"
	"mahberhub/internal/models"
	"mahberhub/internal/repositories"
	"mahberhub/internal/validation"

	"go.uber.org/zap"
)

type announcementService struct {
	announcements repositories.AnnouncementRepository
	classes       repositories.ClassRepository
	users         repositories.UserRepository
	notifications NotificationService
	logger        *zap.Logger
}

// NewAnnouncementService creates the announcement service
func NewAnnouncementService(
	announcements repositories.AnnouncementRepository,
	classes repositories.ClassRepository,
	users repositories.UserRepository,
	notifications NotificationService,
	logger *zap.Logger,
) AnnouncementService {
	return &announcementService{
		announcements: announcements,
		classes:       classes,
		users:         users,
		notifications: notifications,
		logger:        logger,
	}
}

// Create publishes an announcement and fans out notifications to its
// audience. Restricted to administrators and class leaders.
func (s *announcementService) Create(ctx context.Context, actor *contextutils.Identity, req *CreateAnnouncementRequest) (*models.Announcement, error) {
	if !actor.IsSuperAdmin() && !actor.IsClassLeader() {
		return nil, NewForbiddenError("only administrators and class leaders can create announcements")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.TargetType == models.AnnouncementTargetClass {
		if req.TargetClassID == nil {
			return nil, NewBadRequestError("target_class_id is required when target type is CLASS")
		}
		if _, err := s.classes.GetByID(ctx, *req.TargetClassID); err != nil {
			if repositories.IsNotFound(err) {
				return nil, NewNotFoundError("target class not found")
			}
			return nil, NewInternalError("failed to look up target class", err)
		}
	}

	announcement := &models.Announcement{
		AuthorID:      actor.UserID,
		Title:         req.Title,
		Content:       req.Content,
		TargetType:    req.TargetType,
		TargetClassID: req.TargetClassID,
		ScheduledAt:   req.ScheduledAt,
	}
	if err := s.announcements.Create(ctx, announcement); err != nil {
		return nil, NewInternalError("failed to create announcement", err)
	}

	if req.IsPinned {
		if err := s.announcements.SetPinned(ctx, announcement.ID, true); err != nil {
			s.logger.Error("failed to pin new announcement", zap.Error(err))
		} else {
			announcement.IsPinned = true
		}
	}

	s.fanOut(ctx, actor, announcement)

	return s.announcements.GetByID(ctx, announcement.ID)
}

// fanOut resolves the audience and writes notification records.
// ALL reaches every active user, CLASS the class roster, LEADERS all
// class leaders and administrators.
func (s *announcementService) fanOut(ctx context.Context, actor *contextutils.Identity, announcement *models.Announcement) {
	var (
		targetIDs []int64
		err       error
	)
	switch announcement.TargetType {
	case models.AnnouncementTargetAll:
		targetIDs, err = s.users.ActiveUserIDs(ctx)
	case models.AnnouncementTargetClass:
		if announcement.TargetClassID != nil {
			targetIDs, err = s.users.ActiveUserIDsByClass(ctx, *announcement.TargetClassID)
		}
	case models.AnnouncementTargetLeaders:
		targetIDs, err = s.users.LeaderUserIDs(ctx)
	}
	if err != nil {
		s.logger.Error("failed to resolve announcement audience",
			zap.Int64("announcement_id", announcement.ID), zap.Error(err))
		return
	}

	link := "/dashboard/announcements"
	template := &models.Notification{
		ActorID:    actor.UserID,
		Type:       models.NotificationAnnouncement,
		Content:    fmt.Sprintf("New announcement: %s", announcement.Title),
		LinkTarget: &link,
	}
	if err := s.notifications.NotifyMany(ctx, targetIDs, template); err != nil {
		s.logger.Error("failed to fan out announcement notifications",
			zap.Int64("announcement_id", announcement.ID), zap.Error(err))
	}
}

// List returns announcements visible to the viewer, pinned first.
// Admins see every announcement regardless of target.
func (s *announcementService) List(ctx context.Context, actor *contextutils.Identity, page Page) ([]*models.Announcement, int64, error) {
	feed := repositories.FeedOptions{
		All:      actor.IsSuperAdmin(),
		ClassID:  actor.EffectiveClassID(),
		IsLeader: actor.IsClassLeader(),
	}
	announcements, total, err := s.announcements.ListVisible(ctx, feed, page.opts())
	if err != nil {
		return nil, 0, NewInternalError("failed to list announcements", err)
	}
	return announcements, total, nil
}

func (s *announcementService) Delete(ctx context.Context, actor *contextutils.Identity, announcementID int64) error {
	if !actor.IsSuperAdmin() {
		return NewForbiddenError("only an administrator can delete announcements")
	}
	if err := s.announcements.Delete(ctx, announcementID); err != nil {
		if repositories.IsNotFound(err) {
			return NewNotFoundError("announcement not found")
		}
		return NewInternalError("failed to delete announcement", err)
	}
	return nil
}

func (s *announcementService) TogglePin(ctx context.Context, actor *contextutils.Identity, announcementID int64) (*models.Announcement, error) {
	if !actor.IsSuperAdmin() {
		return nil, NewForbiddenError("only an administrator can pin announcements")
	}

	announcement, err := s.announcements.GetByID(ctx, announcementID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("announcement not found")
		}
		return nil, NewInternalError("failed to load announcement", err)
	}

	if err := s.announcements.SetPinned(ctx, announcementID, !announcement.IsPinned); err != nil {
		return nil, NewInternalError("failed to toggle pin", err)
	}
	return s.announcements.GetByID(ctx, announcementID)
}
