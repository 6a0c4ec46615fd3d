package services

import (
	"context"
	"strings"

	"mahberhub/internal/contextutils"
	"mahberhub/internal/models"
	"mahberhub/internal/repositories"
	"mahberhub/internal/validation"

	"go.uber.org/zap"
)

const userSearchLimit = 10

type messageService struct {
	messages      repositories.MessageRepository
	users         repositories.UserRepository
	notifications NotificationService
	realtime      RealtimePublisher
	logger        *zap.Logger
}

// NewMessageService creates the direct messaging service
func NewMessageService(
	messages repositories.MessageRepository,
	users repositories.UserRepository,
	notifications NotificationService,
	realtime RealtimePublisher,
	logger *zap.Logger,
) MessageService {
	return &messageService{
		messages:      messages,
		users:         users,
		notifications: notifications,
		realtime:      realtime,
		logger:        logger,
	}
}

// Send delivers a direct message. Ordinary members may only message
// leaders and administrators, never each other.
func (s *messageService) Send(ctx context.Context, actor *contextutils.Identity, req *SendMessageRequest) (*models.Message, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.ReceiverID == actor.UserID {
		return nil, NewBadRequestError("cannot message yourself")
	}

	receiver, err := s.users.GetByID(ctx, req.ReceiverID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("receiver not found")
		}
		return nil, NewInternalError("failed to look up receiver", err)
	}

	if actor.Role == models.RoleMember && receiver.Role == models.RoleMember {
		return nil, NewForbiddenError("members cannot message other members directly")
	}

	message := &models.Message{
		SenderID:   actor.UserID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, NewInternalError("failed to send message", err)
	}

	link := "/dashboard/messages"
	notification := &models.Notification{
		UserID:     req.ReceiverID,
		ActorID:    actor.UserID,
		Type:       models.NotificationMessage,
		Content:    "Sent you a message",
		LinkTarget: &link,
	}
	if err := s.notifications.Notify(ctx, notification); err != nil {
		s.logger.Error("failed to notify message receiver", zap.Error(err))
	}

	s.realtime.Publish(req.ReceiverID, "message", message)
	return message, nil
}

// Conversation returns the history with a peer, marking the peer's
// messages as read as a side effect of viewing them. The repository
// pages backwards from the latest message; the page is reversed here
// so clients always render history oldest first.
func (s *messageService) Conversation(ctx context.Context, actor *contextutils.Identity, peerID int64, page Page) ([]*models.Message, int64, error) {
	if _, err := s.users.GetByID(ctx, peerID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, 0, NewNotFoundError("user not found")
		}
		return nil, 0, NewInternalError("failed to look up user", err)
	}

	if err := s.messages.MarkConversationRead(ctx, actor.UserID, peerID); err != nil {
		s.logger.Error("failed to mark conversation read", zap.Error(err))
	}

	messages, total, err := s.messages.Conversation(ctx, actor.UserID, peerID, page.opts())
	if err != nil {
		return nil, 0, NewInternalError("failed to load conversation", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, total, nil
}

func (s *messageService) Conversations(ctx context.Context, actor *contextutils.Identity) ([]*models.Conversation, error) {
	conversations, err := s.messages.ListConversations(ctx, actor.UserID)
	if err != nil {
		return nil, NewInternalError("failed to list conversations", err)
	}
	return conversations, nil
}

func (s *messageService) UnreadCount(ctx context.Context, actor *contextutils.Identity) (int64, error) {
	count, err := s.messages.UnreadCount(ctx, actor.UserID)
	if err != nil {
		return 0, NewInternalError("failed to count unread messages", err)
	}
	return count, nil
}

// SearchUsers finds message recipients. Members only see leaders and
// administrators in results; queries under two characters return
// nothing. The role restriction runs inside the query so the result
// limit counts eligible users, not everyone who matched the name.
func (s *messageService) SearchUsers(ctx context.Context, actor *contextutils.Identity, query string) ([]*models.UserSummary, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < 2 {
		return []*models.UserSummary{}, nil
	}

	var roles []string
	if actor.Role == models.RoleMember {
		roles = []string{models.RoleClassLeader, models.RoleSuperAdmin}
	}

	results, err := s.users.SearchActive(ctx, query, roles, userSearchLimit+1)
	if err != nil {
		return nil, NewInternalError("failed to search users", err)
	}

	filtered := make([]*models.UserSummary, 0, len(results))
	for _, u := range results {
		if u.ID == actor.UserID {
			continue
		}
		filtered = append(filtered, u)
		if len(filtered) == userSearchLimit {
			break
		}
	}
	return filtered, nil
}
