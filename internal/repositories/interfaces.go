package repositories

import (
	"context"
	"errors"

	"mahberhub/internal/models"
)

// ErrInvalidTransition is returned when a guarded status transition
// finds the user in a state the transition does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// ListOptions carries pagination for list queries
type ListOptions struct {
	Limit  int
	Offset int
}

// UserFilter narrows admin user listings
type UserFilter struct {
	Status  string
	ClassID int64
	Search  string
}

// FeedOptions scopes post and announcement listings to a viewer.
// All bypasses class scoping (SUPER_ADMIN).
type FeedOptions struct {
	All      bool
	ClassID  int64
	IsLeader bool
}

// UserRepository handles user persistence
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateProfileImage(ctx context.Context, userID int64, imageURL string) error
	List(ctx context.Context, filter UserFilter, opts ListOptions) ([]*models.User, int64, error)
	SearchActive(ctx context.Context, query string, roles []string, limit int) ([]*models.UserSummary, error)

	// Guarded transitions lock the user row, verify the current
	// status is in allowedFrom and apply the change atomically.
	TransitionStatus(ctx context.Context, userID int64, allowedFrom []string, to string) (*models.User, error)
	TransitionStatusAndClass(ctx context.Context, userID int64, allowedFrom []string, to string, newClassID int64) (*models.User, error)

	// PromoteLeader demotes the class's current leader (if any) and
	// installs userID as CLASS_LEADER of classID, in one transaction.
	PromoteLeader(ctx context.Context, userID, classID int64) (*models.User, error)
	DemoteLeader(ctx context.Context, userID int64) (*models.User, error)
	UpdateRole(ctx context.Context, userID int64, role string) (*models.User, error)
	ChangeClass(ctx context.Context, userID, classID int64) (*models.User, error)

	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	ActiveUserIDs(ctx context.Context) ([]int64, error)
	ActiveUserIDsByClass(ctx context.Context, classID int64) ([]int64, error)
	LeaderUserIDs(ctx context.Context) ([]int64, error)
}

// ClassRepository handles service class persistence
type ClassRepository interface {
	List(ctx context.Context) ([]*models.ServiceClass, error)
	GetByID(ctx context.Context, id int64) (*models.ServiceClass, error)
	GetByName(ctx context.Context, name string) (*models.ServiceClass, error)
	ListMembers(ctx context.Context, classID int64, opts ListOptions) ([]*models.User, int64, error)
}

// PostRepository handles posts and reactions
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	ListFeed(ctx context.Context, feed FeedOptions, opts ListOptions) ([]*models.Post, int64, error)
	Delete(ctx context.Context, id int64) error
	SetPinned(ctx context.Context, id int64, pinned bool) error

	UpsertReaction(ctx context.Context, reaction *models.PostReaction) error
	DeleteReaction(ctx context.Context, postID, userID int64) error
	ReactionCounts(ctx context.Context, postID int64) (*models.ReactionCounts, error)
	UserReaction(ctx context.Context, postID, userID int64) (*models.PostReaction, error)
}

// CommentRepository handles comments
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error)
	Delete(ctx context.Context, id int64) error
}

// AnnouncementRepository handles announcements
type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	GetByID(ctx context.Context, id int64) (*models.Announcement, error)
	ListVisible(ctx context.Context, feed FeedOptions, opts ListOptions) ([]*models.Announcement, int64, error)
	Delete(ctx context.Context, id int64) error
	SetPinned(ctx context.Context, id int64, pinned bool) error
}

// MessageRepository handles direct messages
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	Conversation(ctx context.Context, userID, peerID int64, opts ListOptions) ([]*models.Message, int64, error)
	MarkConversationRead(ctx context.Context, receiverID, senderID int64) error
	ListConversations(ctx context.Context, userID int64) ([]*models.Conversation, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
}

// NotificationRepository handles notification fan-out records
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBulk(ctx context.Context, notifications []*models.Notification) error
	List(ctx context.Context, userID int64, opts ListOptions) ([]*models.Notification, int64, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

// ActivityRepository handles admin audit logs and warnings
type ActivityRepository interface {
	Log(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, opts ListOptions) ([]*models.ActivityLog, int64, error)
	CreateWarning(ctx context.Context, warning *models.Warning) error
	ListWarnings(ctx context.Context, userID int64) ([]*models.Warning, error)
}

// Collection bundles all repositories for dependency injection
type Collection struct {
	Users         UserRepository
	Classes       ClassRepository
	Posts         PostRepository
	Comments      CommentRepository
	Announcements AnnouncementRepository
	Messages      MessageRepository
	Notifications NotificationRepository
	Activity      ActivityRepository
}
