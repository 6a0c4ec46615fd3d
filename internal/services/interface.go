package services

import (
	"context"
	"io"

	"mahberhub/internal/contextutils"
	"mahberhub/internal/models"
	"mahberhub/internal/repositories"
)

// Page carries pagination through the service layer
type Page struct {
	Limit  int
	Offset int
}

func (p Page) opts() repositories.ListOptions {
	return repositories.ListOptions{Limit: p.Limit, Offset: p.Offset}
}

// AuthResult bundles the signed token with the user it identifies
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// NotificationFeed bundles a notification page with the unread count
type NotificationFeed struct {
	Notifications []*models.Notification `json:"notifications"`
	UnreadCount   int64                  `json:"unread_count"`
	TotalCount    int64                  `json:"total_count"`
}

// AuthService handles registration, login and profile management
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResult, error)
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*models.User, error)
	SetProfileImage(ctx context.Context, userID int64, imageURL string) (*models.User, error)

	// Identity resolves the authoritative role and status for a
	// token's subject, via a short-lived cache.
	Identity(ctx context.Context, userID int64) (*contextutils.Identity, error)
	VerifyToken(tokenString string) (int64, error)
}

// AdminService handles membership administration. Every mutation is
// audit-logged with the actor and client IP from the context.
type AdminService interface {
	ListUsers(ctx context.Context, actor *contextutils.Identity, filter repositories.UserFilter, page Page) ([]*models.User, int64, error)
	ApproveUser(ctx context.Context, actor *contextutils.Identity, userID int64) (*models.User, error)
	RejectUser(ctx context.Context, actor *contextutils.Identity, userID int64) (*models.User, error)
	SuspendUser(ctx context.Context, actor *contextutils.Identity, userID int64, req *SuspendUserRequest) (*models.User, error)
	ReactivateUser(ctx context.Context, actor *contextutils.Identity, userID int64) (*models.User, error)
	PromoteLeader(ctx context.Context, actor *contextutils.Identity, userID int64, req *PromoteLeaderRequest) (*models.User, error)
	DemoteLeader(ctx context.Context, actor *contextutils.Identity, userID int64) (*models.User, error)
	PromoteRole(ctx context.Context, actor *contextutils.Identity, userID int64, req *PromoteRoleRequest) (*models.User, error)
	ChangeClass(ctx context.Context, actor *contextutils.Identity, userID int64, req *ChangeClassRequest) (*models.User, error)

	OfficeData(ctx context.Context, actor *contextutils.Identity) (*models.OfficeData, error)
	PendingOfficeRequests(ctx context.Context) ([]*models.User, error)
	ApproveOfficeMember(ctx context.Context, actor *contextutils.Identity, userID int64) (*models.User, error)
	DisapproveOfficeMember(ctx context.Context, actor *contextutils.Identity, userID int64) (*models.User, error)

	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	ActivityLogs(ctx context.Context, page Page) ([]*models.ActivityLog, int64, error)
	UserWarnings(ctx context.Context, userID int64) ([]*models.Warning, error)
}

// ClassService exposes the service class directory
type ClassService interface {
	ListClasses(ctx context.Context) ([]*models.ServiceClass, error)
	GetClass(ctx context.Context, id int64) (*models.ServiceClass, error)
	ListMembers(ctx context.Context, actor *contextutils.Identity, classID int64, page Page) ([]*models.User, int64, error)
}

// PostService handles posts, reactions and comments
type PostService interface {
	CreatePost(ctx context.Context, actor *contextutils.Identity, req *CreatePostRequest) (*models.Post, error)
	ListPosts(ctx context.Context, actor *contextutils.Identity, page Page) ([]*models.Post, int64, error)
	GetPost(ctx context.Context, actor *contextutils.Identity, postID int64) (*models.Post, error)
	DeletePost(ctx context.Context, actor *contextutils.Identity, postID int64) error
	TogglePin(ctx context.Context, actor *contextutils.Identity, postID int64) (*models.Post, error)

	React(ctx context.Context, actor *contextutils.Identity, postID int64, req *ReactRequest) (*models.ReactionCounts, error)
	RemoveReaction(ctx context.Context, actor *contextutils.Identity, postID int64) (*models.ReactionCounts, error)

	ListComments(ctx context.Context, postID int64) ([]*models.Comment, error)
	AddComment(ctx context.Context, actor *contextutils.Identity, postID int64, req *CreateCommentRequest) (*models.Comment, error)
	DeleteComment(ctx context.Context, actor *contextutils.Identity, postID, commentID int64) error
}

// AnnouncementService handles broadcast announcements
type AnnouncementService interface {
	Create(ctx context.Context, actor *contextutils.Identity, req *CreateAnnouncementRequest) (*models.Announcement, error)
	List(ctx context.Context, actor *contextutils.Identity, page Page) ([]*models.Announcement, int64, error)
	Delete(ctx context.Context, actor *contextutils.Identity, announcementID int64) error
	TogglePin(ctx context.Context, actor *contextutils.Identity, announcementID int64) (*models.Announcement, error)
}

// MessageService handles direct messaging
type MessageService interface {
	Send(ctx context.Context, actor *contextutils.Identity, req *SendMessageRequest) (*models.Message, error)
	Conversation(ctx context.Context, actor *contextutils.Identity, peerID int64, page Page) ([]*models.Message, int64, error)
	Conversations(ctx context.Context, actor *contextutils.Identity) ([]*models.Conversation, error)
	UnreadCount(ctx context.Context, actor *contextutils.Identity) (int64, error)
	SearchUsers(ctx context.Context, actor *contextutils.Identity, query string) ([]*models.UserSummary, error)
}

// NotificationService handles fan-out and delivery. Notify and
// NotifyMany suppress records addressed to the actor themselves.
type NotificationService interface {
	List(ctx context.Context, userID int64, page Page) (*NotificationFeed, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) error

	Notify(ctx context.Context, notification *models.Notification) error
	NotifyMany(ctx context.Context, userIDs []int64, template *models.Notification) error
}

// UploadService stores image uploads on local disk
type UploadService interface {
	SaveImage(ctx context.Context, filename string, size int64, content io.Reader) (string, error)
}

// RealtimePublisher pushes events to connected websocket clients.
// Delivery is best effort; offline users rely on the stored records.
type RealtimePublisher interface {
	Publish(userID int64, event string, payload interface{})
}
