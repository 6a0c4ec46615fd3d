package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"mahberhub/internal/models"
	"mahberhub/internal/repositories"
)

// Function-field fakes for the repository interfaces. Unset lookup
// functions behave as not found; unset mutations succeed.

type fakeUserRepo struct {
	CreateFn               func(ctx context.Context, user *models.User) error
	GetByIDFn              func(ctx context.Context, id int64) (*models.User, error)
	GetByEmailFn           func(ctx context.Context, email string) (*models.User, error)
	GetByUsernameFn        func(ctx context.Context, username string) (*models.User, error)
	GetByIdentifierFn      func(ctx context.Context, identifier string) (*models.User, error)
	TransitionStatusFn     func(ctx context.Context, userID int64, allowedFrom []string, to string) (*models.User, error)
	TransitionBothFn       func(ctx context.Context, userID int64, allowedFrom []string, to string, newClassID int64) (*models.User, error)
	PromoteLeaderFn        func(ctx context.Context, userID, classID int64) (*models.User, error)
	DemoteLeaderFn         func(ctx context.Context, userID int64) (*models.User, error)
	UpdateRoleFn           func(ctx context.Context, userID int64, role string) (*models.User, error)
	ChangeClassFn          func(ctx context.Context, userID, classID int64) (*models.User, error)
	SearchActiveFn         func(ctx context.Context, query string, roles []string, limit int) ([]*models.UserSummary, error)
	ActiveUserIDsFn        func(ctx context.Context) ([]int64, error)
	ActiveUserIDsByClassFn func(ctx context.Context, classID int64) ([]int64, error)
	LeaderUserIDsFn        func(ctx context.Context) ([]int64, error)
	ListFn                 func(ctx context.Context, filter repositories.UserFilter, opts repositories.ListOptions) ([]*models.User, int64, error)
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, user)
	}
	user.ID = 1
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.GetByIDFn != nil {
		return f.GetByIDFn(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.GetByEmailFn != nil {
		return f.GetByEmailFn(ctx, email)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.GetByUsernameFn != nil {
		return f.GetByUsernameFn(ctx, username)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if f.GetByIdentifierFn != nil {
		return f.GetByIdentifierFn(ctx, identifier)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, user *models.User) error { return nil }

func (f *fakeUserRepo) UpdateProfileImage(ctx context.Context, userID int64, imageURL string) error {
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context, filter repositories.UserFilter, opts repositories.ListOptions) ([]*models.User, int64, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx, filter, opts)
	}
	return nil, 0, nil
}

func (f *fakeUserRepo) SearchActive(ctx context.Context, query string, roles []string, limit int) ([]*models.UserSummary, error) {
	if f.SearchActiveFn != nil {
		return f.SearchActiveFn(ctx, query, roles, limit)
	}
	return nil, nil
}

func (f *fakeUserRepo) TransitionStatus(ctx context.Context, userID int64, allowedFrom []string, to string) (*models.User, error) {
	if f.TransitionStatusFn != nil {
		return f.TransitionStatusFn(ctx, userID, allowedFrom, to)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) TransitionStatusAndClass(ctx context.Context, userID int64, allowedFrom []string, to string, newClassID int64) (*models.User, error) {
	if f.TransitionBothFn != nil {
		return f.TransitionBothFn(ctx, userID, allowedFrom, to, newClassID)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) PromoteLeader(ctx context.Context, userID, classID int64) (*models.User, error) {
	if f.PromoteLeaderFn != nil {
		return f.PromoteLeaderFn(ctx, userID, classID)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) DemoteLeader(ctx context.Context, userID int64) (*models.User, error) {
	if f.DemoteLeaderFn != nil {
		return f.DemoteLeaderFn(ctx, userID)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, userID int64, role string) (*models.User, error) {
	if f.UpdateRoleFn != nil {
		return f.UpdateRoleFn(ctx, userID, role)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) ChangeClass(ctx context.Context, userID, classID int64) (*models.User, error) {
	if f.ChangeClassFn != nil {
		return f.ChangeClassFn(ctx, userID, classID)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	return &models.DashboardStats{}, nil
}

func (f *fakeUserRepo) ActiveUserIDs(ctx context.Context) ([]int64, error) {
	if f.ActiveUserIDsFn != nil {
		return f.ActiveUserIDsFn(ctx)
	}
	return nil, nil
}

func (f *fakeUserRepo) ActiveUserIDsByClass(ctx context.Context, classID int64) ([]int64, error) {
	if f.ActiveUserIDsByClassFn != nil {
		return f.ActiveUserIDsByClassFn(ctx, classID)
	}
	return nil, nil
}

func (f *fakeUserRepo) LeaderUserIDs(ctx context.Context) ([]int64, error) {
	if f.LeaderUserIDsFn != nil {
		return f.LeaderUserIDsFn(ctx)
	}
	return nil, nil
}

type fakeClassRepo struct {
	ListFn        func(ctx context.Context) ([]*models.ServiceClass, error)
	GetByIDFn     func(ctx context.Context, id int64) (*models.ServiceClass, error)
	GetByNameFn   func(ctx context.Context, name string) (*models.ServiceClass, error)
	ListMembersFn func(ctx context.Context, classID int64, opts repositories.ListOptions) ([]*models.User, int64, error)
}

func (f *fakeClassRepo) List(ctx context.Context) ([]*models.ServiceClass, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx)
	}
	return nil, nil
}

func (f *fakeClassRepo) GetByID(ctx context.Context, id int64) (*models.ServiceClass, error) {
	if f.GetByIDFn != nil {
		return f.GetByIDFn(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeClassRepo) GetByName(ctx context.Context, name string) (*models.ServiceClass, error) {
	if f.GetByNameFn != nil {
		return f.GetByNameFn(ctx, name)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeClassRepo) ListMembers(ctx context.Context, classID int64, opts repositories.ListOptions) ([]*models.User, int64, error) {
	if f.ListMembersFn != nil {
		return f.ListMembersFn(ctx, classID, opts)
	}
	return nil, 0, nil
}

type fakePostRepo struct {
	CreateFn         func(ctx context.Context, post *models.Post) error
	GetByIDFn        func(ctx context.Context, id int64) (*models.Post, error)
	ListFeedFn       func(ctx context.Context, feed repositories.FeedOptions, opts repositories.ListOptions) ([]*models.Post, int64, error)
	DeleteFn         func(ctx context.Context, id int64) error
	SetPinnedFn      func(ctx context.Context, id int64, pinned bool) error
	UpsertReactionFn func(ctx context.Context, reaction *models.PostReaction) error
	DeleteReactionFn func(ctx context.Context, postID, userID int64) error
	ReactionCountsFn func(ctx context.Context, postID int64) (*models.ReactionCounts, error)
}

func (f *fakePostRepo) Create(ctx context.Context, post *models.Post) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, post)
	}
	post.ID = 1
	return nil
}

func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	if f.GetByIDFn != nil {
		return f.GetByIDFn(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (f *fakePostRepo) ListFeed(ctx context.Context, feed repositories.FeedOptions, opts repositories.ListOptions) ([]*models.Post, int64, error) {
	if f.ListFeedFn != nil {
		return f.ListFeedFn(ctx, feed, opts)
	}
	return nil, 0, nil
}

func (f *fakePostRepo) Delete(ctx context.Context, id int64) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, id)
	}
	return nil
}

func (f *fakePostRepo) SetPinned(ctx context.Context, id int64, pinned bool) error {
	if f.SetPinnedFn != nil {
		return f.SetPinnedFn(ctx, id, pinned)
	}
	return nil
}

func (f *fakePostRepo) UpsertReaction(ctx context.Context, reaction *models.PostReaction) error {
	if f.UpsertReactionFn != nil {
		return f.UpsertReactionFn(ctx, reaction)
	}
	return nil
}

func (f *fakePostRepo) DeleteReaction(ctx context.Context, postID, userID int64) error {
	if f.DeleteReactionFn != nil {
		return f.DeleteReactionFn(ctx, postID, userID)
	}
	return nil
}

func (f *fakePostRepo) ReactionCounts(ctx context.Context, postID int64) (*models.ReactionCounts, error) {
	if f.ReactionCountsFn != nil {
		return f.ReactionCountsFn(ctx, postID)
	}
	return &models.ReactionCounts{}, nil
}

func (f *fakePostRepo) UserReaction(ctx context.Context, postID, userID int64) (*models.PostReaction, error) {
	return nil, sql.ErrNoRows
}

type fakeCommentRepo struct {
	CreateFn     func(ctx context.Context, comment *models.Comment) error
	GetByIDFn    func(ctx context.Context, id int64) (*models.Comment, error)
	ListByPostFn func(ctx context.Context, postID int64) ([]*models.Comment, error)
	DeleteFn     func(ctx context.Context, id int64) error
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, comment)
	}
	comment.ID = 1
	return nil
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	if f.GetByIDFn != nil {
		return f.GetByIDFn(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCommentRepo) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	if f.ListByPostFn != nil {
		return f.ListByPostFn(ctx, postID)
	}
	return nil, nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id int64) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, id)
	}
	return nil
}

type fakeAnnouncementRepo struct {
	CreateFn      func(ctx context.Context, announcement *models.Announcement) error
	GetByIDFn     func(ctx context.Context, id int64) (*models.Announcement, error)
	ListVisibleFn func(ctx context.Context, feed repositories.FeedOptions, opts repositories.ListOptions) ([]*models.Announcement, int64, error)
	DeleteFn      func(ctx context.Context, id int64) error
	SetPinnedFn   func(ctx context.Context, id int64, pinned bool) error
}

func (f *fakeAnnouncementRepo) Create(ctx context.Context, announcement *models.Announcement) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, announcement)
	}
	announcement.ID = 1
	return nil
}

func (f *fakeAnnouncementRepo) GetByID(ctx context.Context, id int64) (*models.Announcement, error) {
	if f.GetByIDFn != nil {
		return f.GetByIDFn(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAnnouncementRepo) ListVisible(ctx context.Context, feed repositories.FeedOptions, opts repositories.ListOptions) ([]*models.Announcement, int64, error) {
	if f.ListVisibleFn != nil {
		return f.ListVisibleFn(ctx, feed, opts)
	}
	return nil, 0, nil
}

func (f *fakeAnnouncementRepo) Delete(ctx context.Context, id int64) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, id)
	}
	return nil
}

func (f *fakeAnnouncementRepo) SetPinned(ctx context.Context, id int64, pinned bool) error {
	if f.SetPinnedFn != nil {
		return f.SetPinnedFn(ctx, id, pinned)
	}
	return nil
}

type fakeMessageRepo struct {
	CreateFn               func(ctx context.Context, message *models.Message) error
	ConversationFn         func(ctx context.Context, userID, peerID int64, opts repositories.ListOptions) ([]*models.Message, int64, error)
	MarkConversationReadFn func(ctx context.Context, receiverID, senderID int64) error
	ListConversationsFn    func(ctx context.Context, userID int64) ([]*models.Conversation, error)
	UnreadCountFn          func(ctx context.Context, userID int64) (int64, error)
}

func (f *fakeMessageRepo) Create(ctx context.Context, message *models.Message) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, message)
	}
	message.ID = 1
	return nil
}

func (f *fakeMessageRepo) Conversation(ctx context.Context, userID, peerID int64, opts repositories.ListOptions) ([]*models.Message, int64, error) {
	if f.ConversationFn != nil {
		return f.ConversationFn(ctx, userID, peerID, opts)
	}
	return nil, 0, nil
}

func (f *fakeMessageRepo) MarkConversationRead(ctx context.Context, receiverID, senderID int64) error {
	if f.MarkConversationReadFn != nil {
		return f.MarkConversationReadFn(ctx, receiverID, senderID)
	}
	return nil
}

func (f *fakeMessageRepo) ListConversations(ctx context.Context, userID int64) ([]*models.Conversation, error) {
	if f.ListConversationsFn != nil {
		return f.ListConversationsFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeMessageRepo) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	if f.UnreadCountFn != nil {
		return f.UnreadCountFn(ctx, userID)
	}
	return 0, nil
}

// fakeNotificationRepo records everything written to it
type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*models.Notification
}

func (f *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	notification.ID = int64(len(f.created) + 1)
	f.created = append(f.created, notification)
	return nil
}

func (f *fakeNotificationRepo) CreateBulk(ctx context.Context, notifications []*models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, notifications...)
	return nil
}

func (f *fakeNotificationRepo) List(ctx context.Context, userID int64, opts repositories.ListOptions) ([]*models.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for _, n := range f.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotificationRepo) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.created {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, userID, notificationID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.created {
		if n.ID == notificationID && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.created {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) all() []*models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.Notification(nil), f.created...)
}

// fakeActivityRepo records audit entries and warnings
type fakeActivityRepo struct {
	mu       sync.Mutex
	logs     []*models.ActivityLog
	warnings []*models.Warning
}

func (f *fakeActivityRepo) Log(ctx context.Context, entry *models.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, entry)
	return nil
}

func (f *fakeActivityRepo) List(ctx context.Context, opts repositories.ListOptions) ([]*models.ActivityLog, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logs, int64(len(f.logs)), nil
}

func (f *fakeActivityRepo) CreateWarning(ctx context.Context, warning *models.Warning) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warnings = append(f.warnings, warning)
	return nil
}

func (f *fakeActivityRepo) ListWarnings(ctx context.Context, userID int64) ([]*models.Warning, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Warning
	for _, w := range f.warnings {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

// fakeRealtime records published events
type fakeRealtime struct {
	mu     sync.Mutex
	events []fakeEvent
}

type fakeEvent struct {
	UserID int64
	Event  string
}

func (f *fakeRealtime) Publish(userID int64, event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, fakeEvent{UserID: userID, Event: event})
}

// noopCache never hits so services always fall through to the repos
type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}
func (noopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (noopCache) Delete(ctx context.Context, key string) error        { return nil }
func (noopCache) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (noopCache) Health(ctx context.Context) error                    { return nil }
func (noopCache) Close() error                                        { return nil }

func ptr[T any](v T) *T { return &v }
