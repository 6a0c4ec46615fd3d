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

type postService struct {
	posts         repositories.PostRepository
	comments      repositories.CommentRepository
	classes       repositories.ClassRepository
	users         repositories.UserRepository
	activity      repositories.ActivityRepository
	notifications NotificationService
	logger        *zap.Logger
}

// NewPostService creates the post, reaction and comment service
func NewPostService(
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	classes repositories.ClassRepository,
	users repositories.UserRepository,
	activity repositories.ActivityRepository,
	notifications NotificationService,
	logger *zap.Logger,
) PostService {
	return &postService{
		posts:         posts,
		comments:      comments,
		classes:       classes,
		users:         users,
		activity:      activity,
		notifications: notifications,
		logger:        logger,
	}
}

// CreatePost enforces the posting matrix: members cannot post, only
// admins post globally, and a class leader may only post into the
// class they lead.
func (s *postService) CreatePost(ctx context.Context, actor *contextutils.Identity, req *CreatePostRequest) (*models.Post, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	if actor.Role == models.RoleMember {
		return nil, NewForbiddenError("members cannot create posts")
	}
	if req.TargetType == models.PostTargetGlobal && !actor.IsSuperAdmin() {
		return nil, NewForbiddenError("only an administrator can create global posts")
	}

	if req.TargetType == models.PostTargetClass {
		if req.ServiceClassID == nil {
			return nil, NewBadRequestError("service_class_id is required for class posts")
		}
		if actor.IsClassLeader() && *req.ServiceClassID != actor.EffectiveClassID() {
			return nil, NewForbiddenError("class leaders can only post in their own class")
		}
		if _, err := s.classes.GetByID(ctx, *req.ServiceClassID); err != nil {
			if repositories.IsNotFound(err) {
				return nil, NewNotFoundError("service class not found")
			}
			return nil, NewInternalError("failed to look up service class", err)
		}
	}

	post := &models.Post{
		AuthorID:       actor.UserID,
		Title:          req.Title,
		Content:        req.Content,
		ImageURL:       req.ImageURL,
		TargetType:     req.TargetType,
		ServiceClassID: req.ServiceClassID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, NewInternalError("failed to create post", err)
	}

	s.logPostActivity(ctx, actor, post)
	s.fanOutPostNotifications(ctx, actor, post)

	return s.GetPost(ctx, actor, post.ID)
}

func (s *postService) logPostActivity(ctx context.Context, actor *contextutils.Identity, post *models.Post) {
	entry := &models.ActivityLog{
		ActorID:     actor.UserID,
		ActionType:  "CREATE_POST",
		Description: fmt.Sprintf("Created post: %q", post.Title),
	}
	if ip := contextutils.GetClientIP(ctx); ip != "" {
		entry.IPAddress = &ip
	}
	if err := s.activity.Log(ctx, entry); err != nil {
		s.logger.Error("failed to log post creation", zap.Error(err))
	}
}

// fanOutPostNotifications notifies the post's audience. Failures are
// logged; the post itself has already been created.
func (s *postService) fanOutPostNotifications(ctx context.Context, actor *contextutils.Identity, post *models.Post) {
	var (
		targetIDs []int64
		err       error
	)
	switch {
	case post.TargetType == models.PostTargetGlobal:
		targetIDs, err = s.users.ActiveUserIDs(ctx)
	case post.ServiceClassID != nil:
		targetIDs, err = s.users.ActiveUserIDsByClass(ctx, *post.ServiceClassID)
	}
	if err != nil {
		s.logger.Error("failed to resolve post audience", zap.Int64("post_id", post.ID), zap.Error(err))
		return
	}

	link := fmt.Sprintf("/dashboard/posts#%d", post.ID)
	template := &models.Notification{
		ActorID:    actor.UserID,
		Type:       models.NotificationPost,
		Content:    fmt.Sprintf("New post: %s", post.Title),
		LinkTarget: &link,
	}
	if err := s.notifications.NotifyMany(ctx, targetIDs, template); err != nil {
		s.logger.Error("failed to fan out post notifications", zap.Int64("post_id", post.ID), zap.Error(err))
	}
}

// ListPosts returns the viewer's feed: global posts plus their class
// posts, pinned first. Admins see every post.
func (s *postService) ListPosts(ctx context.Context, actor *contextutils.Identity, page Page) ([]*models.Post, int64, error) {
	feed := repositories.FeedOptions{
		All:     actor.IsSuperAdmin(),
		ClassID: actor.EffectiveClassID(),
	}
	posts, total, err := s.posts.ListFeed(ctx, feed, page.opts())
	if err != nil {
		return nil, 0, NewInternalError("failed to list posts", err)
	}
	return posts, total, nil
}

func (s *postService) GetPost(ctx context.Context, actor *contextutils.Identity, postID int64) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("post not found")
		}
		return nil, NewInternalError("failed to load post", err)
	}

	if post.TargetType == models.PostTargetClass && !actor.IsSuperAdmin() {
		if post.ServiceClassID == nil || *post.ServiceClassID != actor.EffectiveClassID() {
			if post.AuthorID != actor.UserID {
				return nil, NewForbiddenError("this post belongs to another class")
			}
		}
	}

	if reaction, err := s.posts.UserReaction(ctx, postID, actor.UserID); err == nil {
		post.UserReaction = &reaction.ReactionType
	} else if !repositories.IsNotFound(err) {
		return nil, NewInternalError("failed to load reaction", err)
	}
	return post, nil
}

// DeletePost allows the author, an administrator, or the leader of
// the post's class.
func (s *postService) DeletePost(ctx context.Context, actor *contextutils.Identity, postID int64) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return NewNotFoundError("post not found")
		}
		return NewInternalError("failed to load post", err)
	}

	if !s.canModerate(actor, post.AuthorID, post.ServiceClassID) {
		return NewForbiddenError("not authorized to delete this post")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return NewInternalError("failed to delete post", err)
	}
	return nil
}

// TogglePin flips the pinned flag. Admin only.
func (s *postService) TogglePin(ctx context.Context, actor *contextutils.Identity, postID int64) (*models.Post, error) {
	if !actor.IsSuperAdmin() {
		return nil, NewForbiddenError("only an administrator can pin posts")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("post not found")
		}
		return nil, NewInternalError("failed to load post", err)
	}

	if err := s.posts.SetPinned(ctx, postID, !post.IsPinned); err != nil {
		return nil, NewInternalError("failed to toggle pin", err)
	}
	return s.posts.GetByID(ctx, postID)
}

// React upserts the caller's reaction: one row per (post, user),
// re-reacting replaces the type.
func (s *postService) React(ctx context.Context, actor *contextutils.Identity, postID int64, req *ReactRequest) (*models.ReactionCounts, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	if _, err := s.GetPost(ctx, actor, postID); err != nil {
		return nil, err
	}

	reaction := &models.PostReaction{
		PostID:       postID,
		UserID:       actor.UserID,
		ReactionType: req.ReactionType,
	}
	if err := s.posts.UpsertReaction(ctx, reaction); err != nil {
		return nil, NewInternalError("failed to save reaction", err)
	}

	counts, err := s.posts.ReactionCounts(ctx, postID)
	if err != nil {
		return nil, NewInternalError("failed to count reactions", err)
	}
	counts.UserReaction = &reaction.ReactionType
	return counts, nil
}

func (s *postService) RemoveReaction(ctx context.Context, actor *contextutils.Identity, postID int64) (*models.ReactionCounts, error) {
	if _, err := s.GetPost(ctx, actor, postID); err != nil {
		return nil, err
	}

	if err := s.posts.DeleteReaction(ctx, postID, actor.UserID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("no reaction to remove")
		}
		return nil, NewInternalError("failed to remove reaction", err)
	}

	counts, err := s.posts.ReactionCounts(ctx, postID)
	if err != nil {
		return nil, NewInternalError("failed to count reactions", err)
	}
	return counts, nil
}

// ListComments returns the post's comments threaded one level deep
func (s *postService) ListComments(ctx context.Context, postID int64) ([]*models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("post not found")
		}
		return nil, NewInternalError("failed to load post", err)
	}

	flat, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, NewInternalError("failed to list comments", err)
	}
	return threadComments(flat), nil
}

// threadComments nests replies under their root comments
func threadComments(flat []*models.Comment) []*models.Comment {
	byID := make(map[int64]*models.Comment, len(flat))
	roots := make([]*models.Comment, 0, len(flat))

	for _, c := range flat {
		byID[c.ID] = c
		if c.ParentCommentID == nil {
			roots = append(roots, c)
		}
	}
	for _, c := range flat {
		if c.ParentCommentID != nil {
			if parent, ok := byID[*c.ParentCommentID]; ok {
				parent.Replies = append(parent.Replies, c)
			}
		}
	}
	return roots
}

// AddComment creates a comment or reply. Replies to replies are
// re-parented onto the root comment so threads stay one level deep.
// The parent comment's author (or the post author for top-level
// comments) is notified, unless they are the commenter.
func (s *postService) AddComment(ctx context.Context, actor *contextutils.Identity, postID int64, req *CreateCommentRequest) (*models.Comment, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("post not found")
		}
		return nil, NewInternalError("failed to load post", err)
	}

	parentID := req.ParentCommentID
	var parent *models.Comment
	if parentID != nil {
		parent, err = s.comments.GetByID(ctx, *parentID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return nil, NewNotFoundError("parent comment not found")
			}
			return nil, NewInternalError("failed to load parent comment", err)
		}
		if parent.PostID != postID {
			return nil, NewBadRequestError("parent comment does not belong to this post")
		}
		if parent.ParentCommentID != nil {
			rootID := *parent.ParentCommentID
			parentID = &rootID
			parent, err = s.comments.GetByID(ctx, rootID)
			if err != nil {
				return nil, NewInternalError("failed to load root comment", err)
			}
		}
	}

	comment := &models.Comment{
		PostID:          postID,
		UserID:          actor.UserID,
		Content:         req.Content,
		ParentCommentID: parentID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, NewInternalError("failed to create comment", err)
	}

	link := fmt.Sprintf("/dashboard/posts#%d", post.ID)
	if parent != nil {
		s.notifyQuietly(ctx, &models.Notification{
			UserID:     parent.UserID,
			ActorID:    actor.UserID,
			Type:       models.NotificationReply,
			Content:    "Replied to your comment",
			LinkTarget: &link,
		})
	} else {
		s.notifyQuietly(ctx, &models.Notification{
			UserID:     post.AuthorID,
			ActorID:    actor.UserID,
			Type:       models.NotificationReply,
			Content:    "Commented on your post",
			LinkTarget: &link,
		})
	}

	return s.comments.GetByID(ctx, comment.ID)
}

func (s *postService) notifyQuietly(ctx context.Context, n *models.Notification) {
	if err := s.notifications.Notify(ctx, n); err != nil {
		s.logger.Error("failed to send comment notification", zap.Error(err))
	}
}

// DeleteComment allows the comment author, an administrator, or the
// leader of the post's class.
func (s *postService) DeleteComment(ctx context.Context, actor *contextutils.Identity, postID, commentID int64) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return NewNotFoundError("comment not found")
		}
		return NewInternalError("failed to load comment", err)
	}
	if comment.PostID != postID {
		return NewBadRequestError("comment does not belong to this post")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return NewInternalError("failed to load post", err)
	}

	if !s.canModerate(actor, comment.UserID, post.ServiceClassID) {
		return NewForbiddenError("not authorized to delete this comment")
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return NewInternalError("failed to delete comment", err)
	}
	return nil
}

// canModerate implements the shared delete rule: owner, admin, or
// leader of the content's class.
func (s *postService) canModerate(actor *contextutils.Identity, ownerID int64, classID *int64) bool {
	if actor.UserID == ownerID || actor.IsSuperAdmin() {
		return true
	}
	return actor.IsClassLeader() && classID != nil && *classID == actor.EffectiveClassID()
}
