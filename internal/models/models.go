// file: internal/models/models.go
package models

import (
	"time"
)

// ===============================
// ENUMS
// ===============================

// User roles
const (
	RoleMember      = "MEMBER"
	RoleClassLeader = "CLASS_LEADER"
	RoleSuperAdmin  = "SUPER_ADMIN"
)

// User statuses
const (
	StatusPending               = "PENDING"
	StatusActive                = "ACTIVE"
	StatusSuspended             = "SUSPENDED"
	StatusPendingOfficeApproval = "PENDING_OFFICE_APPROVAL"
)

// Post target types
const (
	PostTargetGlobal = "GLOBAL"
	PostTargetClass  = "CLASS"
)

// Announcement target types
const (
	AnnouncementTargetAll     = "ALL"
	AnnouncementTargetClass   = "CLASS"
	AnnouncementTargetLeaders = "LEADERS"
)

// Reaction types
const (
	ReactionLike    = "LIKE"
	ReactionDislike = "DISLIKE"
)

// Notification types
const (
	NotificationPost         = "POST"
	NotificationAnnouncement = "ANNOUNCEMENT"
	NotificationReply        = "REPLY"
	NotificationMessage      = "MESSAGE"
)

// Special service class names. Registration status and the office
// approval workflow key off these exact names.
const (
	OfficeClassName     = "ፅሕፈት ቤት"
	UnassignedClassName = "የለኝም"
)

// ===============================
// CORE ENTITIES
// ===============================

// User represents a fellowship member account
type User struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username" validate:"required,min=4,max=50,lowercase,alphanum"`
	Email    string `json:"email" db:"email" validate:"required,email,max=320"`
	FullName string `json:"full_name" db:"full_name" validate:"required,min=2,max=150"`

	// Authentication
	PasswordHash string `json:"-" db:"password_hash"`

	// Profile information
	Sex          string  `json:"sex" db:"sex" validate:"required,oneof=MALE FEMALE"`
	Department   string  `json:"department" db:"department" validate:"required,min=2,max=150"`
	AcademicYear string  `json:"academic_year" db:"academic_year" validate:"required"`
	PhoneNumber  string  `json:"phone_number" db:"phone_number" validate:"required,min=9,max=20"`
	Bio          *string `json:"bio,omitempty" db:"bio" validate:"omitempty,max=200"`
	BirthDate    *string `json:"birth_date,omitempty" db:"birth_date"`
	BirthPlace   *string `json:"birth_place,omitempty" db:"birth_place"`
	ProfileImage *string `json:"profile_image,omitempty" db:"profile_image"`

	// Access control
	Role           string `json:"role" db:"role" validate:"required,oneof=MEMBER CLASS_LEADER SUPER_ADMIN"`
	Status         string `json:"status" db:"status" validate:"required,oneof=PENDING ACTIVE SUSPENDED PENDING_OFFICE_APPROVAL"`
	ServiceClassID int64  `json:"service_class_id" db:"service_class_id" validate:"required"`
	ClassLeaderOf  *int64 `json:"class_leader_of,omitempty" db:"class_leader_of"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Joined fields (not in DB)
	ServiceClassName string `json:"service_class_name,omitempty" db:"-"`
}

// ServiceClass represents one of the fixed service departments
type ServiceClass struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" validate:"required,max=100"`
	Description *string   `json:"description,omitempty" db:"description"`
	LeaderID    *int64    `json:"leader_id,omitempty" db:"leader_id"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// Computed
	MemberCount int `json:"member_count,omitempty" db:"-"`
}

// Post represents a global or class-scoped post
type Post struct {
	ID             int64   `json:"id" db:"id"`
	AuthorID       int64   `json:"author_id" db:"author_id" validate:"required"`
	Title          string  `json:"title" db:"title" validate:"required,min=1,max=255"`
	Content        string  `json:"content" db:"content" validate:"required,min=1"`
	ImageURL       *string `json:"image_url,omitempty" db:"image_url"`
	TargetType     string  `json:"target_type" db:"target_type" validate:"required,oneof=GLOBAL CLASS"`
	ServiceClassID *int64  `json:"service_class_id,omitempty" db:"service_class_id"`
	IsPinned       bool    `json:"is_pinned" db:"is_pinned"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Author information (joined)
	AuthorUsername     string  `json:"author_username,omitempty" db:"-"`
	AuthorFullName     string  `json:"author_full_name,omitempty" db:"-"`
	AuthorProfileImage *string `json:"author_profile_image,omitempty" db:"-"`

	// Engagement (computed)
	Likes        int     `json:"likes" db:"-"`
	Dislikes     int     `json:"dislikes" db:"-"`
	CommentCount int     `json:"comment_count" db:"-"`
	UserReaction *string `json:"user_reaction,omitempty" db:"-"`
}

// PostReaction represents a user's reaction to a post.
// Unique per (post, user); re-reacting overwrites the type.
type PostReaction struct {
	ID           int64     `json:"id" db:"id"`
	PostID       int64     `json:"post_id" db:"post_id" validate:"required"`
	UserID       int64     `json:"user_id" db:"user_id" validate:"required"`
	ReactionType string    `json:"reaction_type" db:"reaction_type" validate:"required,oneof=LIKE DISLIKE"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ReactionCounts holds per-type reaction totals for a post, plus the
// requesting user's own reaction when they have one.
type ReactionCounts struct {
	Likes        int     `json:"likes"`
	Dislikes     int     `json:"dislikes"`
	UserReaction *string `json:"user_reaction,omitempty"`
}

// Comment represents a comment on a post. Nesting is capped at depth 1:
// a reply to a reply is stored under the root comment.
type Comment struct {
	ID              int64  `json:"id" db:"id"`
	PostID          int64  `json:"post_id" db:"post_id" validate:"required"`
	UserID          int64  `json:"user_id" db:"user_id" validate:"required"`
	Content         string `json:"content" db:"content" validate:"required,min=1,max=2000"`
	ParentCommentID *int64 `json:"parent_comment_id,omitempty" db:"parent_comment_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Author information (joined)
	Username     string  `json:"username,omitempty" db:"-"`
	FullName     string  `json:"full_name,omitempty" db:"-"`
	ProfileImage *string `json:"profile_image,omitempty" db:"-"`

	// Nested replies (assembled in the service layer)
	Replies []*Comment `json:"replies,omitempty" db:"-"`
}

// Announcement represents a broadcast message
type Announcement struct {
	ID            int64      `json:"id" db:"id"`
	AuthorID      int64      `json:"author_id" db:"author_id" validate:"required"`
	Title         string     `json:"title" db:"title" validate:"required,min=3,max=255"`
	Content       string     `json:"content" db:"content" validate:"required,min=10"`
	TargetType    string     `json:"target_type" db:"target_type" validate:"required,oneof=ALL CLASS LEADERS"`
	TargetClassID *int64     `json:"target_class_id,omitempty" db:"target_class_id"`
	IsPinned      bool       `json:"is_pinned" db:"is_pinned"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty" db:"scheduled_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`

	// Joined fields
	AuthorFullName  string  `json:"author_full_name,omitempty" db:"-"`
	AuthorRole      string  `json:"author_role,omitempty" db:"-"`
	TargetClassName *string `json:"target_class_name,omitempty" db:"-"`
}

// Message represents a direct message between two users
type Message struct {
	ID         int64      `json:"id" db:"id"`
	SenderID   int64      `json:"sender_id" db:"sender_id" validate:"required"`
	ReceiverID int64      `json:"receiver_id" db:"receiver_id" validate:"required"`
	Content    string     `json:"content" db:"content" validate:"required,min=1,max=5000"`
	IsRead     bool       `json:"is_read" db:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty" db:"read_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`

	// Sender information (joined)
	SenderUsername     string  `json:"sender_username,omitempty" db:"-"`
	SenderFullName     string  `json:"sender_full_name,omitempty" db:"-"`
	SenderProfileImage *string `json:"sender_profile_image,omitempty" db:"-"`
}

// Conversation summarizes the latest exchange with one peer
type Conversation struct {
	User        *UserSummary `json:"user"`
	LastMessage *Message     `json:"last_message"`
	UnreadCount int          `json:"unread_count"`
}

// UserSummary is the slim user projection used in listings and search
type UserSummary struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	FullName     string  `json:"full_name"`
	Role         string  `json:"role"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// Notification represents a fan-out record for one recipient.
// Never created for the actor acting on themselves.
type Notification struct {
	ID         int64   `json:"id" db:"id"`
	UserID     int64   `json:"user_id" db:"user_id" validate:"required"`
	ActorID    int64   `json:"actor_id" db:"actor_id" validate:"required"`
	Type       string  `json:"type" db:"type" validate:"required,oneof=POST ANNOUNCEMENT REPLY MESSAGE"`
	Content    string  `json:"content" db:"content" validate:"required,max=500"`
	LinkTarget *string `json:"link_target,omitempty" db:"link_target"`
	IsRead     bool    `json:"is_read" db:"is_read"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Actor information (joined)
	ActorFullName     string  `json:"actor_full_name,omitempty" db:"-"`
	ActorProfileImage *string `json:"actor_profile_image,omitempty" db:"-"`
}

// ActivityLog is the audit record written for every admin mutation
type ActivityLog struct {
	ID           int64     `json:"id" db:"id"`
	ActorID      int64     `json:"actor_id" db:"actor_id" validate:"required"`
	ActionType   string    `json:"action_type" db:"action_type" validate:"required,max=50"`
	TargetUserID *int64    `json:"target_user_id,omitempty" db:"target_user_id"`
	Description  string    `json:"description" db:"description"`
	IPAddress    *string   `json:"ip_address,omitempty" db:"ip_address"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Joined fields
	ActorFullName  string `json:"actor_full_name,omitempty" db:"-"`
	TargetFullName string `json:"target_full_name,omitempty" db:"-"`
}

// Warning records a suspension reason issued against a user
type Warning struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id" validate:"required"`
	IssuedBy  int64     `json:"issued_by" db:"issued_by" validate:"required"`
	Reason    string    `json:"reason" db:"reason" validate:"required,min=5"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ===============================
// ADMIN PROJECTIONS
// ===============================

// DashboardStats aggregates membership counts for the admin dashboard
type DashboardStats struct {
	TotalUsers     int64            `json:"total_users"`
	ByStatus       map[string]int64 `json:"by_status"`
	ByClass        map[string]int64 `json:"by_class"`
	BySex          map[string]int64 `json:"by_sex"`
	ByAcademicYear map[string]int64 `json:"by_academic_year"`
}

// OfficeData lists members of the office and unassigned pools
type OfficeData struct {
	OfficeMembers     []*User `json:"office_members"`
	UnassignedMembers []*User `json:"unassigned_members"`
}

// ===============================
// HELPER METHODS
// ===============================

// EffectiveClassID returns the class a user is authorized against:
// for a CLASS_LEADER the class they lead, else their home class.
func (u *User) EffectiveClassID() int64 {
	if u.ClassLeaderOf != nil {
		return *u.ClassLeaderOf
	}
	return u.ServiceClassID
}

// IsActiveStatus reports whether the account may use protected features
func (u *User) IsActiveStatus() bool {
	return u.Status == StatusActive
}

// Summary returns the slim projection of a user
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:           u.ID,
		Username:     u.Username,
		FullName:     u.FullName,
		Role:         u.Role,
		ProfileImage: u.ProfileImage,
	}
}

// IsOwnedBy checks if the user authored the post
func (p *Post) IsOwnedBy(userID int64) bool {
	return p.AuthorID == userID
}

// IsOwnedBy checks if the user authored the comment
func (c *Comment) IsOwnedBy(userID int64) bool {
	return c.UserID == userID
}

// IsReply reports whether the comment is nested under another comment
func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil
}

// IsUnread checks if the notification is unread
func (n *Notification) IsUnread() bool {
	return !n.IsRead
}

// ===============================
// VALIDATION HELPERS
// ===============================

// ValidRole validates the role enum
func ValidRole(role string) bool {
	switch role {
	case RoleMember, RoleClassLeader, RoleSuperAdmin:
		return true
	}
	return false
}

// ValidStatus validates the status enum
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusActive, StatusSuspended, StatusPendingOfficeApproval:
		return true
	}
	return false
}

// ValidReactionType validates the reaction enum
func ValidReactionType(reaction string) bool {
	return reaction == ReactionLike || reaction == ReactionDislike
}

// ValidAnnouncementTarget validates the announcement target enum
func ValidAnnouncementTarget(target string) bool {
	switch target {
	case AnnouncementTargetAll, AnnouncementTargetClass, AnnouncementTargetLeaders:
		return true
	}
	return false
}

// ValidAcademicYear validates the academic year enum from registration
func ValidAcademicYear(year string) bool {
	switch year {
	case "YEAR_1", "YEAR_2", "YEAR_3", "YEAR_4", "YEAR_5",
		"YEAR_6", "YEAR_7", "YEAR_8", "POST_GRADUATE", "GRADUATED":
		return true
	}
	return false
}
