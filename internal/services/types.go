package services

import "time"

// ===============================
// AUTH
// ===============================

// RegisterRequest carries a new member registration
type RegisterRequest struct {
	Username       string  `json:"username" validate:"required,min=4,max=50,lowercase,alphanum"`
	Email          string  `json:"email" validate:"required,email,max=320"`
	Password       string  `json:"password" validate:"required,min=6,max=72"`
	FullName       string  `json:"full_name" validate:"required,min=2,max=150"`
	Sex            string  `json:"sex" validate:"required,oneof=MALE FEMALE"`
	Department     string  `json:"department" validate:"required,min=2,max=150"`
	AcademicYear   string  `json:"academic_year" validate:"required"`
	PhoneNumber    string  `json:"phone_number" validate:"required,min=9,max=20"`
	ServiceClassID int64   `json:"service_class_id" validate:"required,gt=0"`
	Bio            *string `json:"bio,omitempty" validate:"omitempty,max=200"`
	BirthDate      *string `json:"birth_date,omitempty"`
	BirthPlace     *string `json:"birth_place,omitempty"`
}

// LoginRequest accepts a username or email as identifier
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// UpdateProfileRequest carries the editable profile fields
type UpdateProfileRequest struct {
	FullName     string  `json:"full_name" validate:"required,min=2,max=150"`
	Department   string  `json:"department" validate:"required,min=2,max=150"`
	AcademicYear string  `json:"academic_year" validate:"required"`
	PhoneNumber  string  `json:"phone_number" validate:"required,min=9,max=20"`
	Bio          *string `json:"bio,omitempty" validate:"omitempty,max=200"`
	BirthDate    *string `json:"birth_date,omitempty"`
	BirthPlace   *string `json:"birth_place,omitempty"`
}

// ===============================
// POSTS
// ===============================

// CreatePostRequest carries a new post
type CreatePostRequest struct {
	Title          string  `json:"title" validate:"required,min=1,max=255"`
	Content        string  `json:"content" validate:"required,min=1"`
	ImageURL       *string `json:"image_url,omitempty"`
	TargetType     string  `json:"target_type" validate:"required,oneof=GLOBAL CLASS"`
	ServiceClassID *int64  `json:"service_class_id,omitempty"`
}

// ReactRequest carries a reaction to a post
type ReactRequest struct {
	ReactionType string `json:"reaction_type" validate:"required,oneof=LIKE DISLIKE"`
}

// CreateCommentRequest carries a new comment or reply
type CreateCommentRequest struct {
	Content         string `json:"content" validate:"required,min=1,max=2000"`
	ParentCommentID *int64 `json:"parent_comment_id,omitempty"`
}

// ===============================
// ANNOUNCEMENTS
// ===============================

// CreateAnnouncementRequest carries a new announcement
type CreateAnnouncementRequest struct {
	Title         string     `json:"title" validate:"required,min=3,max=255"`
	Content       string     `json:"content" validate:"required,min=10"`
	TargetType    string     `json:"target_type" validate:"required,oneof=ALL CLASS LEADERS"`
	TargetClassID *int64     `json:"target_class_id,omitempty"`
	IsPinned      bool       `json:"is_pinned"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
}

// ===============================
// MESSAGES
// ===============================

// SendMessageRequest carries a direct message
type SendMessageRequest struct {
	ReceiverID int64  `json:"receiver_id" validate:"required,gt=0"`
	Content    string `json:"content" validate:"required,min=1,max=5000"`
}

// ===============================
// ADMIN
// ===============================

// SuspendUserRequest carries the suspension reason, recorded as a
// warning against the user.
type SuspendUserRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// PromoteLeaderRequest names the class the user will lead
type PromoteLeaderRequest struct {
	ClassID int64 `json:"class_id" validate:"required,gt=0"`
}

// PromoteRoleRequest sets a user's role directly. Leadership of a
// specific class goes through PromoteLeader instead.
type PromoteRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=MEMBER SUPER_ADMIN"`
}

// ChangeClassRequest moves a user to another service class
type ChangeClassRequest struct {
	ServiceClassID int64 `json:"service_class_id" validate:"required,gt=0"`
}
