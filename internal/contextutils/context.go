package contextutils

import (
	"context"

	"mahberhub/internal/models"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	identityKey  contextKey = "identity"
	clientIPKey  contextKey = "client_ip"
)

// Identity is the authenticated caller attached to each request.
// Role and status come from the database, not the token.
type Identity struct {
	UserID         int64  `json:"user_id"`
	Username       string `json:"username"`
	Role           string `json:"role"`
	Status         string `json:"status"`
	ServiceClassID int64  `json:"service_class_id"`
	ClassLeaderOf  *int64 `json:"class_leader_of,omitempty"`
}

// EffectiveClassID returns the class the caller is authorized
// against: the class they lead if set, else their home class.
func (id *Identity) EffectiveClassID() int64 {
	if id.ClassLeaderOf != nil {
		return *id.ClassLeaderOf
	}
	return id.ServiceClassID
}

// IsSuperAdmin reports whether the caller holds the SUPER_ADMIN role
func (id *Identity) IsSuperAdmin() bool {
	return id.Role == models.RoleSuperAdmin
}

// IsClassLeader reports whether the caller holds the CLASS_LEADER role
func (id *Identity) IsClassLeader() bool {
	return id.Role == models.RoleClassLeader
}

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID adds the request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetIdentity retrieves the authenticated identity from the context
func GetIdentity(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}

// WithIdentity adds the authenticated identity to the context
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetUserID retrieves the authenticated user's ID, or 0
func GetUserID(ctx context.Context) int64 {
	if id, ok := GetIdentity(ctx); ok {
		return id.UserID
	}
	return 0
}

// GetClientIP retrieves the client IP from the context
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok {
		return ip
	}
	return ""
}

// WithClientIP adds the client IP to the context
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}
