package middleware

import (
	"net/http"
	"strings"

	"mahberhub/internal/contextutils"
	"mahberhub/internal/models"
	"mahberhub/internal/response"
	"mahberhub/internal/services"

	"go.uber.org/zap"
)

// AuthMiddleware authenticates requests and enforces role and status
// requirements. The token only identifies the user; role and status
// are re-read from the database so demotions and suspensions take
// effect on the next request, not at token expiry.
type AuthMiddleware struct {
	auth   services.AuthService
	writer *response.Writer
	logger *zap.Logger
}

// NewAuthMiddleware creates the auth middleware
func NewAuthMiddleware(auth services.AuthService, writer *response.Writer, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, writer: writer, logger: logger}
}

// Authenticate validates the bearer token, resolves the caller's
// current identity and rejects suspended accounts outright.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			m.writer.Fail(w, r, http.StatusUnauthorized, "authentication required")
			return
		}

		userID, err := m.auth.VerifyToken(token)
		if err != nil {
			m.writer.FromError(w, r, err)
			return
		}

		identity, err := m.auth.Identity(r.Context(), userID)
		if err != nil {
			m.writer.FromError(w, r, err)
			return
		}

		if identity.Status == models.StatusSuspended {
			m.writer.Fail(w, r, http.StatusForbidden, "your account has been suspended")
			return
		}

		ctx := contextutils.WithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireActive blocks accounts that are not yet approved
func (m *AuthMiddleware) RequireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := contextutils.GetIdentity(r.Context())
		if !ok {
			m.writer.Fail(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		switch identity.Status {
		case models.StatusActive:
		case models.StatusPendingOfficeApproval:
			m.writer.Fail(w, r, http.StatusForbidden, "your account is awaiting office approval")
			return
		default:
			m.writer.Fail(w, r, http.StatusForbidden, "your account is awaiting approval")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoles restricts an endpoint to the listed roles
func (m *AuthMiddleware) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := contextutils.GetIdentity(r.Context())
			if !ok {
				m.writer.Fail(w, r, http.StatusUnauthorized, "authentication required")
				return
			}
			if !allowed[identity.Role] {
				m.writer.Fail(w, r, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is shorthand for the SUPER_ADMIN-only chain
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireRoles(models.RoleSuperAdmin)(next)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	// Websocket clients cannot set headers from the browser
	return r.URL.Query().Get("token")
}
