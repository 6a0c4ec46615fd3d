package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"mahberhub/internal/contextutils"
	"mahberhub/internal/models"
	"mahberhub/internal/response"
	"mahberhub/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubAuthService resolves a fixed identity for any valid token
type stubAuthService struct {
	identity *contextutils.Identity
}

func (s *stubAuthService) Register(ctx context.Context, req *services.RegisterRequest) (*services.AuthResult, error) {
	return nil, nil
}

func (s *stubAuthService) Login(ctx context.Context, req *services.LoginRequest) (*services.AuthResult, error) {
	return nil, nil
}

func (s *stubAuthService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return nil, nil
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, userID int64, req *services.UpdateProfileRequest) (*models.User, error) {
	return nil, nil
}

func (s *stubAuthService) SetProfileImage(ctx context.Context, userID int64, imageURL string) (*models.User, error) {
	return nil, nil
}

func (s *stubAuthService) Identity(ctx context.Context, userID int64) (*contextutils.Identity, error) {
	return s.identity, nil
}

func (s *stubAuthService) VerifyToken(tokenString string) (int64, error) {
	if tokenString != "good-token" {
		return 0, services.NewUnauthorizedError("invalid or expired token")
	}
	return s.identity.UserID, nil
}

func newTestMiddleware(identity *contextutils.Identity) *AuthMiddleware {
	logger := zap.NewNop()
	return NewAuthMiddleware(&stubAuthService{identity: identity}, response.NewWriter(logger), logger)
}

func okHandler(hit *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusOK)
	})
}

func activeMember() *contextutils.Identity {
	return &contextutils.Identity{
		UserID:         7,
		Username:       "abendego",
		Role:           models.RoleMember,
		Status:         models.StatusActive,
		ServiceClassID: 2,
	}
}

func TestAuthenticateRequiresToken(t *testing.T) {
	mw := newTestMiddleware(activeMember())
	var hit bool

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	mw.Authenticate(okHandler(&hit)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, hit)
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	mw := newTestMiddleware(activeMember())
	var hit bool

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	mw.Authenticate(okHandler(&hit)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, hit)
}

func TestAuthenticateAcceptsQueryToken(t *testing.T) {
	// Browser websocket clients cannot set the Authorization header.
	mw := newTestMiddleware(activeMember())
	var hit bool

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws?token=good-token", nil)
	rec := httptest.NewRecorder()
	mw.Authenticate(okHandler(&hit)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, hit)
}

func TestAuthenticateRejectsSuspendedAccount(t *testing.T) {
	identity := activeMember()
	identity.Status = models.StatusSuspended
	mw := newTestMiddleware(identity)
	var hit bool

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	mw.Authenticate(okHandler(&hit)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, hit)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "suspended")
}

func TestRequireActiveBlocksPendingAccount(t *testing.T) {
	identity := activeMember()
	identity.Status = models.StatusPending
	mw := newTestMiddleware(identity)
	var hit bool

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	mw.Authenticate(mw.RequireActive(okHandler(&hit))).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, hit)
}

func TestRequireAdminBlocksLeaders(t *testing.T) {
	identity := activeMember()
	identity.Role = models.RoleClassLeader
	mw := newTestMiddleware(identity)
	var hit bool

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	mw.Authenticate(mw.RequireAdmin(okHandler(&hit))).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, hit)
}

func TestRequireAdminPassesSuperAdmin(t *testing.T) {
	identity := activeMember()
	identity.Role = models.RoleSuperAdmin
	mw := newTestMiddleware(identity)
	var hit bool

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	mw.Authenticate(mw.RequireAdmin(okHandler(&hit))).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, hit)
}
