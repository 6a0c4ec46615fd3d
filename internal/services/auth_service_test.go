package services

import (
	"context"
	"testing"
	"time"

	"mahberhub/internal/config"
	"mahberhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func asServiceError(t *testing.T, err error) *ServiceError {
	t.Helper()
	var serviceErr *ServiceError
	require.True(t, AsServiceError(err, &serviceErr))
	return serviceErr
}

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:        "test-secret-used-only-in-unit-tests",
		JWTExpiry:        time.Hour,
		BCryptCost:       bcrypt.MinCost,
		IdentityCacheTTL: 30 * time.Second,
	}
}

func newTestAuthService(users *fakeUserRepo, classes *fakeClassRepo) AuthService {
	logger := zap.NewNop()
	return NewAuthService(users, classes, noopCache{}, testAuthConfig(), logger)
}

func validRegisterRequest() *RegisterRequest {
	return &RegisterRequest{
		Username:       "abendego",
		Email:          "abendego@example.com",
		Password:       "secret123",
		FullName:       "Abenezer Degu",
		Sex:            "MALE",
		Department:     "Software Engineering",
		AcademicYear:   "YEAR_3",
		PhoneNumber:    "0911223344",
		ServiceClassID: 3,
	}
}

func classNamed(id int64, name string) *fakeClassRepo {
	return &fakeClassRepo{
		GetByIDFn: func(ctx context.Context, gotID int64) (*models.ServiceClass, error) {
			return &models.ServiceClass{ID: gotID, Name: name, IsActive: true}, nil
		},
	}
}

func TestRegisterStatusFollowsClass(t *testing.T) {
	cases := []struct {
		name       string
		className  string
		wantStatus string
	}{
		{"regular class waits for approval", "ሰ/ት/ቤት ክፍል", models.StatusPending},
		{"office class waits for office approval", models.OfficeClassName, models.StatusPendingOfficeApproval},
		{"unassigned activates immediately", models.UnassignedClassName, models.StatusActive},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var created *models.User
			users := &fakeUserRepo{
				CreateFn: func(ctx context.Context, user *models.User) error {
					user.ID = 42
					created = user
					return nil
				},
			}
			svc := newTestAuthService(users, classNamed(3, tc.className))

			result, err := svc.Register(context.Background(), validRegisterRequest())
			require.NoError(t, err)
			require.NotNil(t, created)

			assert.Equal(t, tc.wantStatus, created.Status)
			assert.Equal(t, models.RoleMember, created.Role)
			assert.NotEmpty(t, result.Token)
			assert.NotEqual(t, "secret123", created.PasswordHash)
		})
	}
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	users := &fakeUserRepo{
		GetByUsernameFn: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{ID: 9, Username: username}, nil
		},
	}
	svc := newTestAuthService(users, classNamed(3, "ሰ/ት/ቤት ክፍል"))

	_, err := svc.Register(context.Background(), validRegisterRequest())
	require.Error(t, err)

	serviceErr := asServiceError(t, err)
	assert.Equal(t, 409, serviceErr.StatusCode)
}

func TestRegisterRejectsUnknownClass(t *testing.T) {
	svc := newTestAuthService(&fakeUserRepo{}, &fakeClassRepo{})

	_, err := svc.Register(context.Background(), validRegisterRequest())
	require.Error(t, err)

	serviceErr := asServiceError(t, err)
	assert.Equal(t, 404, serviceErr.StatusCode)
}

func loginUser(t *testing.T, status string) *fakeUserRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	return &fakeUserRepo{
		GetByIdentifierFn: func(ctx context.Context, identifier string) (*models.User, error) {
			return &models.User{
				ID:           7,
				Username:     "abendego",
				PasswordHash: string(hash),
				Role:         models.RoleMember,
				Status:       status,
			}, nil
		},
	}
}

func TestLoginSucceedsForPendingUser(t *testing.T) {
	svc := newTestAuthService(loginUser(t, models.StatusPending), &fakeClassRepo{})

	result, err := svc.Login(context.Background(), &LoginRequest{Identifier: "abendego", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, int64(7), result.User.ID)
}

func TestLoginRejectsSuspendedUser(t *testing.T) {
	svc := newTestAuthService(loginUser(t, models.StatusSuspended), &fakeClassRepo{})

	_, err := svc.Login(context.Background(), &LoginRequest{Identifier: "abendego", Password: "secret123"})
	require.Error(t, err)

	serviceErr := asServiceError(t, err)
	assert.Equal(t, 403, serviceErr.StatusCode)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newTestAuthService(loginUser(t, models.StatusActive), &fakeClassRepo{})

	_, err := svc.Login(context.Background(), &LoginRequest{Identifier: "abendego", Password: "wrong"})
	require.Error(t, err)

	serviceErr := asServiceError(t, err)
	assert.Equal(t, 401, serviceErr.StatusCode)
	assert.Equal(t, "invalid credentials", serviceErr.Message)
}

func TestVerifyTokenRoundTrip(t *testing.T) {
	svc := newTestAuthService(loginUser(t, models.StatusActive), &fakeClassRepo{})

	result, err := svc.Login(context.Background(), &LoginRequest{Identifier: "abendego", Password: "secret123"})
	require.NoError(t, err)

	userID, err := svc.VerifyToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(&fakeUserRepo{}, &fakeClassRepo{})

	_, err := svc.VerifyToken("not-a-token")
	require.Error(t, err)
}

func TestIdentityReflectsCurrentRecord(t *testing.T) {
	users := &fakeUserRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{
				ID:             id,
				Username:       "abendego",
				Role:           models.RoleClassLeader,
				Status:         models.StatusActive,
				ServiceClassID: 2,
				ClassLeaderOf:  ptr(int64(5)),
			}, nil
		},
	}
	svc := newTestAuthService(users, &fakeClassRepo{})

	identity, err := svc.Identity(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.RoleClassLeader, identity.Role)
	assert.Equal(t, int64(5), identity.EffectiveClassID())
}
