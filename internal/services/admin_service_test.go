package services

import (
	"context"
	"database/sql"
	"testing"

	"mahberhub/internal/contextutils"
	"mahberhub/internal/models"
	"mahberhub/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func adminActor() *contextutils.Identity {
	return &contextutils.Identity{
		UserID:   1,
		Username: "admin",
		Role:     models.RoleSuperAdmin,
		Status:   models.StatusActive,
	}
}

func newTestAdminService(users *fakeUserRepo, classes *fakeClassRepo, activity *fakeActivityRepo) AdminService {
	return NewAdminService(users, classes, activity, noopCache{}, zap.NewNop())
}

func TestApproveUserActivatesPending(t *testing.T) {
	users := &fakeUserRepo{
		TransitionStatusFn: func(ctx context.Context, userID int64, allowedFrom []string, to string) (*models.User, error) {
			assert.Contains(t, allowedFrom, models.StatusPending)
			assert.Equal(t, models.StatusActive, to)
			return &models.User{ID: userID, Username: "newmember", Status: to}, nil
		},
	}
	activity := &fakeActivityRepo{}
	svc := newTestAdminService(users, &fakeClassRepo{}, activity)

	updated, err := svc.ApproveUser(context.Background(), adminActor(), 5)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, updated.Status)

	require.Len(t, activity.logs, 1)
	assert.Equal(t, ActionApproveUser, activity.logs[0].ActionType)
	assert.Equal(t, int64(5), *activity.logs[0].TargetUserID)
}

func TestApproveUserRejectsAlreadyActive(t *testing.T) {
	users := &fakeUserRepo{
		TransitionStatusFn: func(ctx context.Context, userID int64, allowedFrom []string, to string) (*models.User, error) {
			return nil, repositories.ErrInvalidTransition
		},
	}
	svc := newTestAdminService(users, &fakeClassRepo{}, &fakeActivityRepo{})

	_, err := svc.ApproveUser(context.Background(), adminActor(), 5)
	require.Error(t, err)

	serviceErr := asServiceError(t, err)
	assert.Equal(t, 400, serviceErr.StatusCode)
	assert.Equal(t, "user is already active", serviceErr.Message)
}

func TestSuspendUserRecordsWarning(t *testing.T) {
	users := &fakeUserRepo{
		TransitionStatusFn: func(ctx context.Context, userID int64, allowedFrom []string, to string) (*models.User, error) {
			assert.Equal(t, models.StatusSuspended, to)
			return &models.User{ID: userID, Username: "troublemaker", Status: to}, nil
		},
	}
	activity := &fakeActivityRepo{}
	svc := newTestAdminService(users, &fakeClassRepo{}, activity)

	_, err := svc.SuspendUser(context.Background(), adminActor(), 5, &SuspendUserRequest{Reason: "repeated spam posts"})
	require.NoError(t, err)

	require.Len(t, activity.warnings, 1)
	assert.Equal(t, int64(5), activity.warnings[0].UserID)
	assert.Equal(t, int64(1), activity.warnings[0].IssuedBy)
	assert.Equal(t, "repeated spam posts", activity.warnings[0].Reason)
}

func TestSuspendUserRefusesSelf(t *testing.T) {
	svc := newTestAdminService(&fakeUserRepo{}, &fakeClassRepo{}, &fakeActivityRepo{})

	_, err := svc.SuspendUser(context.Background(), adminActor(), 1, &SuspendUserRequest{Reason: "does not matter"})
	require.Error(t, err)

	serviceErr := asServiceError(t, err)
	assert.Equal(t, 400, serviceErr.StatusCode)
}

func TestPromoteLeaderUsesClassAndAudits(t *testing.T) {
	var promotedTo int64
	users := &fakeUserRepo{
		PromoteLeaderFn: func(ctx context.Context, userID, classID int64) (*models.User, error) {
			promotedTo = classID
			leaderOf := classID
			return &models.User{
				ID:            userID,
				Username:      "newleader",
				Role:          models.RoleClassLeader,
				ClassLeaderOf: &leaderOf,
			}, nil
		},
	}
	classes := &fakeClassRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.ServiceClass, error) {
			return &models.ServiceClass{ID: id, Name: "ንባበ መለኮት ክፍል", LeaderID: ptr(int64(3))}, nil
		},
	}
	activity := &fakeActivityRepo{}
	svc := newTestAdminService(users, classes, activity)

	updated, err := svc.PromoteLeader(context.Background(), adminActor(), 5, &PromoteLeaderRequest{ClassID: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(2), promotedTo)
	assert.Equal(t, models.RoleClassLeader, updated.Role)
	require.Len(t, activity.logs, 1)
	assert.Equal(t, ActionPromoteLeader, activity.logs[0].ActionType)
}

func TestPromoteLeaderRefusesSelf(t *testing.T) {
	svc := newTestAdminService(&fakeUserRepo{}, &fakeClassRepo{}, &fakeActivityRepo{})

	_, err := svc.PromoteLeader(context.Background(), adminActor(), 1, &PromoteLeaderRequest{ClassID: 2})
	require.Error(t, err)

	serviceErr := asServiceError(t, err)
	assert.Equal(t, 400, serviceErr.StatusCode)
}

func TestDemoteLeaderRejectsNonLeader(t *testing.T) {
	users := &fakeUserRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, Role: models.RoleMember}, nil
		},
	}
	svc := newTestAdminService(users, &fakeClassRepo{}, &fakeActivityRepo{})

	_, err := svc.DemoteLeader(context.Background(), adminActor(), 5)
	require.Error(t, err)

	serviceErr := asServiceError(t, err)
	assert.Equal(t, 400, serviceErr.StatusCode)
}

func TestPromoteRoleUpdatesAndAudits(t *testing.T) {
	var setRole string
	users := &fakeUserRepo{
		UpdateRoleFn: func(ctx context.Context, userID int64, role string) (*models.User, error) {
			setRole = role
			return &models.User{ID: userID, Username: "trusted", Role: role}, nil
		},
	}
	activity := &fakeActivityRepo{}
	svc := newTestAdminService(users, &fakeClassRepo{}, activity)

	updated, err := svc.PromoteRole(context.Background(), adminActor(), 5, &PromoteRoleRequest{Role: models.RoleSuperAdmin})
	require.NoError(t, err)

	assert.Equal(t, models.RoleSuperAdmin, setRole)
	assert.Equal(t, models.RoleSuperAdmin, updated.Role)
	require.Len(t, activity.logs, 1)
	assert.Equal(t, ActionPromoteRole, activity.logs[0].ActionType)
	assert.Equal(t, int64(5), *activity.logs[0].TargetUserID)
}

func TestPromoteRoleRefusesSelf(t *testing.T) {
	svc := newTestAdminService(&fakeUserRepo{}, &fakeClassRepo{}, &fakeActivityRepo{})

	_, err := svc.PromoteRole(context.Background(), adminActor(), 1, &PromoteRoleRequest{Role: models.RoleMember})
	require.Error(t, err)

	serviceErr := asServiceError(t, err)
	assert.Equal(t, 400, serviceErr.StatusCode)
}

func TestPromoteRoleRejectsUnknownRole(t *testing.T) {
	svc := newTestAdminService(&fakeUserRepo{}, &fakeClassRepo{}, &fakeActivityRepo{})

	_, err := svc.PromoteRole(context.Background(), adminActor(), 5, &PromoteRoleRequest{Role: "OWNER"})
	require.Error(t, err)
}

func officeClasses() *fakeClassRepo {
	return &fakeClassRepo{
		GetByNameFn: func(ctx context.Context, name string) (*models.ServiceClass, error) {
			switch name {
			case models.OfficeClassName:
				return &models.ServiceClass{ID: 11, Name: name}, nil
			case models.UnassignedClassName:
				return &models.ServiceClass{ID: 12, Name: name}, nil
			}
			return nil, sql.ErrNoRows
		},
	}
}

func TestApproveOfficeMemberMovesIntoOffice(t *testing.T) {
	users := &fakeUserRepo{
		TransitionBothFn: func(ctx context.Context, userID int64, allowedFrom []string, to string, newClassID int64) (*models.User, error) {
			assert.Equal(t, []string{models.StatusPendingOfficeApproval}, allowedFrom)
			assert.Equal(t, models.StatusActive, to)
			assert.Equal(t, int64(11), newClassID)
			return &models.User{ID: userID, Username: "clerk", Status: to, ServiceClassID: newClassID}, nil
		},
	}
	svc := newTestAdminService(users, officeClasses(), &fakeActivityRepo{})

	updated, err := svc.ApproveOfficeMember(context.Background(), adminActor(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(11), updated.ServiceClassID)
}

func TestDisapproveOfficeMemberStillActivates(t *testing.T) {
	users := &fakeUserRepo{
		TransitionBothFn: func(ctx context.Context, userID int64, allowedFrom []string, to string, newClassID int64) (*models.User, error) {
			assert.Equal(t, models.StatusActive, to)
			assert.Equal(t, int64(12), newClassID)
			return &models.User{ID: userID, Username: "clerk", Status: to, ServiceClassID: newClassID}, nil
		},
	}
	svc := newTestAdminService(users, officeClasses(), &fakeActivityRepo{})

	updated, err := svc.DisapproveOfficeMember(context.Background(), adminActor(), 5)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, updated.Status)
	assert.Equal(t, int64(12), updated.ServiceClassID)
}

func TestOfficeApprovalGuardsStatus(t *testing.T) {
	users := &fakeUserRepo{
		TransitionBothFn: func(ctx context.Context, userID int64, allowedFrom []string, to string, newClassID int64) (*models.User, error) {
			return nil, repositories.ErrInvalidTransition
		},
	}
	svc := newTestAdminService(users, officeClasses(), &fakeActivityRepo{})

	_, err := svc.ApproveOfficeMember(context.Background(), adminActor(), 5)
	require.Error(t, err)

	serviceErr := asServiceError(t, err)
	assert.Equal(t, 400, serviceErr.StatusCode)
	assert.Equal(t, "user is not awaiting office approval", serviceErr.Message)
}
