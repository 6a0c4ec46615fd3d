package services

import (
	"context"
	"errors"
	"fmt"

	"mahberhub/internal/cache"
	"mahberhub/internal/contextutils"
	"mahberhub/internal/models"
	"mahberhub/internal/repositories"
	"mahberhub/internal/validation"

	"go.uber.org/zap"
)

// Audit action types
const (
	ActionApproveUser       = "APPROVE_USER"
	ActionRejectUser        = "REJECT_USER"
	ActionSuspendUser       = "SUSPEND_USER"
	ActionReactivateUser    = "REACTIVATE_USER"
	ActionPromoteLeader     = "PROMOTE_LEADER"
	ActionDemoteLeader      = "DEMOTE_LEADER"
	ActionPromoteRole       = "PROMOTE_ROLE"
	ActionChangeClass       = "CHANGE_CLASS"
	ActionApproveOffice     = "APPROVE_OFFICE"
	ActionDisapproveOffice  = "DISAPPROVE_OFFICE"
)

type adminService struct {
	users    repositories.UserRepository
	classes  repositories.ClassRepository
	activity repositories.ActivityRepository
	cache    cache.Cache
	logger   *zap.Logger
}

// NewAdminService creates the membership administration service
func NewAdminService(
	users repositories.UserRepository,
	classes repositories.ClassRepository,
	activity repositories.ActivityRepository,
	c cache.Cache,
	logger *zap.Logger,
) AdminService {
	return &adminService{users: users, classes: classes, activity: activity, cache: c, logger: logger}
}

func (s *adminService) ListUsers(ctx context.Context, actor *contextutils.Identity, filter repositories.UserFilter, page Page) ([]*models.User, int64, error) {
	users, total, err := s.users.List(ctx, filter, page.opts())
	if err != nil {
		return nil, 0, NewInternalError("failed to list users", err)
	}
	return users, total, nil
}

// ApproveUser activates a PENDING or PENDING_OFFICE_APPROVAL account
func (s *adminService) ApproveUser(ctx context.Context, actor *contextutils.Identity, userID int64) (*models.User, error) {
	updated, err := s.users.TransitionStatus(ctx, userID,
		[]string{models.StatusPending, models.StatusPendingOfficeApproval, models.StatusSuspended},
		models.StatusActive,
	)
	if err != nil {
		return nil, s.transitionError(err, "user is already active")
	}

	s.audit(ctx, actor, ActionApproveUser, userID, fmt.Sprintf("Approved user %s", updated.Username))
	s.invalidateIdentity(ctx, userID)
	return updated, nil
}

// RejectUser suspends a pending registration
func (s *adminService) RejectUser(ctx context.Context, actor *contextutils.Identity, userID int64) (*models.User, error) {
	updated, err := s.users.TransitionStatus(ctx, userID, nil, models.StatusSuspended)
	if err != nil {
		return nil, s.transitionError(err, "")
	}

	s.audit(ctx, actor, ActionRejectUser, userID, fmt.Sprintf("Rejected user %s", updated.Username))
	s.invalidateIdentity(ctx, userID)
	return updated, nil
}

// SuspendUser suspends an account and records the reason as a warning
func (s *adminService) SuspendUser(ctx context.Context, actor *contextutils.Identity, userID int64, req *SuspendUserRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}
	if userID == actor.UserID {
		return nil, NewBadRequestError("cannot suspend yourself")
	}

	updated, err := s.users.TransitionStatus(ctx, userID, nil, models.StatusSuspended)
	if err != nil {
		return nil, s.transitionError(err, "")
	}

	warning := &models.Warning{
		UserID:   userID,
		IssuedBy: actor.UserID,
		Reason:   req.Reason,
	}
	if err := s.activity.CreateWarning(ctx, warning); err != nil {
		s.logger.Error("failed to record suspension warning",
			zap.Int64("user_id", userID), zap.Error(err))
	}

	s.audit(ctx, actor, ActionSuspendUser, userID,
		fmt.Sprintf("Suspended %s: %s", updated.Username, req.Reason))
	s.invalidateIdentity(ctx, userID)
	return updated, nil
}

// ReactivateUser restores a suspended account
func (s *adminService) ReactivateUser(ctx context.Context, actor *contextutils.Identity, userID int64) (*models.User, error) {
	updated, err := s.users.TransitionStatus(ctx, userID,
		[]string{models.StatusSuspended}, models.StatusActive,
	)
	if err != nil {
		return nil, s.transitionError(err, "user is not suspended")
	}

	s.audit(ctx, actor, ActionReactivateUser, userID, fmt.Sprintf("Reactivated user %s", updated.Username))
	s.invalidateIdentity(ctx, userID)
	return updated, nil
}

// PromoteLeader installs the user as leader of the given class. Any
// incumbent leader of that class is demoted to MEMBER in the same
// transaction.
func (s *adminService) PromoteLeader(ctx context.Context, actor *contextutils.Identity, userID int64, req *PromoteLeaderRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}
	if userID == actor.UserID {
		return nil, NewBadRequestError("cannot change your own role")
	}

	class, err := s.classes.GetByID(ctx, req.ClassID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("service class not found")
		}
		return nil, NewInternalError("failed to look up service class", err)
	}

	previousLeader := class.LeaderID

	updated, err := s.users.PromoteLeader(ctx, userID, req.ClassID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("user not found")
		}
		return nil, NewInternalError("failed to promote leader", err)
	}

	s.audit(ctx, actor, ActionPromoteLeader, userID,
		fmt.Sprintf("%s promoted to CLASS_LEADER of %s", updated.Username, class.Name))
	s.invalidateIdentity(ctx, userID)
	if previousLeader != nil && *previousLeader != userID {
		s.invalidateIdentity(ctx, *previousLeader)
	}
	return updated, nil
}

// DemoteLeader returns a CLASS_LEADER to MEMBER
func (s *adminService) DemoteLeader(ctx context.Context, actor *contextutils.Identity, userID int64) (*models.User, error) {
	if userID == actor.UserID {
		return nil, NewBadRequestError("cannot change your own role")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("user not found")
		}
		return nil, NewInternalError("failed to look up user", err)
	}
	if user.Role != models.RoleClassLeader {
		return nil, NewBadRequestError("user is not a class leader")
	}

	updated, err := s.users.DemoteLeader(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to demote leader", err)
	}

	s.audit(ctx, actor, ActionDemoteLeader, userID,
		fmt.Sprintf("%s demoted to MEMBER", updated.Username))
	s.invalidateIdentity(ctx, userID)
	return updated, nil
}

// PromoteRole sets a user's role directly. Class leadership is not
// assignable here; it needs a class and goes through PromoteLeader.
func (s *adminService) PromoteRole(ctx context.Context, actor *contextutils.Identity, userID int64, req *PromoteRoleRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}
	if userID == actor.UserID {
		return nil, NewBadRequestError("cannot change your own role")
	}

	updated, err := s.users.UpdateRole(ctx, userID, req.Role)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("user not found")
		}
		return nil, NewInternalError("failed to update role", err)
	}

	s.audit(ctx, actor, ActionPromoteRole, userID,
		fmt.Sprintf("%s role set to %s", updated.Username, req.Role))
	s.invalidateIdentity(ctx, userID)
	return updated, nil
}

// ChangeClass moves a user to another service class
func (s *adminService) ChangeClass(ctx context.Context, actor *contextutils.Identity, userID int64, req *ChangeClassRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	class, err := s.classes.GetByID(ctx, req.ServiceClassID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("service class not found")
		}
		return nil, NewInternalError("failed to look up service class", err)
	}

	updated, err := s.users.ChangeClass(ctx, userID, req.ServiceClassID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("user not found")
		}
		return nil, NewInternalError("failed to change class", err)
	}

	s.audit(ctx, actor, ActionChangeClass, userID,
		fmt.Sprintf("Moved %s to class %s", updated.Username, class.Name))
	s.invalidateIdentity(ctx, userID)
	return updated, nil
}

// OfficeData lists current office members and the unassigned pool
func (s *adminService) OfficeData(ctx context.Context, actor *contextutils.Identity) (*models.OfficeData, error) {
	office, err := s.classes.GetByName(ctx, models.OfficeClassName)
	if err != nil {
		return nil, NewInternalError("office class missing", err)
	}
	unassigned, err := s.classes.GetByName(ctx, models.UnassignedClassName)
	if err != nil {
		return nil, NewInternalError("unassigned class missing", err)
	}

	officeMembers, _, err := s.users.List(ctx,
		repositories.UserFilter{ClassID: office.ID},
		repositories.ListOptions{Limit: 500},
	)
	if err != nil {
		return nil, NewInternalError("failed to list office members", err)
	}
	unassignedMembers, _, err := s.users.List(ctx,
		repositories.UserFilter{ClassID: unassigned.ID},
		repositories.ListOptions{Limit: 500},
	)
	if err != nil {
		return nil, NewInternalError("failed to list unassigned members", err)
	}

	return &models.OfficeData{
		OfficeMembers:     officeMembers,
		UnassignedMembers: unassignedMembers,
	}, nil
}

func (s *adminService) PendingOfficeRequests(ctx context.Context) ([]*models.User, error) {
	users, _, err := s.users.List(ctx,
		repositories.UserFilter{Status: models.StatusPendingOfficeApproval},
		repositories.ListOptions{Limit: 500},
	)
	if err != nil {
		return nil, NewInternalError("failed to list office requests", err)
	}
	return users, nil
}

// ApproveOfficeMember moves the user into the office class and
// activates the account.
func (s *adminService) ApproveOfficeMember(ctx context.Context, actor *contextutils.Identity, userID int64) (*models.User, error) {
	office, err := s.classes.GetByName(ctx, models.OfficeClassName)
	if err != nil {
		return nil, NewInternalError("office class missing", err)
	}

	updated, err := s.users.TransitionStatusAndClass(ctx, userID,
		[]string{models.StatusPendingOfficeApproval},
		models.StatusActive, office.ID,
	)
	if err != nil {
		return nil, s.transitionError(err, "user is not awaiting office approval")
	}

	s.audit(ctx, actor, ActionApproveOffice, userID,
		fmt.Sprintf("Approved %s for %s", updated.Username, models.OfficeClassName))
	s.invalidateIdentity(ctx, userID)
	return updated, nil
}

// DisapproveOfficeMember moves the user to the unassigned class but
// still activates the account.
func (s *adminService) DisapproveOfficeMember(ctx context.Context, actor *contextutils.Identity, userID int64) (*models.User, error) {
	unassigned, err := s.classes.GetByName(ctx, models.UnassignedClassName)
	if err != nil {
		return nil, NewInternalError("unassigned class missing", err)
	}

	updated, err := s.users.TransitionStatusAndClass(ctx, userID,
		[]string{models.StatusPendingOfficeApproval},
		models.StatusActive, unassigned.ID,
	)
	if err != nil {
		return nil, s.transitionError(err, "user is not awaiting office approval")
	}

	s.audit(ctx, actor, ActionDisapproveOffice, userID,
		fmt.Sprintf("Disapproved %s for %s, moved to %s",
			updated.Username, models.OfficeClassName, models.UnassignedClassName))
	s.invalidateIdentity(ctx, userID)
	return updated, nil
}

func (s *adminService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	stats, err := s.users.DashboardStats(ctx)
	if err != nil {
		return nil, NewInternalError("failed to load dashboard stats", err)
	}
	return stats, nil
}

func (s *adminService) ActivityLogs(ctx context.Context, page Page) ([]*models.ActivityLog, int64, error) {
	logs, total, err := s.activity.List(ctx, page.opts())
	if err != nil {
		return nil, 0, NewInternalError("failed to list activity logs", err)
	}
	return logs, total, nil
}

func (s *adminService) UserWarnings(ctx context.Context, userID int64) ([]*models.Warning, error) {
	warnings, err := s.activity.ListWarnings(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to list warnings", err)
	}
	return warnings, nil
}

// audit writes the activity log entry. Audit failures are logged but
// never fail the admin operation that already committed.
func (s *adminService) audit(ctx context.Context, actor *contextutils.Identity, action string, targetID int64, description string) {
	entry := &models.ActivityLog{
		ActorID:      actor.UserID,
		ActionType:   action,
		TargetUserID: &targetID,
		Description:  description,
	}
	if ip := contextutils.GetClientIP(ctx); ip != "" {
		entry.IPAddress = &ip
	}
	if err := s.activity.Log(ctx, entry); err != nil {
		s.logger.Error("failed to write activity log",
			zap.String("action", action),
			zap.Int64("target_user_id", targetID),
			zap.Error(err),
		)
	}
}

func (s *adminService) transitionError(err error, guardMessage string) error {
	switch {
	case repositories.IsNotFound(err):
		return NewNotFoundError("user not found")
	case errors.Is(err, repositories.ErrInvalidTransition):
		if guardMessage == "" {
			guardMessage = "invalid status transition"
		}
		return NewBadRequestError(guardMessage)
	default:
		return NewInternalError("failed to update user status", err)
	}
}

func (s *adminService) invalidateIdentity(ctx context.Context, userID int64) {
	if err := s.cache.Delete(ctx, identityCacheKey(userID)); err != nil {
		s.logger.Warn("failed to invalidate identity cache",
			zap.Int64("user_id", userID), zap.Error(err))
	}
}
