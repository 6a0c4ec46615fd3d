package services

import (
	"context"
	"fmt"
	"time"

	"mahberhub/internal/cache"
	"mahberhub/internal/config"
	"mahberhub/internal/contextutils"
	"mahberhub/internal/models"
	"mahberhub/internal/repositories"
	"mahberhub/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type authService struct {
	users   repositories.UserRepository
	classes repositories.ClassRepository
	cache   cache.Cache
	cfg     *config.AuthConfig
	logger  *zap.Logger
}

// NewAuthService creates the authentication service
func NewAuthService(
	users repositories.UserRepository,
	classes repositories.ClassRepository,
	c cache.Cache,
	cfg *config.AuthConfig,
	logger *zap.Logger,
) AuthService {
	return &authService{users: users, classes: classes, cache: c, cfg: cfg, logger: logger}
}

type tokenClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func identityCacheKey(userID int64) string {
	return fmt.Sprintf("auth:identity:%d", userID)
}

// Register creates a new account. The initial status follows the
// chosen service class: the office class requires office approval,
// the unassigned class activates immediately, everything else waits
// for a leader or admin to approve.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}
	if !models.ValidAcademicYear(req.AcademicYear) {
		return nil, NewBadRequestError("invalid academic year")
	}

	serviceClass, err := s.classes.GetByID(ctx, req.ServiceClassID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("service class not found")
		}
		return nil, NewInternalError("failed to look up service class", err)
	}

	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, NewConflictError("username already taken")
	} else if !repositories.IsNotFound(err) {
		return nil, NewInternalError("failed to check username", err)
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, NewConflictError("email already registered")
	} else if !repositories.IsNotFound(err) {
		return nil, NewInternalError("failed to check email", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BCryptCost)
	if err != nil {
		return nil, NewInternalError("failed to hash password", err)
	}

	status := models.StatusPending
	switch serviceClass.Name {
	case models.OfficeClassName:
		status = models.StatusPendingOfficeApproval
	case models.UnassignedClassName:
		status = models.StatusActive
	}

	user := &models.User{
		Username:       req.Username,
		Email:          req.Email,
		FullName:       req.FullName,
		PasswordHash:   string(hash),
		Sex:            req.Sex,
		Department:     req.Department,
		AcademicYear:   req.AcademicYear,
		PhoneNumber:    req.PhoneNumber,
		Bio:            req.Bio,
		BirthDate:      req.BirthDate,
		BirthPlace:     req.BirthPlace,
		Role:           models.RoleMember,
		Status:         status,
		ServiceClassID: req.ServiceClassID,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return nil, NewConflictError("username or email already registered")
		}
		return nil, NewInternalError("failed to create user", err)
	}
	user.ServiceClassName = serviceClass.Name

	token, err := s.signToken(user)
	if err != nil {
		return nil, NewInternalError("failed to sign token", err)
	}

	s.logger.Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("status", user.Status),
	)
	return &AuthResult{Token: token, User: user}, nil
}

// Login authenticates by username or email. Suspended accounts are
// refused; all other statuses receive a token and are gated per
// request by the middleware.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewUnauthorizedError("invalid credentials")
		}
		return nil, NewInternalError("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}

	if user.Status == models.StatusSuspended {
		return nil, NewForbiddenError("your account has been suspended, contact an administrator")
	}

	token, err := s.signToken(user)
	if err != nil {
		return nil, NewInternalError("failed to sign token", err)
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("user not found")
		}
		return nil, NewInternalError("failed to load profile", err)
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}
	if !models.ValidAcademicYear(req.AcademicYear) {
		return nil, NewBadRequestError("invalid academic year")
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FullName = req.FullName
	user.Department = req.Department
	user.AcademicYear = req.AcademicYear
	user.PhoneNumber = req.PhoneNumber
	user.Bio = req.Bio
	user.BirthDate = req.BirthDate
	user.BirthPlace = req.BirthPlace

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, NewInternalError("failed to update profile", err)
	}

	s.invalidateIdentity(ctx, userID)
	return user, nil
}

func (s *authService) SetProfileImage(ctx context.Context, userID int64, imageURL string) (*models.User, error) {
	if err := s.users.UpdateProfileImage(ctx, userID, imageURL); err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("user not found")
		}
		return nil, NewInternalError("failed to update profile image", err)
	}
	return s.GetProfile(ctx, userID)
}

// Identity returns the caller's authoritative role and status. The
// token only identifies the user; role changes and suspensions take
// effect on the next request, bounded by the cache TTL.
func (s *authService) Identity(ctx context.Context, userID int64) (*contextutils.Identity, error) {
	key := identityCacheKey(userID)

	var cached contextutils.Identity
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		return &cached, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewUnauthorizedError("account no longer exists")
		}
		return nil, NewInternalError("failed to resolve identity", err)
	}

	identity := &contextutils.Identity{
		UserID:         user.ID,
		Username:       user.Username,
		Role:           user.Role,
		Status:         user.Status,
		ServiceClassID: user.ServiceClassID,
		ClassLeaderOf:  user.ClassLeaderOf,
	}

	if err := s.cache.Set(ctx, key, identity, s.cfg.IdentityCacheTTL); err != nil {
		s.logger.Warn("failed to cache identity", zap.Error(err))
	}
	return identity, nil
}

// VerifyToken validates the signature and expiry and returns the
// subject user ID.
func (s *authService) VerifyToken(tokenString string) (int64, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, NewUnauthorizedError("invalid or expired token")
	}
	if claims.UserID == 0 {
		return 0, NewUnauthorizedError("invalid token subject")
	}
	return claims.UserID, nil
}

func (s *authService) signToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) invalidateIdentity(ctx context.Context, userID int64) {
	if err := s.cache.Delete(ctx, identityCacheKey(userID)); err != nil {
		s.logger.Warn("failed to invalidate identity cache",
			zap.Int64("user_id", userID), zap.Error(err))
	}
}
