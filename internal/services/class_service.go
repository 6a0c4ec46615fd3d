package services

import (
	"context"
	"time"

	"mahberhub/internal/cache"
	"mahberhub/internal/contextutils"
	"mahberhub/internal/models"
	"mahberhub/internal/repositories"

	"go.uber.org/zap"
)

const (
	classListCacheKey = "classes:list"
	classListTTL      = 5 * time.Minute
)

type classService struct {
	classes repositories.ClassRepository
	cache   cache.Cache
	logger  *zap.Logger
}

// NewClassService creates the service class directory service
func NewClassService(classes repositories.ClassRepository, c cache.Cache, logger *zap.Logger) ClassService {
	return &classService{classes: classes, cache: c, logger: logger}
}

// ListClasses returns the fixed class directory. The list rarely
// changes, so it is cached briefly to keep the registration page
// cheap.
func (s *classService) ListClasses(ctx context.Context) ([]*models.ServiceClass, error) {
	var cached []*models.ServiceClass
	if found, err := s.cache.Get(ctx, classListCacheKey, &cached); err == nil && found {
		return cached, nil
	}

	classes, err := s.classes.List(ctx)
	if err != nil {
		return nil, NewInternalError("failed to list service classes", err)
	}

	if err := s.cache.Set(ctx, classListCacheKey, classes, classListTTL); err != nil {
		s.logger.Warn("failed to cache class list", zap.Error(err))
	}
	return classes, nil
}

func (s *classService) GetClass(ctx context.Context, id int64) (*models.ServiceClass, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("service class not found")
		}
		return nil, NewInternalError("failed to load service class", err)
	}
	return class, nil
}

// ListMembers returns the active roster of a class. Members may only
// view their own class; leaders their led class; admins any class.
func (s *classService) ListMembers(ctx context.Context, actor *contextutils.Identity, classID int64, page Page) ([]*models.User, int64, error) {
	if !actor.IsSuperAdmin() && actor.EffectiveClassID() != classID && actor.ServiceClassID != classID {
		return nil, 0, NewForbiddenError("you may only view your own class roster")
	}

	if _, err := s.GetClass(ctx, classID); err != nil {
		return nil, 0, err
	}

	members, total, err := s.classes.ListMembers(ctx, classID, page.opts())
	if err != nil {
		return nil, 0, NewInternalError("failed to list class members", err)
	}
	return members, total, nil
}
