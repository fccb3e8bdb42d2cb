package service

import (
	"context"

	"filterchat/internal/domain"
	"filterchat/internal/repository"
	"filterchat/pkg/logger"
)

type UserService interface {
	ListAddedFilters(ctx context.Context, userID string) ([]*domain.Filter, error)
	AddFilter(ctx context.Context, userID, filterID string) ([]*domain.Filter, error)
}

type userService struct {
	userRepo repository.UserRepository
	registry FilterRegistry
	log      logger.Logger
}

func NewUserService(userRepo repository.UserRepository, registry FilterRegistry, log logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		registry: registry,
		log:      log,
	}
}

func (s *userService) ListAddedFilters(ctx context.Context, userID string) ([]*domain.Filter, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.registry.ListByIDs(ctx, user.AddedFilterIDs)
}

// AddFilter идемпотентен; возвращает обновленный список добавленных фильтров
func (s *userService) AddFilter(ctx context.Context, userID, filterID string) ([]*domain.Filter, error) {
	if _, err := s.registry.Get(ctx, filterID); err != nil {
		return nil, err
	}

	if err := s.userRepo.AddFilter(ctx, userID, filterID); err != nil {
		s.log.Error("Failed to add filter", "user_id", userID, "filter_id", filterID, "error", err)
		return nil, err
	}

	s.log.Info("Filter added", "user_id", userID, "filter_id", filterID)
	return s.ListAddedFilters(ctx, userID)
}
