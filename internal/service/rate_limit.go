package service

import (
	"context"
	"fmt"
	"time"

	"filterchat/internal/repository"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"
)

type RateLimitService interface {
	// Allow учитывает попытку и возвращает остаток в окне; сверх лимита - ErrRateLimited
	Allow(ctx context.Context, key string, limit int, window time.Duration) (int, error)
}

type rateLimitService struct {
	rateLimitRepo repository.RateLimitRepository
	log           logger.Logger
}

func NewRateLimitService(rateLimitRepo repository.RateLimitRepository, log logger.Logger) RateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		log:           log,
	}
}

func (s *rateLimitService) Allow(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	// Решение принимается только по значению счетчика после INCR
	count, err := s.rateLimitRepo.Increment(ctx, key, window)
	if err != nil {
		return 0, err
	}
	if count > int64(limit) {
		return 0, fmt.Errorf("key %s exceeded %d requests per %s: %w", key, limit, window, apperrors.ErrRateLimited)
	}

	return limit - int(count), nil
}
