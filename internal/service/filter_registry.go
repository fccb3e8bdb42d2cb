package service

import (
	"context"

	"filterchat/internal/domain"
	"filterchat/internal/repository"
	"filterchat/pkg/logger"
)

// FilterRegistry - поиск описаний фильтров
type FilterRegistry interface {
	Get(ctx context.Context, id string) (*domain.Filter, error)
	List(ctx context.Context) ([]*domain.Filter, error)
	ListByInputType(ctx context.Context, inputType domain.ValueType) ([]*domain.Filter, error)
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Filter, error)
}

type filterRegistry struct {
	filterRepo repository.FilterRepository
	log        logger.Logger
}

func NewFilterRegistry(filterRepo repository.FilterRepository, log logger.Logger) FilterRegistry {
	return &filterRegistry{
		filterRepo: filterRepo,
		log:        log,
	}
}

func (r *filterRegistry) Get(ctx context.Context, id string) (*domain.Filter, error) {
	return r.filterRepo.GetByID(ctx, id)
}

func (r *filterRegistry) List(ctx context.Context) ([]*domain.Filter, error) {
	return r.filterRepo.ListAll(ctx)
}

func (r *filterRegistry) ListByInputType(ctx context.Context, inputType domain.ValueType) ([]*domain.Filter, error) {
	return r.filterRepo.ListByInputType(ctx, inputType)
}

func (r *filterRegistry) ListByIDs(ctx context.Context, ids []string) ([]*domain.Filter, error) {
	return r.filterRepo.ListByIDs(ctx, ids)
}
