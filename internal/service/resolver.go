package service

import (
	"context"
	"fmt"

	"filterchat/internal/domain"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"
)

// ChainResolver решает, какие фильтры применимы и в каком порядке
type ChainResolver interface {
	// ResolveChatDefaults - default_filter_ids чата, обрезанные на первом несовпадении типа
	ResolveChatDefaults(ctx context.Context, chat *domain.Chat, startType domain.ValueType) ([]*domain.Filter, error)
	// ResolveUserDefaults - второй этап: default_filter_ids получателя
	ResolveUserDefaults(ctx context.Context, user *domain.User, startType domain.ValueType) ([]*domain.Filter, error)
	ResolveApplicable(ctx context.Context, user *domain.User, value *domain.Value) ([]*domain.Filter, error)
	ResolveSingle(ctx context.Context, filterID string, user *domain.User, value *domain.Value) (*domain.Filter, error)
}

type chainResolver struct {
	registry FilterRegistry
	log      logger.Logger
}

func NewChainResolver(registry FilterRegistry, log logger.Logger) ChainResolver {
	return &chainResolver{
		registry: registry,
		log:      log,
	}
}

func (r *chainResolver) ResolveChatDefaults(ctx context.Context, chat *domain.Chat, startType domain.ValueType) ([]*domain.Filter, error) {
	return r.resolveDefaults(ctx, chat.DefaultFilterIDs, startType, "chat_id", chat.ID)
}

func (r *chainResolver) ResolveUserDefaults(ctx context.Context, user *domain.User, startType domain.ValueType) ([]*domain.Filter, error) {
	return r.resolveDefaults(ctx, user.DefaultFilterIDs, startType, "user_id", user.ID)
}

func (r *chainResolver) resolveDefaults(ctx context.Context, ids []string, startType domain.ValueType, ownerKey, ownerID string) ([]*domain.Filter, error) {
	filters, err := r.registry.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	chain, _ := TruncateChain(filters, startType)
	if len(chain) < len(filters) {
		r.log.Debug("Default chain truncated on type mismatch",
			ownerKey, ownerID, "declared", len(filters), "kept", len(chain), "start_type", string(startType))
	}
	return chain, nil
}

// TruncateChain оставляет префикс filters, в котором вход каждого фильтра
// совпадает с выходом предыдущего. Возвращает и итоговый тип.
func TruncateChain(filters []*domain.Filter, startType domain.ValueType) ([]*domain.Filter, domain.ValueType) {
	running := startType
	chain := make([]*domain.Filter, 0, len(filters))
	for _, f := range filters {
		if !f.Accepts(running) {
			break
		}
		chain = append(chain, f)
		running = f.OutputType
	}
	return chain, running
}

func (r *chainResolver) ResolveApplicable(ctx context.Context, user *domain.User, value *domain.Value) ([]*domain.Filter, error) {
	candidates, err := r.registry.ListByInputType(ctx, value.Type)
	if err != nil {
		return nil, err
	}

	applicable := make([]*domain.Filter, 0, len(candidates))
	for _, f := range candidates {
		if user.HasAddedFilter(f.ID) {
			applicable = append(applicable, f)
		}
	}
	return applicable, nil
}

func (r *chainResolver) ResolveSingle(ctx context.Context, filterID string, user *domain.User, value *domain.Value) (*domain.Filter, error) {
	if !user.HasAddedFilter(filterID) {
		return nil, fmt.Errorf("filter %s is not added by user %s: %w", filterID, user.ID, apperrors.ErrPermissionDenied)
	}

	filter, err := r.registry.Get(ctx, filterID)
	if err != nil {
		return nil, err
	}

	// Запрос клиента, а не ошибка конвейера: помечается и как BadRequest
	if !filter.Accepts(value.Type) {
		return nil, fmt.Errorf("filter %s expects %s, value %s is %s: %w: %w",
			filter.ID, filter.InputType, value.ID, value.Type, apperrors.ErrTypeMismatch, apperrors.ErrBadRequest)
	}
	return filter, nil
}
