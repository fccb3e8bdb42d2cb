package repository

import (
	"context"
	"encoding/json"
	"time"

	"filterchat/internal/domain"
	"filterchat/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const filterCacheKeyPrefix = "filter:"

// cachedFilterRepository - read-through кэш в Redis поверх FilterRepository.
// Фильтры не меняются после создания, поэтому инвалидация не нужна, хватает TTL.
// Списки не кэшируются: новые фильтры должны появляться сразу.
type cachedFilterRepository struct {
	next  FilterRepository
	redis *redis.Client
	ttl   time.Duration
	log   logger.Logger
}

func NewCachedFilterRepository(next FilterRepository, redis *redis.Client, ttl time.Duration, log logger.Logger) FilterRepository {
	return &cachedFilterRepository{next: next, redis: redis, ttl: ttl, log: log}
}

func (r *cachedFilterRepository) GetByID(ctx context.Context, id string) (*domain.Filter, error) {
	if f, ok := r.lookup(ctx, id); ok {
		return f, nil
	}

	f, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, f)
	return f, nil
}

func (r *cachedFilterRepository) ListAll(ctx context.Context) ([]*domain.Filter, error) {
	return r.next.ListAll(ctx)
}

func (r *cachedFilterRepository) ListByInputType(ctx context.Context, inputType domain.ValueType) ([]*domain.Filter, error) {
	return r.next.ListByInputType(ctx, inputType)
}

func (r *cachedFilterRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Filter, error) {
	if len(ids) == 0 {
		return []*domain.Filter{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = filterCacheKeyPrefix + id
	}

	cached, err := r.redis.MGet(ctx, keys...).Result()
	if err != nil {
		r.log.Warn("Filter cache unavailable", "error", err)
		return r.next.ListByIDs(ctx, ids)
	}

	found := make([]*domain.Filter, 0, len(ids))
	var missing []string
	for i, raw := range cached {
		s, ok := raw.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		f := &domain.Filter{}
		if err := json.Unmarshal([]byte(s), f); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		found = append(found, f)
	}

	if len(missing) > 0 {
		loaded, err := r.next.ListByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, f := range loaded {
			r.store(ctx, f)
		}
		found = append(found, loaded...)
	}

	return orderByIDs(ids, found)
}

func (r *cachedFilterRepository) lookup(ctx context.Context, id string) (*domain.Filter, bool) {
	raw, err := r.redis.Get(ctx, filterCacheKeyPrefix+id).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn("Filter cache lookup failed", "error", err, "filter_id", id)
		}
		return nil, false
	}

	f := &domain.Filter{}
	if err := json.Unmarshal(raw, f); err != nil {
		r.log.Warn("Corrupt filter cache entry", "error", err, "filter_id", id)
		return nil, false
	}
	return f, true
}

func (r *cachedFilterRepository) store(ctx context.Context, f *domain.Filter) {
	raw, err := json.Marshal(f)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, filterCacheKeyPrefix+f.ID, raw, r.ttl).Err(); err != nil {
		r.log.Warn("Failed to cache filter", "error", err, "filter_id", f.ID)
	}
}
