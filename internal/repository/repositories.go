package repository

import (
	"filterchat/internal/config"
	"filterchat/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Repositories struct {
	Value     ValueRepository
	Filter    FilterRepository
	Message   MessageRepository
	User      UserRepository
	Chat      ChatRepository
	RateLimit RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, redis *redis.Client, cfg config.RedisConfig, log logger.Logger) *Repositories {
	repos := &Repositories{
		Value:     NewValueRepository(db, log),
		Filter:    NewFilterRepository(db, log),
		Message:   NewMessageRepository(db, log),
		User:      NewUserRepository(db, log),
		Chat:      NewChatRepository(db, log),
		RateLimit: NewRateLimitRepository(redis, log),
	}

	if cfg.FilterCacheTTL > 0 {
		repos.Filter = NewCachedFilterRepository(repos.Filter, redis, cfg.FilterCacheTTL, log)
		log.Info("Filter cache enabled", "ttl", cfg.FilterCacheTTL.String())
	}

	return repos
}
