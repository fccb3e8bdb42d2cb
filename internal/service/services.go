package service

import (
	"filterchat/internal/config"
	"filterchat/internal/repository"
	"filterchat/pkg/logger"
)

type Services struct {
	Auth      AuthService
	Values    ValueStore
	Filters   FilterRegistry
	Invoker   Invoker
	Resolver  ChainResolver
	Executor  PipelineExecutor
	Mutator   MessageMutator
	Message   MessageService
	User      UserService
	RateLimit RateLimitService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log logger.Logger) *Services {
	return NewServicesWithInvoker(repos, cfg, NewHTTPInvoker(cfg.Filters, log), log)
}

// NewServicesWithInvoker - сборка с заданным вызовом фильтров (тесты подставляют httptest-клиент)
func NewServicesWithInvoker(repos *repository.Repositories, cfg *config.Config, invoker Invoker, log logger.Logger) *Services {
	values := NewValueStore(repos.Value, log)
	filters := NewFilterRegistry(repos.Filter, log)
	resolver := NewChainResolver(filters, log)
	executor := NewPipelineExecutor(invoker, values, log)
	mutator := NewMessageMutator(repos.Message, values, log)

	return &Services{
		Auth:      NewAuthService(cfg.JWT, log),
		Values:    values,
		Filters:   filters,
		Invoker:   invoker,
		Resolver:  resolver,
		Executor:  executor,
		Mutator:   mutator,
		Message:   NewMessageService(repos, values, resolver, executor, mutator, log),
		User:      NewUserService(repos.User, filters, log),
		RateLimit: NewRateLimitService(repos.RateLimit, log),
	}
}
