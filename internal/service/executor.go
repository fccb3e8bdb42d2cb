package service

import (
	"context"
	"fmt"

	"filterchat/internal/domain"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"
)

// ChainResult - прогресс цепочки. При ошибке содержит все шаги,
// успевшие выполниться и сохраниться до отказавшего.
type ChainResult struct {
	Final            *domain.Value
	Produced         []*domain.Value
	AppliedFilterIDs []string
}

// Steps - количество выполненных шагов
func (r *ChainResult) Steps() int {
	return len(r.Produced)
}

// PipelineExecutor прогоняет значение через цепочку строго последовательно
type PipelineExecutor interface {
	RunChain(ctx context.Context, initial *domain.Value, chain []*domain.Filter) (*ChainResult, error)
	RunSingle(ctx context.Context, value *domain.Value, filter *domain.Filter) (*domain.Value, error)
}

type pipelineExecutor struct {
	invoker Invoker
	values  ValueStore
	log     logger.Logger
}

func NewPipelineExecutor(invoker Invoker, values ValueStore, log logger.Logger) PipelineExecutor {
	return &pipelineExecutor{
		invoker: invoker,
		values:  values,
		log:     log,
	}
}

func (e *pipelineExecutor) RunChain(ctx context.Context, initial *domain.Value, chain []*domain.Filter) (*ChainResult, error) {
	result := &ChainResult{
		Final:            initial,
		Produced:         []*domain.Value{},
		AppliedFilterIDs: []string{},
	}

	for i, filter := range chain {
		next, err := e.step(ctx, result.Final, filter)
		if err != nil {
			e.log.Warn("Chain stopped", "step", i, "filter_id", filter.ID, "completed", result.Steps(), "error", err)
			return result, &StepError{Step: i, FilterID: filter.ID, Err: err}
		}

		result.Produced = append(result.Produced, next)
		result.AppliedFilterIDs = append(result.AppliedFilterIDs, filter.ID)
		result.Final = next
	}

	return result, nil
}

func (e *pipelineExecutor) RunSingle(ctx context.Context, value *domain.Value, filter *domain.Filter) (*domain.Value, error) {
	return e.step(ctx, value, filter)
}

// step: проверка типа, вызов фильтра, сохранение результата
func (e *pipelineExecutor) step(ctx context.Context, input *domain.Value, filter *domain.Filter) (*domain.Value, error) {
	if !filter.Accepts(input.Type) {
		return nil, fmt.Errorf("filter %s expects %s, got %s: %w",
			filter.ID, filter.InputType, input.Type, apperrors.ErrTypeMismatch)
	}

	out, err := e.invoker.Apply(ctx, filter, *input)
	if err != nil {
		return nil, err
	}

	id, err := e.values.Put(ctx, out.Type, out.Content)
	if err != nil {
		e.log.Error("Failed to persist filter output", "filter_id", filter.ID, "error", err)
		return nil, err
	}

	e.log.Debug("Chain step stored", "filter_id", filter.ID, "value_id", id, "type", string(out.Type))
	return &domain.Value{ID: id, Type: out.Type, Content: out.Content}, nil
}
