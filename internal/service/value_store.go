package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"filterchat/internal/domain"
	"filterchat/internal/metrics"
	"filterchat/internal/repository"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"
)

// ValueStore - append-only хранилище неизменяемых значений
type ValueStore interface {
	Put(ctx context.Context, valueType domain.ValueType, content []byte) (string, error)
	Get(ctx context.Context, id string) (*domain.Value, error)
}

type valueStore struct {
	valueRepo repository.ValueRepository
	log       logger.Logger
}

func NewValueStore(valueRepo repository.ValueRepository, log logger.Logger) ValueStore {
	return &valueStore{
		valueRepo: valueRepo,
		log:       log,
	}
}

func (s *valueStore) Put(ctx context.Context, valueType domain.ValueType, content []byte) (string, error) {
	if !valueType.Valid() {
		return "", fmt.Errorf("value type %q: %w", valueType, apperrors.ErrBadRequest)
	}
	if valueType == domain.ValueTypeText && !utf8.Valid(content) {
		return "", fmt.Errorf("text value is not valid UTF-8: %w", apperrors.ErrBadRequest)
	}

	ids, err := s.valueRepo.Insert(ctx, valueType, content)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrStorage) && !apperrors.Is(err, apperrors.ErrIntegrity) {
			err = fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
		}
		return "", err
	}

	// Один вызов - ровно один ключ. Несколько ключей означают неоднозначную запись.
	if len(ids) != 1 {
		s.log.Error("Ambiguous value insert", "generated_ids", len(ids), "type", string(valueType))
		return "", fmt.Errorf("value insert generated %d ids: %w", len(ids), apperrors.ErrIntegrity)
	}

	metrics.ValuesStored.WithLabelValues(string(valueType)).Inc()
	return ids[0], nil
}

func (s *valueStore) Get(ctx context.Context, id string) (*domain.Value, error) {
	return s.valueRepo.GetByID(ctx, id)
}
