package service

import (
	"context"
	"fmt"
	"time"

	"filterchat/internal/domain"
	"filterchat/internal/metrics"
	"filterchat/internal/repository"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"
)

// MessageMutator ведет историю значений сообщения для одного получателя
type MessageMutator interface {
	// RecordOriginal создает запись с value_ids = [value.ID]; несохраненное значение сначала сохраняется
	RecordOriginal(ctx context.Context, fields domain.MessageFields, value *domain.Value) (*domain.Message, error)
	// AppendStep дописывает шаг, если история все еще длины expectedLen
	AppendStep(ctx context.Context, messageID string, expectedLen int, valueID, filterID string) (*domain.Message, error)
	// AppendChain дописывает все шаги результата по порядку
	AppendChain(ctx context.Context, message *domain.Message, result *ChainResult) (*domain.Message, error)
}

type messageMutator struct {
	messageRepo repository.MessageRepository
	values      ValueStore
	log         logger.Logger
}

func NewMessageMutator(messageRepo repository.MessageRepository, values ValueStore, log logger.Logger) MessageMutator {
	return &messageMutator{
		messageRepo: messageRepo,
		values:      values,
		log:         log,
	}
}

func (m *messageMutator) RecordOriginal(ctx context.Context, fields domain.MessageFields, value *domain.Value) (*domain.Message, error) {
	if value.ID == "" {
		id, err := m.values.Put(ctx, value.Type, value.Content)
		if err != nil {
			return nil, err
		}
		value.ID = id
	}

	createdAt := fields.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	message := &domain.Message{
		ChatID:     fields.ChatID,
		SenderID:   fields.SenderID,
		ReceiverID: fields.ReceiverID,
		CreatedAt:  createdAt,
		ValueIDs:   []string{value.ID},
		FilterIDs:  []string{},
	}

	if err := m.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	metrics.MessagesFannedOut.Inc()
	return message, nil
}

func (m *messageMutator) AppendStep(ctx context.Context, messageID string, expectedLen int, valueID, filterID string) (*domain.Message, error) {
	message, err := m.messageRepo.AppendStep(ctx, messageID, expectedLen, valueID, filterID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			metrics.AppendConflicts.Inc()
		}
		return nil, err
	}

	if !message.Consistent() {
		return nil, fmt.Errorf("message %s has %d values and %d filters: %w",
			messageID, len(message.ValueIDs), len(message.FilterIDs), apperrors.ErrIntegrity)
	}
	return message, nil
}

func (m *messageMutator) AppendChain(ctx context.Context, message *domain.Message, result *ChainResult) (*domain.Message, error) {
	if result == nil {
		return message, nil
	}

	for i, value := range result.Produced {
		updated, err := m.AppendStep(ctx, message.MessageID, len(message.ValueIDs), value.ID, result.AppliedFilterIDs[i])
		if err != nil {
			return message, err
		}
		message = updated
	}
	return message, nil
}
