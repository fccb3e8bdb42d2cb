package service

import (
	"context"
	"fmt"
	"time"

	"filterchat/internal/domain"
	"filterchat/internal/repository"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const (
	StageChat = "chat"
	StageUser = "user"
)

type MessageService interface {
	SendMessage(ctx context.Context, chatID, senderID string, valueType domain.ValueType, raw []byte) (*SendResult, error)
	ApplyFilter(ctx context.Context, messageID, filterID, requesterID string) (*domain.Value, error)
	ListApplicableFilters(ctx context.Context, messageID, requesterID string) ([]*domain.Filter, error)
	ListChatMessages(ctx context.Context, chatID, requesterID string) ([]*domain.MessageView, error)
}

// SendResult - идентификаторы записей по получателям и отказавшие этапы цепочек
type SendResult struct {
	Messages []RecipientMessage `json:"messages"`
	Failures []ChainFailure     `json:"failures"`
}

type RecipientMessage struct {
	ReceiverID string `json:"receiver_id"`
	MessageID  string `json:"message_id"`
}

// ChainFailure - этап, остановившийся на ошибке фильтра. Успешные шаги до него уже в истории.
type ChainFailure struct {
	ReceiverID string `json:"receiver_id"`
	Stage      string `json:"stage"`
	FilterID   string `json:"filter_id"`
	Step       int    `json:"step"`
	Error      string `json:"error"`
}

type messageService struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	values      ValueStore
	resolver    ChainResolver
	executor    PipelineExecutor
	mutator     MessageMutator
	log         logger.Logger
}

func NewMessageService(
	repos *repository.Repositories,
	values ValueStore,
	resolver ChainResolver,
	executor PipelineExecutor,
	mutator MessageMutator,
	log logger.Logger,
) MessageService {
	return &messageService{
		chatRepo:    repos.Chat,
		userRepo:    repos.User,
		messageRepo: repos.Message,
		values:      values,
		resolver:    resolver,
		executor:    executor,
		mutator:     mutator,
		log:         log,
	}
}

func (s *messageService) SendMessage(ctx context.Context, chatID, senderID string, valueType domain.ValueType, raw []byte) (*SendResult, error) {
	if !valueType.Valid() {
		return nil, fmt.Errorf("value type %q: %w", valueType, apperrors.ErrBadRequest)
	}

	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasMember(senderID) {
		return nil, fmt.Errorf("user %s is not a member of chat %s: %w", senderID, chatID, apperrors.ErrPermissionDenied)
	}

	// Все получатели проверяются до первой записи: отсутствующий участник
	// прерывает отправку, не оставив записей у остальных
	receivers, err := s.loadReceivers(ctx, chat.UserIDs)
	if err != nil {
		return nil, err
	}

	originalID, err := s.values.Put(ctx, valueType, raw)
	if err != nil {
		return nil, err
	}
	original := &domain.Value{ID: originalID, Type: valueType, Content: raw}

	// Этап 1 общий для всех получателей: значения сохраняются один раз
	chatChain, err := s.resolver.ResolveChatDefaults(ctx, chat, valueType)
	if err != nil {
		return nil, err
	}
	chatResult, chatErr := s.executor.RunChain(ctx, original, chatChain)
	if chatErr != nil && !recoverable(chatErr) {
		return nil, chatErr
	}

	// Сломанный этап 1 не дает известного итогового типа, этап 2 не запускается
	userChains := make([][]*domain.Filter, len(receivers))
	if chatErr == nil {
		for i, receiver := range receivers {
			userChains[i], err = s.resolver.ResolveUserDefaults(ctx, receiver, chatResult.Final.Type)
			if err != nil {
				return nil, err
			}
		}
	}

	fields := domain.MessageFields{
		ChatID:    chat.ID,
		SenderID:  senderID,
		CreatedAt: time.Now(),
	}

	messages := make([]RecipientMessage, len(receivers))
	failures := make([][]ChainFailure, len(receivers))

	g, gctx := errgroup.WithContext(ctx)
	for i, receiver := range receivers {
		i, receiver := i, receiver
		g.Go(func() error {
			recipientFields := fields
			recipientFields.ReceiverID = receiver.ID

			message, recipientFailures, err := s.deliver(gctx, recipientFields, original, chatResult, chatErr, userChains[i])
			if err != nil {
				return fmt.Errorf("deliver to %s: %w", receiver.ID, err)
			}
			messages[i] = RecipientMessage{ReceiverID: receiver.ID, MessageID: message.MessageID}
			failures[i] = recipientFailures
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("Message fan-out failed", "chat_id", chatID, "sender_id", senderID, "error", err)
		return nil, err
	}

	result := &SendResult{Messages: messages, Failures: []ChainFailure{}}
	for _, f := range failures {
		result.Failures = append(result.Failures, f...)
	}

	s.log.Info("Message sent",
		"chat_id", chatID, "sender_id", senderID, "recipients", len(messages),
		"chat_steps", chatResult.Steps(), "failures", len(result.Failures))
	return result, nil
}

func (s *messageService) loadReceivers(ctx context.Context, userIDs []string) ([]*domain.User, error) {
	receivers := make([]*domain.User, 0, len(userIDs))
	for _, id := range userIDs {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			s.log.Warn("Chat member cannot receive messages", "user_id", id, "error", err)
			return nil, fmt.Errorf("receiver %s: %w", id, err)
		}
		receivers = append(receivers, user)
	}
	return receivers, nil
}

// deliver создает запись одного получателя и прогоняет его этап 2
func (s *messageService) deliver(
	ctx context.Context,
	fields domain.MessageFields,
	original *domain.Value,
	chatResult *ChainResult,
	chatErr error,
	userChain []*domain.Filter,
) (*domain.Message, []ChainFailure, error) {
	var failures []ChainFailure

	message, err := s.mutator.RecordOriginal(ctx, fields, original)
	if err != nil {
		return nil, nil, err
	}

	message, err = s.mutator.AppendChain(ctx, message, chatResult)
	if err != nil {
		return nil, nil, err
	}

	if chatErr != nil {
		return message, append(failures, newChainFailure(fields.ReceiverID, StageChat, chatErr)), nil
	}
	if len(userChain) == 0 {
		return message, failures, nil
	}

	userResult, userErr := s.executor.RunChain(ctx, chatResult.Final, userChain)
	if userErr != nil && !recoverable(userErr) {
		return nil, nil, userErr
	}

	message, err = s.mutator.AppendChain(ctx, message, userResult)
	if err != nil {
		return nil, nil, err
	}

	if userErr != nil {
		failures = append(failures, newChainFailure(fields.ReceiverID, StageUser, userErr))
	}
	return message, failures, nil
}

func (s *messageService) ApplyFilter(ctx context.Context, messageID, filterID, requesterID string) (*domain.Value, error) {
	message, receiver, err := s.ownMessage(ctx, messageID, requesterID)
	if err != nil {
		return nil, err
	}

	latest, err := s.values.Get(ctx, message.LatestValueID())
	if err != nil {
		return nil, err
	}

	filter, err := s.resolver.ResolveSingle(ctx, filterID, receiver, latest)
	if err != nil {
		return nil, err
	}

	out, err := s.executor.RunSingle(ctx, latest, filter)
	if err != nil {
		s.log.Warn("On-demand filter failed", "message_id", messageID, "filter_id", filterID, "error", err)
		return nil, err
	}

	// Длина истории на момент чтения; если она сдвинулась, клиент повторяет операцию
	if _, err := s.mutator.AppendStep(ctx, message.MessageID, len(message.ValueIDs), out.ID, filter.ID); err != nil {
		s.log.Warn("On-demand append rejected", "message_id", messageID, "filter_id", filterID, "error", err)
		return nil, err
	}

	s.log.Info("Filter applied", "message_id", messageID, "filter_id", filterID, "value_id", out.ID)
	return out, nil
}

func (s *messageService) ListApplicableFilters(ctx context.Context, messageID, requesterID string) ([]*domain.Filter, error) {
	message, receiver, err := s.ownMessage(ctx, messageID, requesterID)
	if err != nil {
		return nil, err
	}

	latest, err := s.values.Get(ctx, message.LatestValueID())
	if err != nil {
		return nil, err
	}

	return s.resolver.ResolveApplicable(ctx, receiver, latest)
}

func (s *messageService) ListChatMessages(ctx context.Context, chatID, requesterID string) ([]*domain.MessageView, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasMember(requesterID) {
		return nil, fmt.Errorf("user %s is not a member of chat %s: %w", requesterID, chatID, apperrors.ErrPermissionDenied)
	}

	messages, err := s.messageRepo.ListByChatAndReceiver(ctx, chatID, requesterID)
	if err != nil {
		return nil, err
	}

	views := make([]*domain.MessageView, 0, len(messages))
	for _, m := range messages {
		view := &domain.MessageView{Message: m, Values: make([]*domain.Value, 0, len(m.ValueIDs))}
		for _, id := range m.ValueIDs {
			v, err := s.values.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			view.Values = append(view.Values, v)
		}
		views = append(views, view)
	}
	return views, nil
}

// ownMessage загружает сообщение и его получателя; чужие записи недоступны
func (s *messageService) ownMessage(ctx context.Context, messageID, requesterID string) (*domain.Message, *domain.User, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, nil, err
	}
	if message.ReceiverID != requesterID {
		return nil, nil, fmt.Errorf("message %s belongs to another receiver: %w", messageID, apperrors.ErrPermissionDenied)
	}

	receiver, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, nil, err
	}
	return message, receiver, nil
}

// recoverable - отказ фильтра, а не хранилища: частичная история записывается
func recoverable(err error) bool {
	return apperrors.Is(err, apperrors.ErrUpstream) || apperrors.Is(err, apperrors.ErrTypeMismatch)
}

func newChainFailure(receiverID, stage string, err error) ChainFailure {
	failure := ChainFailure{
		ReceiverID: receiverID,
		Stage:      stage,
		Error:      err.Error(),
	}
	var stepErr *StepError
	if apperrors.As(err, &stepErr) {
		failure.FilterID = stepErr.FilterID
		failure.Step = stepErr.Step
	}
	return failure
}
