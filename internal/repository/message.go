package repository

import (
	"context"
	"errors"
	"fmt"

	"filterchat/internal/domain"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository interface {
	// Create вставляет запись и заполняет MessageID
	Create(ctx context.Context, message *domain.Message) error
	GetByID(ctx context.Context, messageID string) (*domain.Message, error)
	ListByChatAndReceiver(ctx context.Context, chatID, receiverID string) ([]*domain.Message, error)
	// AppendStep дописывает пару (valueID, filterID), только если в истории
	// сейчас ровно expectedLen значений. Иначе ErrConflict.
	AppendStep(ctx context.Context, messageID string, expectedLen int, valueID, filterID string) (*domain.Message, error)
}

const messageColumns = `message_id, chat_id, sender_id, receiver_id, created_at, value_ids, filter_ids`

type messageRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMessageRepository(db *pgxpool.Pool, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	m := &domain.Message{}
	err := row.Scan(&m.MessageID, &m.ChatID, &m.SenderID, &m.ReceiverID, &m.CreatedAt, &m.ValueIDs, &m.FilterIDs)
	if err != nil {
		return nil, err
	}
	if m.FilterIDs == nil {
		m.FilterIDs = []string{}
	}
	return m, nil
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	if !message.Consistent() {
		return fmt.Errorf("message history has %d values and %d filters: %w",
			len(message.ValueIDs), len(message.FilterIDs), apperrors.ErrIntegrity)
	}

	query := `
		INSERT INTO messages (chat_id, sender_id, receiver_id, created_at, value_ids, filter_ids)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING message_id, created_at
	`

	filterIDs := message.FilterIDs
	if filterIDs == nil {
		filterIDs = []string{}
	}

	err := r.db.QueryRow(ctx, query,
		message.ChatID, message.SenderID, message.ReceiverID, message.CreatedAt,
		message.ValueIDs, filterIDs,
	).Scan(&message.MessageID, &message.CreatedAt)
	if err != nil {
		r.log.Error("Failed to create message", "error", err, "chat_id", message.ChatID, "receiver_id", message.ReceiverID)
		return classify("create message", err)
	}
	message.FilterIDs = filterIDs

	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, messageID string) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE message_id = $1`

	m, err := scanMessage(r.db.QueryRow(ctx, query, messageID))
	if err != nil {
		return nil, classify("get message "+messageID, err)
	}
	return m, nil
}

func (r *messageRepository) ListByChatAndReceiver(ctx context.Context, chatID, receiverID string) ([]*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE chat_id = $1 AND receiver_id = $2
		ORDER BY created_at, message_id
	`

	rows, err := r.db.Query(ctx, query, chatID, receiverID)
	if err != nil {
		r.log.Error("Failed to list messages", "error", err)
		return nil, classify("list messages", err)
	}
	defer rows.Close()

	messages := []*domain.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, classify("scan message", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list messages", err)
	}

	return messages, nil
}

func (r *messageRepository) AppendStep(ctx context.Context, messageID string, expectedLen int, valueID, filterID string) (*domain.Message, error) {
	// Одна команда: строка блокируется, условие на длину перепроверяется
	// после ожидания конкурирующего UPDATE, поэтому второй писатель получает 0 строк.
	query := `
		UPDATE messages
		SET value_ids = array_append(value_ids, $3),
		    filter_ids = array_append(filter_ids, $4)
		WHERE message_id = $1 AND cardinality(value_ids) = $2
		RETURNING ` + messageColumns

	m, err := scanMessage(r.db.QueryRow(ctx, query, messageID, expectedLen, valueID, filterID))
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.log.Error("Failed to append message step", "error", err, "message_id", messageID)
		return nil, classify("append step", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM messages WHERE message_id = $1)`, messageID).Scan(&exists); err != nil {
		return nil, classify("check message "+messageID, err)
	}
	if !exists {
		return nil, fmt.Errorf("message %s: %w", messageID, apperrors.ErrNotFound)
	}

	r.log.Warn("Message history moved during append", "message_id", messageID, "expected_len", expectedLen)
	return nil, fmt.Errorf("message %s history is no longer %d values long: %w", messageID, expectedLen, apperrors.ErrConflict)
}
