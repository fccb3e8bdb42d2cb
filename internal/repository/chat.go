package repository

import (
	"context"

	"filterchat/internal/domain"
	"filterchat/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Chat, error)
}

type chatRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewChatRepository(db *pgxpool.Pool, log logger.Logger) ChatRepository {
	return &chatRepository{db: db, log: log}
}

func (r *chatRepository) GetByID(ctx context.Context, id string) (*domain.Chat, error) {
	query := `
		SELECT id, name, user_ids, default_filter_ids
		FROM chats
		WHERE id = $1
	`

	chat := &domain.Chat{}
	err := r.db.QueryRow(ctx, query, id).Scan(&chat.ID, &chat.Name, &chat.UserIDs, &chat.DefaultFilterIDs)
	if err != nil {
		return nil, classify("get chat "+id, err)
	}

	return chat, nil
}
