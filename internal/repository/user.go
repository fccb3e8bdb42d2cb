package repository

import (
	"context"
	"fmt"

	"filterchat/internal/domain"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// AddFilter идемпотентно добавляет фильтр в added_filter_ids
	AddFilter(ctx context.Context, userID, filterID string) error
}

type userRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewUserRepository(db *pgxpool.Pool, log logger.Logger) UserRepository {
	return &userRepository{db: db, log: log}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, username, name, avatar, default_filter_ids, added_filter_ids
		FROM users
		WHERE id = $1
	`

	user := &domain.User{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Name, &user.Avatar,
		&user.DefaultFilterIDs, &user.AddedFilterIDs,
	)
	if err != nil {
		return nil, classify("get user "+id, err)
	}

	return user, nil
}

func (r *userRepository) AddFilter(ctx context.Context, userID, filterID string) error {
	query := `
		UPDATE users
		SET added_filter_ids = array_append(added_filter_ids, $2)
		WHERE id = $1 AND NOT ($2 = ANY(added_filter_ids))
	`

	tag, err := r.db.Exec(ctx, query, userID, filterID)
	if err != nil {
		r.log.Error("Failed to add user filter", "error", err, "user_id", userID)
		return classify("add user filter", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// 0 строк: либо фильтр уже добавлен, либо пользователя нет
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return classify("check user "+userID, err)
	}
	if !exists {
		return fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	return nil
}
