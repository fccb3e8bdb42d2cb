package repository

import (
	"context"

	"filterchat/internal/domain"
	"filterchat/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ValueRepository interface {
	// Insert сохраняет значение и возвращает все ключи, сгенерированные хранилищем
	Insert(ctx context.Context, valueType domain.ValueType, content []byte) ([]string, error)
	GetByID(ctx context.Context, id string) (*domain.Value, error)
}

type valueRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewValueRepository(db *pgxpool.Pool, log logger.Logger) ValueRepository {
	return &valueRepository{db: db, log: log}
}

func (r *valueRepository) Insert(ctx context.Context, valueType domain.ValueType, content []byte) ([]string, error) {
	query := `
		INSERT INTO message_values (type, content)
		VALUES ($1, $2)
		RETURNING id
	`

	rows, err := r.db.Query(ctx, query, string(valueType), content)
	if err != nil {
		r.log.Error("Failed to insert value", "error", err)
		return nil, classify("insert value", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, classify("scan value id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		r.log.Error("Failed to insert value", "error", err)
		return nil, classify("insert value", err)
	}

	return ids, nil
}

func (r *valueRepository) GetByID(ctx context.Context, id string) (*domain.Value, error) {
	query := `
		SELECT id, type, content
		FROM message_values
		WHERE id = $1
	`

	value := &domain.Value{}
	var valueType string
	err := r.db.QueryRow(ctx, query, id).Scan(&value.ID, &valueType, &value.Content)
	if err != nil {
		return nil, classify("get value "+id, err)
	}
	value.Type = domain.ValueType(valueType)

	return value, nil
}
