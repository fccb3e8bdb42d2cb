package repository

import (
	"context"
	"fmt"

	"filterchat/internal/domain"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FilterRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Filter, error)
	ListAll(ctx context.Context) ([]*domain.Filter, error)
	ListByInputType(ctx context.Context, inputType domain.ValueType) ([]*domain.Filter, error)
	// ListByIDs сохраняет порядок ids и падает с NotFound, если хоть одного нет
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Filter, error)
}

const filterColumns = `id, name, external_url, input_type, output_type, is_pipeline, filter_ids, description`

type filterRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewFilterRepository(db *pgxpool.Pool, log logger.Logger) FilterRepository {
	return &filterRepository{db: db, log: log}
}

func scanFilter(row pgx.Row) (*domain.Filter, error) {
	f := &domain.Filter{}
	var inputType, outputType string
	err := row.Scan(&f.ID, &f.Name, &f.ExternalURL, &inputType, &outputType, &f.IsPipeline, &f.FilterIDs, &f.Description)
	if err != nil {
		return nil, err
	}
	f.InputType = domain.ValueType(inputType)
	f.OutputType = domain.ValueType(outputType)
	if f.FilterIDs == nil {
		f.FilterIDs = []string{}
	}
	return f, nil
}

func (r *filterRepository) GetByID(ctx context.Context, id string) (*domain.Filter, error) {
	query := `SELECT ` + filterColumns + ` FROM filters WHERE id = $1`

	f, err := scanFilter(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, classify("get filter "+id, err)
	}
	return f, nil
}

func (r *filterRepository) ListAll(ctx context.Context) ([]*domain.Filter, error) {
	return r.list(ctx, `SELECT `+filterColumns+` FROM filters ORDER BY name, id`)
}

func (r *filterRepository) ListByInputType(ctx context.Context, inputType domain.ValueType) ([]*domain.Filter, error) {
	return r.list(ctx, `SELECT `+filterColumns+` FROM filters WHERE input_type = $1 ORDER BY name, id`, string(inputType))
}

func (r *filterRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Filter, error) {
	if len(ids) == 0 {
		return []*domain.Filter{}, nil
	}

	found, err := r.list(ctx, `SELECT `+filterColumns+` FROM filters WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}

	return orderByIDs(ids, found)
}

func (r *filterRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Filter, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list filters", "error", err)
		return nil, classify("list filters", err)
	}
	defer rows.Close()

	filters := []*domain.Filter{}
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			r.log.Error("Failed to scan filter", "error", err)
			return nil, classify("scan filter", err)
		}
		filters = append(filters, f)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list filters", err)
	}

	return filters, nil
}

// orderByIDs раскладывает найденные фильтры в порядке ids (повторы допустимы)
func orderByIDs(ids []string, found []*domain.Filter) ([]*domain.Filter, error) {
	byID := make(map[string]*domain.Filter, len(found))
	for _, f := range found {
		byID[f.ID] = f
	}

	ordered := make([]*domain.Filter, 0, len(ids))
	for _, id := range ids {
		f, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("filter %s: %w", id, apperrors.ErrNotFound)
		}
		ordered = append(ordered, f)
	}
	return ordered, nil
}
