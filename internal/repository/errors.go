package repository

import (
	"errors"
	"fmt"

	apperrors "filterchat/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// classify переводит ошибку драйвера в вид ошибки из pkg/errors
func classify(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgCheckViolation:
			return fmt.Errorf("%s: %w: %s (%s)", op, apperrors.ErrIntegrity, pgErr.Message, pgErr.ConstraintName)
		}
	}

	return fmt.Errorf("%s: %w: %w", op, apperrors.ErrStorage, err)
}
