package repository

import (
	"errors"
	"testing"

	apperrors "filterchat/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.ErrorIs(t, classify("get", pgx.ErrNoRows), apperrors.ErrNotFound)

	checkErr := &pgconn.PgError{Code: pgCheckViolation, ConstraintName: "messages_history_len"}
	assert.ErrorIs(t, classify("append", checkErr), apperrors.ErrIntegrity)

	dup := &pgconn.PgError{Code: pgUniqueViolation}
	assert.ErrorIs(t, classify("insert", dup), apperrors.ErrIntegrity)

	cause := errors.New("connection reset")
	err := classify("insert", cause)
	assert.ErrorIs(t, err, apperrors.ErrStorage)
	assert.ErrorIs(t, err, cause)
}
