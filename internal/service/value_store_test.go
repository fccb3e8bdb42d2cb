package service

import (
	"context"
	"errors"
	"testing"

	"filterchat/internal/domain"
	apperrors "filterchat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueStore_GetIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.services.Values.Put(ctx, domain.ValueTypeAudio, []byte{0, 1, 2, 255})
	require.NoError(t, err)

	first, err := env.services.Values.Get(ctx, id)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := env.services.Values.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, first.Type, again.Type)
		assert.Equal(t, first.Content, again.Content)
	}
}

func TestValueStore_Put(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.services.Values.Put(ctx, domain.ValueType("video"), []byte("x"))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = env.services.Values.Put(ctx, domain.ValueTypeText, []byte("a\xffb"))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Zero(t, env.store.ValueCount())

	_, err = env.services.Values.Put(ctx, domain.ValueTypeAudio, []byte("a\xffb"))
	assert.NoError(t, err)

	_, err = env.services.Values.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestValueStore_AmbiguousInsertIsIntegrityError(t *testing.T) {
	env := newTestEnv(t)
	env.store.InsertHook = func(domain.ValueType) ([]string, error) {
		return []string{"a", "b"}, nil
	}

	_, err := env.services.Values.Put(context.Background(), domain.ValueTypeText, []byte("x"))
	assert.ErrorIs(t, err, apperrors.ErrIntegrity)

	env.store.InsertHook = func(domain.ValueType) ([]string, error) {
		return []string{}, nil
	}
	_, err = env.services.Values.Put(context.Background(), domain.ValueTypeText, []byte("x"))
	assert.ErrorIs(t, err, apperrors.ErrIntegrity)
}

func TestValueStore_RejectedWriteIsStorageError(t *testing.T) {
	env := newTestEnv(t)
	env.store.InsertHook = func(domain.ValueType) ([]string, error) {
		return nil, errors.New("disk full")
	}

	_, err := env.services.Values.Put(context.Background(), domain.ValueTypeText, []byte("x"))
	assert.ErrorIs(t, err, apperrors.ErrStorage)
}
