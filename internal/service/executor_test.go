package service

import (
	"context"
	"testing"

	"filterchat/internal/domain"
	apperrors "filterchat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineExecutor_RunChain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	upper := env.putFilter("/upper", domain.ValueTypeText, domain.ValueTypeText)
	exclaim := env.putFilter("/exclaim", domain.ValueTypeText, domain.ValueTypeText)
	initial := env.putValue(t, domain.NewTextValue("hi"))

	result, err := env.services.Executor.RunChain(ctx, initial, []*domain.Filter{upper, exclaim})
	require.NoError(t, err)

	assert.Equal(t, []string{upper.ID, exclaim.ID}, result.AppliedFilterIDs)
	require.Len(t, result.Produced, 2)
	assert.Equal(t, "HI", result.Produced[0].Text())
	assert.Equal(t, "HI!", result.Final.Text())
	assert.Equal(t, result.Produced[1], result.Final)

	stored, err := env.services.Values.Get(ctx, result.Final.ID)
	require.NoError(t, err)
	assert.Equal(t, "HI!", stored.Text())
}

func TestPipelineExecutor_EmptyChainReturnsInitial(t *testing.T) {
	env := newTestEnv(t)
	initial := env.putValue(t, domain.NewTextValue("hi"))

	result, err := env.services.Executor.RunChain(context.Background(), initial, nil)
	require.NoError(t, err)
	assert.Equal(t, initial, result.Final)
	assert.Empty(t, result.Produced)
	assert.Empty(t, result.AppliedFilterIDs)
}

func TestPipelineExecutor_PartialFailureKeepsProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f1 := env.putFilter("/upper", domain.ValueTypeText, domain.ValueTypeText)
	f2 := env.putFilter("/fail", domain.ValueTypeText, domain.ValueTypeText)
	initial := env.putValue(t, domain.NewTextValue("hi"))
	before := env.store.ValueCount()

	result, err := env.services.Executor.RunChain(ctx, initial, []*domain.Filter{f1, f2})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 1, stepErr.Step)
	assert.Equal(t, f2.ID, stepErr.FilterID)

	require.NotNil(t, result)
	require.Len(t, result.Produced, 1)
	assert.Equal(t, []string{f1.ID}, result.AppliedFilterIDs)
	assert.Equal(t, result.Produced[0], result.Final)
	assert.Equal(t, before+1, env.store.ValueCount())

	stored, err := env.services.Values.Get(ctx, result.Produced[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "HI", stored.Text())
}

func TestPipelineExecutor_StoreFailureStopsChain(t *testing.T) {
	env := newTestEnv(t)
	f1 := env.putFilter("/upper", domain.ValueTypeText, domain.ValueTypeText)
	f2 := env.putFilter("/exclaim", domain.ValueTypeText, domain.ValueTypeText)
	initial := env.putValue(t, domain.NewTextValue("hi"))

	env.store.InsertHook = func(domain.ValueType) ([]string, error) {
		return []string{"a", "b"}, nil
	}

	result, err := env.services.Executor.RunChain(context.Background(), initial, []*domain.Filter{f1, f2})
	assert.ErrorIs(t, err, apperrors.ErrIntegrity)
	assert.Empty(t, result.Produced)
	assert.Equal(t, initial, result.Final)
	assert.EqualValues(t, 1, env.server.calls.Load())
}

func TestPipelineExecutor_RejectsMismatchBeforeInvoking(t *testing.T) {
	env := newTestEnv(t)
	render := env.putFilter("/render", domain.ValueTypeText, domain.ValueTypeImage)
	upper := env.putFilter("/upper", domain.ValueTypeText, domain.ValueTypeText)
	initial := env.putValue(t, domain.NewTextValue("hi"))

	result, err := env.services.Executor.RunChain(context.Background(), initial, []*domain.Filter{render, upper})
	assert.ErrorIs(t, err, apperrors.ErrTypeMismatch)
	assert.Len(t, result.Produced, 1)
	assert.EqualValues(t, 1, env.server.calls.Load())
}

func TestPipelineExecutor_RunSingle(t *testing.T) {
	env := newTestEnv(t)
	render := env.putFilter("/render", domain.ValueTypeText, domain.ValueTypeImage)
	initial := env.putValue(t, domain.NewTextValue("dog"))

	out, err := env.services.Executor.RunSingle(context.Background(), initial, render)
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, domain.ValueTypeImage, out.Type)
	assert.Equal(t, []byte("IMG:dog"), out.Content)
}
