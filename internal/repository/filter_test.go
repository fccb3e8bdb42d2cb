package repository

import (
	"testing"

	"filterchat/internal/domain"
	apperrors "filterchat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderByIDs_PreservesRequestOrder(t *testing.T) {
	found := []*domain.Filter{{ID: "b"}, {ID: "a"}, {ID: "c"}}

	ordered, err := orderByIDs([]string{"c", "a", "b", "a"}, found)
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "a", "b", "a"}, domain.FilterIDsOf(ordered))
}

func TestOrderByIDs_MissingIsNotFound(t *testing.T) {
	_, err := orderByIDs([]string{"a", "x"}, []*domain.Filter{{ID: "a"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "x")
}
