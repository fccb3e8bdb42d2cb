package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 10*time.Second, cfg.Filters.Timeout)
	assert.Equal(t, 60, cfg.RateLimit.ApplyFilterLimit)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("FILTER_TIMEOUT", "250ms")
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 250*time.Millisecond, cfg.Filters.Timeout)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT secret")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("STORAGE_DRIVER", "rethinkdb")
		_, err := Load()
		assert.ErrorContains(t, err, "unknown storage driver")
	})

	t.Run("non-positive timeout", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("FILTER_TIMEOUT", "0s")
		_, err := Load()
		assert.ErrorContains(t, err, "filter timeout")
	})

	t.Run("non-positive rate limit", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("RATE_LIMIT_APPLY_FILTER", "0")
		_, err := Load()
		assert.ErrorContains(t, err, "rate limit")
	})
}
