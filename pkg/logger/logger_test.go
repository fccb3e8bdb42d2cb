package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", "json", &buf)

	log.Info("Filter applied", "filter_id", "f1", "step", 2, "error", errors.New("boom"))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "Filter applied", line["message"])
	assert.Equal(t, "f1", line["filter_id"])
	assert.Equal(t, float64(2), line["step"])
	assert.Equal(t, "boom", line["error"])
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", "json", &buf)

	log.Debug("hidden")
	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_WithAndOddPairs(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", "json", &buf).With("component", "executor")

	log.Info("odd", "dangling")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "executor", line["component"])
	assert.Equal(t, "(MISSING)", line["dangling"])
}
