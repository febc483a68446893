package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"productapi/internal/logger"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "warn")

	log.Info().Msg("hidden")
	log.Warn().Str("component", "test").Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "test", entry["component"])
	assert.Contains(t, entry, "time")
}

func TestNewWithWriter_UnknownLevelFallsBackToInfo(t *testing.T) {
	log := logger.NewWithWriter(&bytes.Buffer{}, "chatty")
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())

	log = logger.NewWithWriter(&bytes.Buffer{}, "")
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestGORM_WritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	gl := logger.GORM(logger.NewWithWriter(&buf, "debug"), 0)
	require.NotNil(t, gl)

	gl.Warn(context.Background(), "slow %s", "statement")
	assert.Contains(t, buf.String(), "slow statement")
	assert.Contains(t, buf.String(), `"component":"gorm"`)
}
