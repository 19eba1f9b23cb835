package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARNING "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew(t *testing.T) {
	t.Run("JSON format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "info", FormatJSON)

		logger.Info("session started", "session_id", "123")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "session started", record["msg"])
		assert.Equal(t, "123", record["session_id"])
	})

	t.Run("Text format respects the level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "warn", FormatText)

		logger.Info("hidden")
		logger.Warn("shown", "cell", 4)

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
		assert.Contains(t, buf.String(), "cell=4")
	})
}
