package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads values from the file", func(t *testing.T) {
		// Given: a config file with every key set
		path := writeConfig(t, `
log-level: debug
log-format: text
http-port: "9191"
socket-port: "8181"
board-size: 4
session-ttl: 30m
redis:
  host: redis
  port: "6380"
`)

		// When: loading it
		conf, err := Load(path)

		// Then: every field reflects the file
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "text", conf.LogFormat)
		assert.Equal(t, "9191", conf.HTTPPort)
		assert.Equal(t, "8181", conf.SocketPort)
		assert.Equal(t, 4, conf.BoardSize)
		assert.Equal(t, 30*time.Minute, conf.SessionTTL)
		assert.Equal(t, "redis:6380", conf.Redis.GetRedisAddr())
	})

	t.Run("Falls back to defaults", func(t *testing.T) {
		path := writeConfig(t, "log-level: info\n")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, 3, conf.BoardSize)
		assert.Equal(t, "json", conf.LogFormat)
		assert.Equal(t, 24*time.Hour, conf.SessionTTL)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, "board-size: 3\n")
		t.Setenv("BOARD_SIZE", "5")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, 5, conf.BoardSize)
	})

	t.Run("Rejects a non-positive board size", func(t *testing.T) {
		path := writeConfig(t, "board-size: -1\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("Rejects a board size above the maximum", func(t *testing.T) {
		path := writeConfig(t, "board-size: 4294967296\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

		assert.Error(t, err)
	})
}

func TestLoadEnv(t *testing.T) {
	t.Run("Defaults without a file", func(t *testing.T) {
		conf, err := LoadEnv()

		require.NoError(t, err)
		assert.Equal(t, 3, conf.BoardSize)
	})

	t.Run("Rejects an oversized board from the environment", func(t *testing.T) {
		t.Setenv("BOARD_SIZE", "50000")

		_, err := LoadEnv()

		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}
