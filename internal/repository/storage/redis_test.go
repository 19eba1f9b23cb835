package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/testing/suite"
)

func TestNew(t *testing.T) {
	t.Run("Connects to a running Redis", func(t *testing.T) {
		ctx, st := suite.New(t)

		redisStorage, err := New(ctx, st.RedisAddr)

		require.NoError(t, err)
		assert.NoError(t, redisStorage.Close())
	})

	t.Run("Fails when nothing listens", func(t *testing.T) {
		_, err := New(context.Background(), "127.0.0.1:1")

		assert.Error(t, err)
	})
}
