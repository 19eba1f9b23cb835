package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

type stubSessions struct {
	session entity.Session
	err     error
}

func (that *stubSessions) StartSession(_ context.Context, size int) (entity.Session, error) {
	if that.err != nil {
		return entity.Session{}, that.err
	}
	if size == 0 {
		size = entity.DefaultBoardSize
	}
	return entity.NewSession("s1", size)
}

func (that *stubSessions) GetSession(_ context.Context, id string) (entity.Session, error) {
	if that.err != nil {
		return entity.Session{}, that.err
	}
	if id != that.session.ID {
		return entity.Session{}, apperror.ErrSessionNotFound
	}
	return that.session, nil
}

func newTestHandler(stub *stubSessions) http.Handler {
	return NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), stub)
}

func TestPing(t *testing.T) {
	rec := httptest.NewRecorder()

	newTestHandler(&stubSessions{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestCreateSession(t *testing.T) {
	t.Run("Creates a session of the requested size", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"size":4}`))

		newTestHandler(&stubSessions{}).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var view tictactoe.View
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, 4, view.Size)
		assert.Len(t, view.Board, 16)
		assert.Equal(t, "Next player: X", view.Status)
	})

	t.Run("Invalid size", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"size":-1}`))

		newTestHandler(&stubSessions{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Rejects an oversized board", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"size":4294967296}`))

		newTestHandler(&stubSessions{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), apperror.ErrInvalidBoardSize.Error())
	})

	t.Run("Empty body uses the default size", func(t *testing.T) {
		for name, body := range map[string]io.Reader{
			"no body":      nil,
			"chunked body": io.MultiReader(),
		} {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/sessions", body)

			newTestHandler(&stubSessions{}).ServeHTTP(rec, req)

			require.Equal(t, http.StatusCreated, rec.Code, name)

			var view tictactoe.View
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
			assert.Equal(t, entity.DefaultBoardSize, view.Size, name)
		}
	})

	t.Run("Malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{`))

		newTestHandler(&stubSessions{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetSession(t *testing.T) {
	session, err := entity.NewSession("s1", 3)
	require.NoError(t, err)
	session, err = tictactoe.CellClicked(session, 4)
	require.NoError(t, err)

	t.Run("Returns the view", func(t *testing.T) {
		rec := httptest.NewRecorder()

		newTestHandler(&stubSessions{session: session}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/s1", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var view tictactoe.View
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, entity.PlayerX, view.Board[4])
		assert.Equal(t, "Next player: O", view.Status)
	})

	t.Run("Unknown session", func(t *testing.T) {
		rec := httptest.NewRecorder()

		newTestHandler(&stubSessions{session: session}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/nope", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
