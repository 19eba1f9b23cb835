package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

type sessionUseCase interface {
	StartSession(ctx context.Context, size int) (entity.Session, error)
	GetSession(ctx context.Context, sessionID string) (entity.Session, error)
}

type handlers struct {
	logger   *slog.Logger
	sessions sessionUseCase
}

type createSessionRequest struct {
	Size int `json:"size"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "createSession")

	// an empty body asks for the default size
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	session, err := that.sessions.StartSession(r.Context(), req.Size)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidBoardSize) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: apperror.ErrInvalidBoardSize.Error()})
			return
		}

		log.Error("failed to start session", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to start a new session"})
		return
	}

	writeJSON(w, http.StatusCreated, tictactoe.BuildView(session))
}

func (that *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "getSession")

	session, err := that.sessions.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, apperror.ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: apperror.ErrSessionNotFound.Error()})
			return
		}

		log.Error("failed to get session", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to get the session"})
		return
	}

	writeJSON(w, http.StatusOK, tictactoe.BuildView(session))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
