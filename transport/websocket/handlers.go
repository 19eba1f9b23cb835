package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

const (
	actionSessionNew  = "session:new"
	actionSessionGet  = "session:get"
	actionSessionEnd  = "session:end"
	actionCellClick   = "cell:click"
	actionHistoryJump = "history:jump"
	actionOrderToggle = "order:toggle"
)

func (that *Server) handleNewSession(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleNewSession")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, "invalid payload")
	}

	session, err := that.uGame.StartSession(ctx, payloadReq.Size)
	if err != nil {
		log.Error("failed to start session", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, clientError(err, "failed to start a new session"))
	}

	log.Info("session started", "session_id", session.ID)

	return that.sendView(bufrw, msg.Action, session, nil)
}

func (that *Server) handleGetSession(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, ok, err := that.requireSession(msg, bufrw)
	if !ok {
		return err
	}

	session, err := that.uGame.GetSession(ctx, payloadReq.SessionID)
	if err != nil {
		that.logger.Error("failed to get session", "method", "handleGetSession", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, clientError(err, "failed to get the session"))
	}

	return that.sendView(bufrw, msg.Action, session, nil)
}

func (that *Server) handleEndSession(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, ok, err := that.requireSession(msg, bufrw)
	if !ok {
		return err
	}

	if err = that.uGame.EndSession(ctx, payloadReq.SessionID); err != nil {
		that.logger.Error("failed to end session", "method", "handleEndSession", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, clientError(err, "failed to end the session"))
	}

	return that.sendMessage(bufrw, msg.Action, Payload{SessionID: payloadReq.SessionID})
}

func (that *Server) handleCellClick(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, ok, err := that.requireSession(msg, bufrw)
	if !ok {
		return err
	}

	if payloadReq.Cell == nil {
		return that.sendErrorResponse(bufrw, msg.Action, "cell is required")
	}

	session, err := that.uGame.ClickCell(ctx, payloadReq.SessionID, *payloadReq.Cell)

	return that.respondToEvent(bufrw, msg.Action, session, err)
}

func (that *Server) handleHistoryJump(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, ok, err := that.requireSession(msg, bufrw)
	if !ok {
		return err
	}

	if payloadReq.Move == nil {
		return that.sendErrorResponse(bufrw, msg.Action, "move is required")
	}

	session, err := that.uGame.JumpTo(ctx, payloadReq.SessionID, *payloadReq.Move)

	return that.respondToEvent(bufrw, msg.Action, session, err)
}

func (that *Server) handleOrderToggle(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, ok, err := that.requireSession(msg, bufrw)
	if !ok {
		return err
	}

	session, err := that.uGame.ToggleOrder(ctx, payloadReq.SessionID)

	return that.respondToEvent(bufrw, msg.Action, session, err)
}

// respondToEvent answers a renderer event. Rejected events still carry the
// unchanged view so the client can redraw.
func (that *Server) respondToEvent(bufrw *bufio.ReadWriter, action string, session entity.Session, err error) error {
	if err == nil {
		return that.sendView(bufrw, action, session, nil)
	}

	if isRejection(err) && session.ID != "" {
		return that.sendView(bufrw, action, session, err)
	}

	that.logger.Error("failed to apply event", "action", action, "error", err)

	return that.sendErrorResponse(bufrw, action, clientError(err, "failed to apply the event"))
}

func (that *Server) sendView(bufrw *bufio.ReadWriter, action string, session entity.Session, rejection error) error {
	view := tictactoe.BuildView(session)

	payload := Payload{
		SessionID: session.ID,
		View:      &view,
	}

	if rejection != nil {
		payload.Error = rejection.Error()
	}

	if err := that.sendMessage(bufrw, action, payload); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

// requireSession decodes the payload and checks it names a session. When it
// returns false the client has already been answered.
func (that *Server) requireSession(msg *Message, bufrw *bufio.ReadWriter) (Payload, bool, error) {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return Payload{}, false, that.sendErrorResponse(bufrw, msg.Action, "invalid payload")
	}

	if payloadReq.SessionID == "" {
		return Payload{}, false, that.sendErrorResponse(bufrw, msg.Action, "session_id is required")
	}

	return payloadReq, true, nil
}

func decodePayload(msg *Message) (Payload, error) {
	var payload Payload

	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return Payload{}, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

func isRejection(err error) bool {
	return errors.Is(err, apperror.ErrInvalidIndex) || errors.Is(err, apperror.ErrMoveRejected)
}

// clientError hides storage failures from the client but passes domain errors through.
func clientError(err error, fallback string) string {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return apperror.ErrSessionNotFound.Error()
	case errors.Is(err, apperror.ErrInvalidBoardSize):
		return apperror.ErrInvalidBoardSize.Error()
	default:
		return fallback
	}
}
