package websocket

import (
	"bufio"
	"context"
	"crypto/sha1" //nolint: gosec // required by RFC 6455
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

const (
	websocketGUID   = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"
	shutdownTimeout = 5 * time.Second
)

type uGame interface {
	StartSession(ctx context.Context, size int) (entity.Session, error)
	GetSession(ctx context.Context, sessionID string) (entity.Session, error)
	EndSession(ctx context.Context, sessionID string) error

	ClickCell(ctx context.Context, sessionID string, cell int) (entity.Session, error)
	JumpTo(ctx context.Context, sessionID string, move int) (entity.Session, error)
	ToggleOrder(ctx context.Context, sessionID string) (entity.Session, error)
}

type handlerFunc func(ctx context.Context, message *Message, bufrw *bufio.ReadWriter) error

type Server struct {
	logger *slog.Logger
	uGame  uGame

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, uGame uGame) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		uGame:  uGame,

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionSessionNew] = server.handleNewSession
	server.handlers[actionSessionGet] = server.handleGetSession
	server.handlers[actionSessionEnd] = server.handleEndSession
	server.handlers[actionCellClick] = server.handleCellClick
	server.handlers[actionHistoryJump] = server.handleHistoryJump
	server.handlers[actionOrderToggle] = server.handleOrderToggle

	return server
}

// Handler returns the HTTP handler serving the /ws endpoint.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// generateAcceptKey derives Sec-WebSocket-Accept from the client key.
func generateAcceptKey(key string) string {
	hash := sha1.Sum([]byte(key + websocketGUID)) //nolint: gosec // required by RFC 6455
	return base64.StdEncoding.EncodeToString(hash[:])
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	if !strings.EqualFold(req.Header.Get("Upgrade"), "websocket") {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	key := req.Header.Get("Sec-WebSocket-Key")
	if key == "" {
		http.Error(writer, "missing Sec-WebSocket-Key", http.StatusBadRequest)
		return
	}

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking")
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	conn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	defer conn.Close()

	handshake := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + generateAcceptKey(key) + "\r\n\r\n"

	if _, err = bufrw.WriteString(handshake); err != nil {
		log.Error("failed to write handshake", "error", err)
		return
	}

	if err = bufrw.Flush(); err != nil {
		log.Error("failed to flush handshake", "error", err)
		return
	}

	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, bufrw); err != nil && !errors.Is(err, ErrConnectionClose) {
		log.Error("error handling messages", "error", err)
	}

	log.Info("WebSocket connection closed")
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleMessages")

	for {
		if ctx.Err() != nil {
			return nil
		}

		reqBody, err := that.readRequest(bufrw)
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			if err = that.sendErrorResponse(bufrw, "error", "malformed message"); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err = that.sendErrorResponse(bufrw, message.Action, "unknown action"); err != nil {
				return err
			}
			continue
		}

		if err = handler(ctx, &message, bufrw); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}
