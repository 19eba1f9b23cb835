package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

type GameUseCase interface {
	StartSession(ctx context.Context, size int) (entity.Session, error)
	GetSession(ctx context.Context, sessionID string) (entity.Session, error)
	EndSession(ctx context.Context, sessionID string) error

	ClickCell(ctx context.Context, sessionID string, cell int) (entity.Session, error)
	JumpTo(ctx context.Context, sessionID string, move int) (entity.Session, error)
	ToggleOrder(ctx context.Context, sessionID string) (entity.Session, error)
}

type sessionRepoDep interface {
	CreateOrUpdate(ctx context.Context, session entity.Session) error
	GetByID(ctx context.Context, id string) (entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type gameUseCase struct {
	logger      *slog.Logger
	sessionRepo sessionRepoDep
	defaultSize int

	locks *keyedMutex
}

func NewGameUseCase(logger *slog.Logger, sessionRepo sessionRepoDep, defaultSize int) GameUseCase {
	return &gameUseCase{
		logger:      logger.With("component", "usecase"),
		sessionRepo: sessionRepo,
		defaultSize: defaultSize,
		locks:       newKeyedMutex(),
	}
}

// StartSession creates and stores a new session. A size of zero means the configured default.
func (that *gameUseCase) StartSession(ctx context.Context, size int) (entity.Session, error) {
	if size == 0 {
		size = that.defaultSize
	}

	session, err := entity.NewSession(uuid.NewString(), size)
	if err != nil {
		return entity.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return entity.Session{}, fmt.Errorf("failed to store session: %w", err)
	}

	that.logger.Info("session started", "session_id", session.ID, "size", size)

	return session, nil
}

func (that *gameUseCase) GetSession(ctx context.Context, sessionID string) (entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return entity.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

func (that *gameUseCase) EndSession(ctx context.Context, sessionID string) error {
	unlock := that.locks.Lock(sessionID)
	defer unlock()

	if err := that.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	that.logger.Info("session ended", "session_id", sessionID)

	return nil
}

func (that *gameUseCase) ClickCell(ctx context.Context, sessionID string, cell int) (entity.Session, error) {
	return that.apply(ctx, sessionID, "ClickCell", func(session entity.Session) (entity.Session, error) {
		return tictactoe.CellClicked(session, cell)
	})
}

func (that *gameUseCase) JumpTo(ctx context.Context, sessionID string, move int) (entity.Session, error) {
	return that.apply(ctx, sessionID, "JumpTo", func(session entity.Session) (entity.Session, error) {
		return tictactoe.HistoryJumpRequested(session, move)
	})
}

func (that *gameUseCase) ToggleOrder(ctx context.Context, sessionID string) (entity.Session, error) {
	return that.apply(ctx, sessionID, "ToggleOrder", func(session entity.Session) (entity.Session, error) {
		return tictactoe.OrderToggleRequested(session), nil
	})
}

// apply runs one renderer event against the stored session. A rejected event
// returns the stored session together with the error and writes nothing.
func (that *gameUseCase) apply(
	ctx context.Context,
	sessionID, method string,
	event func(entity.Session) (entity.Session, error),
) (entity.Session, error) {
	log := that.logger.With("method", method, "session_id", sessionID)

	unlock := that.locks.Lock(sessionID)
	defer unlock()

	session, err := that.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return entity.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	next, err := event(session)
	if err != nil {
		if isRejection(err) {
			log.Debug("event rejected", "error", err)
			return session, err
		}

		return entity.Session{}, err
	}

	if err = that.sessionRepo.CreateOrUpdate(ctx, next); err != nil {
		return entity.Session{}, fmt.Errorf("failed to update session: %w", err)
	}

	log.Debug("event applied", "pointer", next.Pointer, "entries", next.Len())

	return next, nil
}

// isRejection reports whether err is one of the recoverable no-op conditions.
func isRejection(err error) bool {
	return errors.Is(err, apperror.ErrInvalidIndex) || errors.Is(err, apperror.ErrMoveRejected)
}

// keyedMutex serializes events per session id.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (that *keyedMutex) Lock(key string) func() {
	that.mu.Lock()
	lock, ok := that.locks[key]
	if !ok {
		lock = &refMutex{}
		that.locks[key] = lock
	}
	lock.refs++
	that.mu.Unlock()

	lock.Lock()

	return func() {
		lock.Unlock()

		that.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(that.locks, key)
		}
		that.mu.Unlock()
	}
}
