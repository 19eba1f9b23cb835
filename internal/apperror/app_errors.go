package apperror

import "errors"

var (
	ErrInvalidIndex     = errors.New("index is out of range")
	ErrMoveRejected     = errors.New("move rejected")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrGameFinished     = errors.New("game is already finished")
	ErrInvalidBoardSize = errors.New("invalid board size")
	ErrSessionNotFound  = errors.New("session not found")
	ErrCorruptedSession = errors.New("session history is corrupted")
)
