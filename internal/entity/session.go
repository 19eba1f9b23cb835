package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
)

// NoCell marks the initial history entry, which no move produced.
const NoCell = -1

type HistoryEntry struct {
	Board       Board `json:"board"`
	ChangedCell int   `json:"changed_cell"`
}

// Session is the whole state of one game: the board history, the entry
// currently on display and the order in which the move list is shown.
// Every transition returns a new Session and leaves the receiver usable.
type Session struct {
	ID         string         `json:"id"`
	Entries    []HistoryEntry `json:"entries"`
	Pointer    int            `json:"pointer"`
	Descending bool           `json:"descending"`
}

func NewSession(id string, size int) (Session, error) {
	board, err := NewBoard(size)
	if err != nil {
		return Session{}, err
	}

	return Session{
		ID:      id,
		Entries: []HistoryEntry{{Board: board, ChangedCell: NoCell}},
		Pointer: 0,
	}, nil
}

func (that Session) Size() int {
	if len(that.Entries) == 0 {
		return 0
	}
	return that.Entries[0].Board.Size
}

func (that Session) Len() int {
	return len(that.Entries)
}

func (that Session) CurrentEntry() HistoryEntry {
	return that.Entries[that.Pointer]
}

func (that Session) CurrentBoard() Board {
	return that.CurrentEntry().Board
}

// NextMarker is derived from the pointer: X moves on even move counts and O on
// odd ones, so it stays right after jumping through history.
func (that Session) NextMarker() Marker {
	if that.Pointer%2 == 0 {
		return PlayerX
	}
	return PlayerO
}

func (that Session) Outcome() Outcome {
	return Evaluate(that.CurrentBoard())
}

// RecordMove drops every entry after the pointer, appends the new board and
// moves the pointer onto it.
func (that Session) RecordMove(board Board, changedCell int) Session {
	entries := make([]HistoryEntry, 0, that.Pointer+2)
	entries = append(entries, that.Entries[:that.Pointer+1]...)
	entries = append(entries, HistoryEntry{Board: board, ChangedCell: changedCell})

	that.Entries = entries
	that.Pointer = len(entries) - 1

	return that
}

// JumpTo points the session at an earlier or later entry without touching the history.
func (that Session) JumpTo(target int) (Session, error) {
	if target < 0 || target >= len(that.Entries) {
		return that, fmt.Errorf("%w: move %d of %d", apperror.ErrInvalidIndex, target, len(that.Entries))
	}

	that.Pointer = target

	return that, nil
}

func (that Session) ToggleOrder() Session {
	that.Descending = !that.Descending
	return that
}

// Validate checks the history invariants of a session built outside of
// RecordMove, e.g. one decoded from storage.
func (that Session) Validate() error {
	if len(that.Entries) == 0 {
		return fmt.Errorf("%w: no entries", apperror.ErrCorruptedSession)
	}

	if that.Pointer < 0 || that.Pointer >= len(that.Entries) {
		return fmt.Errorf("%w: pointer %d out of %d entries", apperror.ErrCorruptedSession, that.Pointer, len(that.Entries))
	}

	first := that.Entries[0]
	if first.Board.Size < 1 || first.Board.Size > MaxBoardSize || first.Board.Len() != first.Board.Size*first.Board.Size {
		return fmt.Errorf("%w: bad initial board", apperror.ErrCorruptedSession)
	}

	if first.ChangedCell != NoCell {
		return fmt.Errorf("%w: initial entry has changed cell %d", apperror.ErrCorruptedSession, first.ChangedCell)
	}

	for _, cell := range first.Board.Cells {
		if !cell.IsEmpty() {
			return fmt.Errorf("%w: initial board is not empty", apperror.ErrCorruptedSession)
		}
	}

	for k := 1; k < len(that.Entries); k++ {
		if err := validateStep(that.Entries[k-1], that.Entries[k], markerForMove(k)); err != nil {
			return fmt.Errorf("%w: entry %d: %w", apperror.ErrCorruptedSession, k, err)
		}
	}

	return nil
}

var (
	errSizeChanged   = errors.New("board size changed")
	errBadChangeCell = errors.New("changed cell does not match the diff")
	errWrongMarker   = errors.New("marker does not match move parity")
)

func validateStep(prev, next HistoryEntry, marker Marker) error {
	if prev.Board.Size != next.Board.Size || prev.Board.Len() != next.Board.Len() {
		return errSizeChanged
	}

	if !next.Board.InRange(next.ChangedCell) || !prev.Board.At(next.ChangedCell).IsEmpty() {
		return errBadChangeCell
	}

	if next.Board.At(next.ChangedCell) != marker {
		return fmt.Errorf("%w: want %s at cell %d", errWrongMarker, marker, next.ChangedCell)
	}

	if !prev.Board.with(next.ChangedCell, marker).Equal(next.Board) {
		return errBadChangeCell
	}

	return nil
}

// markerForMove is the marker placed by move k: X on odd moves, O on even.
func markerForMove(k int) Marker {
	if k%2 == 1 {
		return PlayerX
	}

	return PlayerO
}

// DescribeMove builds the move list caption for entry number move.
func DescribeMove(entry HistoryEntry, move int, current bool) string {
	if move == 0 || entry.ChangedCell == NoCell {
		return "Go to game start"
	}

	row, col := entry.Board.RowCol(entry.ChangedCell)
	position := fmt.Sprintf(" (%d, %d)", row+1, col+1)

	if current {
		return "Current move" + position
	}

	return fmt.Sprintf("Go to move #%d%s", move, position)
}
