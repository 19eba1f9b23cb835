package entity

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
)

type Marker string

const (
	PlayerX   Marker = "X"
	PlayerO   Marker = "O"
	EmptyCell Marker = ""
)

const (
	DefaultBoardSize = 3
	// MaxBoardSize bounds N so that N² cells and the 2N+2 win lines stay small.
	MaxBoardSize = 32
)

// Opponent returns the other player's marker. EmptyCell has no opponent.
func (that Marker) Opponent() Marker {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

func (that Marker) IsEmpty() bool {
	return that == EmptyCell
}

// Board is a Size×Size grid stored row-major. A Board is a value: once built
// its Cells are never written again, every move produces a new Board.
type Board struct {
	Size  int      `json:"size"`
	Cells []Marker `json:"cells"`
}

func NewBoard(size int) (Board, error) {
	if size < 1 || size > MaxBoardSize {
		return Board{}, fmt.Errorf("%w: %d not in [1, %d]", apperror.ErrInvalidBoardSize, size, MaxBoardSize)
	}

	return Board{
		Size:  size,
		Cells: make([]Marker, size*size),
	}, nil
}

func (that Board) Len() int {
	return len(that.Cells)
}

func (that Board) At(cell int) Marker {
	return that.Cells[cell]
}

func (that Board) InRange(cell int) bool {
	return cell >= 0 && cell < len(that.Cells)
}

// RowCol converts a cell index into 0-based row and column.
func (that Board) RowCol(cell int) (int, int) {
	return cell / that.Size, cell % that.Size
}

// Index converts 0-based row and column into a cell index.
func (that Board) Index(row, col int) (int, error) {
	if row < 0 || row >= that.Size || col < 0 || col >= that.Size {
		return 0, fmt.Errorf("%w: row %d, column %d", apperror.ErrInvalidIndex, row, col)
	}

	return row*that.Size + col, nil
}

func (that Board) IsFull() bool {
	for _, cell := range that.Cells {
		if cell.IsEmpty() {
			return false
		}
	}

	return true
}

// MarkersCopy returns the cells in a slice the caller may modify.
func (that Board) MarkersCopy() []Marker {
	return slices.Clone(that.Cells)
}

func (that Board) Equal(other Board) bool {
	return that.Size == other.Size && slices.Equal(that.Cells, other.Cells)
}

func (that Board) with(cell int, marker Marker) Board {
	cells := slices.Clone(that.Cells)
	cells[cell] = marker

	return Board{Size: that.Size, Cells: cells}
}

// AttemptMove places marker at cell and returns the resulting board.
// The receiver board is left untouched whether or not the move is accepted.
func AttemptMove(board Board, cell int, marker Marker) (Board, error) {
	if !board.InRange(cell) {
		return board, fmt.Errorf("%w: cell %d", apperror.ErrInvalidIndex, cell)
	}

	if Evaluate(board).IsDecided() {
		return board, fmt.Errorf("%w: %w", apperror.ErrMoveRejected, apperror.ErrGameFinished)
	}

	if !board.At(cell).IsEmpty() {
		return board, fmt.Errorf("%w: %w: cell %d", apperror.ErrMoveRejected, apperror.ErrCellOccupied, cell)
	}

	return board.with(cell, marker), nil
}
