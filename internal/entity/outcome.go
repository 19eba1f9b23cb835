package entity

const (
	StatusInProgress = "in_progress"
	StatusDraw       = "draw"
	StatusWon        = "won"
)

// Outcome is the evaluated result of a board. Winner and Line are only set
// when Status is StatusWon.
type Outcome struct {
	Status string `json:"status"`
	Winner Marker `json:"winner,omitempty"`
	Line   []int  `json:"line,omitempty"`
}

func (that Outcome) IsDecided() bool {
	return that.Status == StatusWon || that.Status == StatusDraw
}

func (that Outcome) IsWon() bool {
	return that.Status == StatusWon
}

func (that Outcome) IsDraw() bool {
	return that.Status == StatusDraw
}

// WinLines enumerates the winning lines of a size×size board: every row, then
// every column, then the main diagonal and the anti-diagonal.
func WinLines(size int) [][]int {
	if size < 1 {
		return nil
	}

	lines := make([][]int, 0, 2*size+2)

	for row := range size {
		line := make([]int, size)
		for col := range size {
			line[col] = row*size + col
		}
		lines = append(lines, line)
	}

	for col := range size {
		line := make([]int, size)
		for row := range size {
			line[row] = row*size + col
		}
		lines = append(lines, line)
	}

	diagonal := make([]int, size)
	antiDiagonal := make([]int, size)
	for i := range size {
		diagonal[i] = i*size + i
		antiDiagonal[i] = i*size + size - 1 - i
	}

	return append(lines, diagonal, antiDiagonal)
}

// Evaluate reports the outcome of board. The first complete line in WinLines
// order decides the winner.
func Evaluate(board Board) Outcome {
	for _, line := range WinLines(board.Size) {
		if winner, ok := lineOwner(board, line); ok {
			return Outcome{
				Status: StatusWon,
				Winner: winner,
				Line:   line,
			}
		}
	}

	// the game goes on until all the squares are full
	if board.Len() > 0 && board.IsFull() {
		return Outcome{Status: StatusDraw}
	}

	return Outcome{Status: StatusInProgress}
}

func lineOwner(board Board, line []int) (Marker, bool) {
	first := board.At(line[0])
	if first.IsEmpty() {
		return EmptyCell, false
	}

	for _, cell := range line[1:] {
		if board.At(cell) != first {
			return EmptyCell, false
		}
	}

	return first, true
}
