package tictactoe

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

const (
	toAscendingLabel  = "To Ascending"
	toDescendingLabel = "To Descending"
)

// MoveItem is one line of the move list shown next to the board.
type MoveItem struct {
	Move      int    `json:"move"`
	Label     string `json:"label"`
	IsCurrent bool   `json:"is_current"`
}

// View is everything a renderer needs to draw a session.
type View struct {
	SessionID   string          `json:"session_id"`
	Size        int             `json:"size"`
	Board       []entity.Marker `json:"board"`
	Status      string          `json:"status"`
	Outcome     entity.Outcome  `json:"outcome"`
	NextPlayer  entity.Marker   `json:"next_player,omitempty"`
	Highlighted []int           `json:"highlighted"`
	Moves       []MoveItem      `json:"moves"`
	Descending  bool            `json:"descending"`
	OrderToggle string          `json:"order_toggle"`
}

// CellClicked plays the derived marker at cell. On error the session is returned unchanged.
func CellClicked(session entity.Session, cell int) (entity.Session, error) {
	board, err := entity.AttemptMove(session.CurrentBoard(), cell, session.NextMarker())
	if err != nil {
		return session, fmt.Errorf("invalid turn: %w", err)
	}

	return session.RecordMove(board, cell), nil
}

// HistoryJumpRequested moves the session pointer to move.
func HistoryJumpRequested(session entity.Session, move int) (entity.Session, error) {
	next, err := session.JumpTo(move)
	if err != nil {
		return session, fmt.Errorf("invalid jump: %w", err)
	}

	return next, nil
}

func OrderToggleRequested(session entity.Session) entity.Session {
	return session.ToggleOrder()
}

// DisplayBoard returns the board at the pointer as a slice the caller owns.
func DisplayBoard(session entity.Session) []entity.Marker {
	return session.CurrentBoard().MarkersCopy()
}

func StatusText(session entity.Session) string {
	return statusText(session.Outcome(), session.NextMarker())
}

func statusText(outcome entity.Outcome, next entity.Marker) string {
	switch {
	case outcome.IsWon():
		return "Winner: " + string(outcome.Winner)
	case outcome.IsDraw():
		return "Draw"
	default:
		return "Next player: " + string(next)
	}
}

func HighlightedCells(session entity.Session) []int {
	outcome := session.Outcome()
	if !outcome.IsWon() {
		return []int{}
	}

	return slices.Clone(outcome.Line)
}

func MoveList(session entity.Session) []MoveItem {
	moves := make([]MoveItem, 0, session.Len())
	for move, entry := range session.Entries {
		current := move == session.Pointer
		moves = append(moves, MoveItem{
			Move:      move,
			Label:     entity.DescribeMove(entry, move, current),
			IsCurrent: current,
		})
	}

	if session.Descending {
		slices.Reverse(moves)
	}

	return moves
}

// OrderToggleLabel is the caption of the control that flips the move list order.
func OrderToggleLabel(session entity.Session) string {
	if session.Descending {
		return toAscendingLabel
	}
	return toDescendingLabel
}

func BuildView(session entity.Session) View {
	outcome := session.Outcome()

	view := View{
		SessionID:   session.ID,
		Size:        session.Size(),
		Board:       DisplayBoard(session),
		Status:      statusText(outcome, session.NextMarker()),
		Outcome:     outcome,
		Highlighted: HighlightedCells(session),
		Moves:       MoveList(session),
		Descending:  session.Descending,
		OrderToggle: OrderToggleLabel(session),
	}

	if !outcome.IsDecided() {
		view.NextPlayer = session.NextMarker()
	}

	return view
}
