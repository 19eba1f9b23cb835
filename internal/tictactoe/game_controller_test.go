package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

func newSession(t *testing.T) entity.Session {
	t.Helper()

	session, err := entity.NewSession("123", entity.DefaultBoardSize)
	require.NoError(t, err)

	return session
}

func clickAll(t *testing.T, session entity.Session, cells ...int) entity.Session {
	t.Helper()

	for _, cell := range cells {
		var err error
		session, err = CellClicked(session, cell)
		require.NoError(t, err)
	}

	return session
}

func TestCellClicked(t *testing.T) {
	t.Run("Markers alternate starting with X", func(t *testing.T) {
		// Given: a new session
		session := newSession(t)

		// When: cells 0, 4 and 8 are clicked
		session = clickAll(t, session, 0, 4, 8)

		// Then: X, O, X are placed and the game goes on
		expected := []entity.Marker{
			entity.PlayerX, entity.EmptyCell, entity.EmptyCell,
			entity.EmptyCell, entity.PlayerO, entity.EmptyCell,
			entity.EmptyCell, entity.EmptyCell, entity.PlayerX,
		}
		assert.Equal(t, expected, DisplayBoard(session))
		assert.Equal(t, "Next player: O", StatusText(session))
		assert.Empty(t, HighlightedCells(session))
	})

	t.Run("X wins on the top row", func(t *testing.T) {
		// Given: X plays 0, 1, 2 while O plays 3 and 4
		session := clickAll(t, newSession(t), 0, 3, 1, 4, 2)

		// Then: X is the winner and the row is highlighted
		assert.Equal(t, "Winner: X", StatusText(session))
		assert.Equal(t, []int{0, 1, 2}, HighlightedCells(session))
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		session := clickAll(t, newSession(t), 0, 1, 2, 4, 3, 5, 7, 6, 8)

		assert.Equal(t, "Draw", StatusText(session))
		assert.Empty(t, HighlightedCells(session))
	})

	t.Run("Rejects any move after a win and keeps the session", func(t *testing.T) {
		// Given: X has won
		session := clickAll(t, newSession(t), 0, 3, 1, 4, 2)

		// When: O clicks every empty cell
		for _, cell := range []int{5, 6, 7, 8} {
			next, err := CellClicked(session, cell)

			// Then: the move is rejected and the session is unchanged
			require.ErrorIs(t, err, apperror.ErrMoveRejected)
			require.ErrorIs(t, err, apperror.ErrGameFinished)
			assert.Equal(t, session, next)
		}
	})

	t.Run("Rejects an occupied cell", func(t *testing.T) {
		session := clickAll(t, newSession(t), 0)

		next, err := CellClicked(session, 0)

		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, session, next)
	})

	t.Run("Rejects an index outside the board", func(t *testing.T) {
		session := newSession(t)

		next, err := CellClicked(session, 9)

		require.ErrorIs(t, err, apperror.ErrInvalidIndex)
		assert.Equal(t, session, next)
	})
}

func TestHistoryJumpRequested(t *testing.T) {
	t.Run("Jump then move discards the future", func(t *testing.T) {
		// Given: a session with five entries
		session := clickAll(t, newSession(t), 0, 1, 2, 3)

		// When: jumping to move 2 and clicking cell 7
		session, err := HistoryJumpRequested(session, 2)
		require.NoError(t, err)
		assert.Equal(t, "Next player: X", StatusText(session))
		session = clickAll(t, session, 7)

		// Then: the history holds four entries ending with the new move
		require.Equal(t, 4, session.Len())
		assert.Equal(t, 7, session.CurrentEntry().ChangedCell)
	})

	t.Run("Jump back from a win reopens the board", func(t *testing.T) {
		session := clickAll(t, newSession(t), 0, 3, 1, 4, 2)

		session, err := HistoryJumpRequested(session, 4)
		require.NoError(t, err)

		assert.Equal(t, "Next player: X", StatusText(session))
		session = clickAll(t, session, 8)
		assert.Equal(t, "Next player: O", StatusText(session))
	})

	t.Run("Out of range keeps the session", func(t *testing.T) {
		session := clickAll(t, newSession(t), 0)

		next, err := HistoryJumpRequested(session, 5)

		require.ErrorIs(t, err, apperror.ErrInvalidIndex)
		assert.Equal(t, session, next)
	})
}

func TestMoveList(t *testing.T) {
	session := clickAll(t, newSession(t), 4, 0)
	session, err := HistoryJumpRequested(session, 1)
	require.NoError(t, err)

	t.Run("Ascending order", func(t *testing.T) {
		expected := []MoveItem{
			{Move: 0, Label: "Go to game start"},
			{Move: 1, Label: "Current move (2, 2)", IsCurrent: true},
			{Move: 2, Label: "Go to move #2 (1, 1)"},
		}

		assert.Equal(t, expected, MoveList(session))
		assert.Equal(t, "To Descending", OrderToggleLabel(session))
	})

	t.Run("Descending order", func(t *testing.T) {
		reversed := OrderToggleRequested(session)

		moves := MoveList(reversed)

		require.Len(t, moves, 3)
		assert.Equal(t, 2, moves[0].Move)
		assert.Equal(t, 0, moves[2].Move)
		assert.True(t, moves[1].IsCurrent)
		assert.Equal(t, "To Ascending", OrderToggleLabel(reversed))
		assert.Equal(t, DisplayBoard(session), DisplayBoard(reversed))
	})
}

func TestBuildView(t *testing.T) {
	t.Run("Ongoing game", func(t *testing.T) {
		view := BuildView(clickAll(t, newSession(t), 4))

		assert.Equal(t, "123", view.SessionID)
		assert.Equal(t, 3, view.Size)
		assert.Equal(t, entity.PlayerO, view.NextPlayer)
		assert.Equal(t, entity.StatusInProgress, view.Outcome.Status)
		assert.Len(t, view.Moves, 2)
		assert.NotNil(t, view.Highlighted)
	})

	t.Run("Finished game has no next player", func(t *testing.T) {
		view := BuildView(clickAll(t, newSession(t), 0, 3, 1, 4, 2))

		assert.Equal(t, entity.EmptyCell, view.NextPlayer)
		assert.Equal(t, "Winner: X", view.Status)
		assert.Equal(t, []int{0, 1, 2}, view.Highlighted)
	})

	t.Run("Board in the view is a copy", func(t *testing.T) {
		session := clickAll(t, newSession(t), 4)
		view := BuildView(session)

		view.Board[4] = entity.PlayerO

		assert.Equal(t, entity.PlayerX, session.CurrentBoard().At(4))
	})
}
