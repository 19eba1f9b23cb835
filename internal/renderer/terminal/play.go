package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

const helpText = `commands:
  move <row> <col>   play the next marker (1-based row and column)
  click <index>      play the next marker at a 0-based cell index
  jump <n>           show the board after move n (0 is the game start)
  order              flip the move list order
  show               draw the board again
  help               print this text
  quit               leave the game
`

var (
	errUnknownCommand = errors.New("unknown command")
	errBadArguments   = errors.New("bad arguments")
)

// Player runs one session against a line-oriented input. It is the only
// mutator of its session.
type Player struct {
	logger  *slog.Logger
	out     io.Writer
	format  string
	session entity.Session
}

func NewPlayer(logger *slog.Logger, out io.Writer, format string, session entity.Session) *Player {
	return &Player{
		logger:  logger.With("component", "terminal"),
		out:     out,
		format:  format,
		session: session,
	}
}

func (that *Player) Session() entity.Session {
	return that.session
}

// Play reads commands from in until quit, end of input or ctx is done.
func (that *Player) Play(ctx context.Context, in io.Reader) error {
	if err := that.show(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return nil
		}

		if _, err := fmt.Fprint(that.out, "> "); err != nil {
			return fmt.Errorf("failed to write prompt: %w", err)
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read command: %w", err)
			}
			return nil
		}

		quit, err := that.Execute(scanner.Text())
		if err != nil {
			that.logger.Debug("command rejected", "command", scanner.Text(), "error", err)
			if _, werr := fmt.Fprintf(that.out, "error: %v\n", err); werr != nil {
				return fmt.Errorf("failed to write error: %w", werr)
			}
			continue
		}

		if quit {
			return nil
		}
	}
}

// Execute runs one command line. A failed command leaves the session as it was.
func (that *Player) Execute(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	command, args := strings.ToLower(fields[0]), fields[1:]

	switch command {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		_, err := io.WriteString(that.out, helpText)
		return false, err
	case "show":
		return false, that.show()
	case "order":
		that.session = tictactoe.OrderToggleRequested(that.session)
		return false, that.show()
	case "jump":
		move, err := intArgs(args, 1)
		if err != nil {
			return false, err
		}
		return false, that.apply(func(s entity.Session) (entity.Session, error) {
			return tictactoe.HistoryJumpRequested(s, move[0])
		})
	case "click":
		cell, err := intArgs(args, 1)
		if err != nil {
			return false, err
		}
		return false, that.apply(func(s entity.Session) (entity.Session, error) {
			return tictactoe.CellClicked(s, cell[0])
		})
	case "move":
		pos, err := intArgs(args, 2)
		if err != nil {
			return false, err
		}
		cell, err := that.session.CurrentBoard().Index(pos[0]-1, pos[1]-1)
		if err != nil {
			return false, err
		}
		return false, that.apply(func(s entity.Session) (entity.Session, error) {
			return tictactoe.CellClicked(s, cell)
		})
	default:
		return false, fmt.Errorf("%w: %s (try help)", errUnknownCommand, command)
	}
}

func (that *Player) apply(event func(entity.Session) (entity.Session, error)) error {
	next, err := event(that.session)
	if err != nil {
		return err
	}

	that.session = next

	return that.show()
}

func (that *Player) show() error {
	if err := Render(that.out, tictactoe.BuildView(that.session), that.format); err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}

	return nil
}

func intArgs(args []string, want int) ([]int, error) {
	if len(args) != want {
		return nil, fmt.Errorf("%w: expected %d number(s)", errBadArguments, want)
	}

	values := make([]int, want)
	for i, arg := range args {
		value, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", errBadArguments, arg)
		}
		values[i] = value
	}

	return values, nil
}
