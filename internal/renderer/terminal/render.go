// Package terminal draws sessions as text and runs a line-based game loop.
package terminal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Render writes view to w in the given format.
func Render(w io.Writer, view tictactoe.View, format string) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(w, Text(view))
		return err
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(view)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(yamlView(view)); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Text draws the grid, the status line and the move list. Winning cells are
// wrapped in brackets.
func Text(view tictactoe.View) string {
	var b strings.Builder

	b.WriteString(view.Status)
	b.WriteString("\n\n")

	for row := range view.Size {
		if row > 0 {
			b.WriteString(strings.Repeat("---+", view.Size-1))
			b.WriteString("---\n")
		}

		for col := range view.Size {
			if col > 0 {
				b.WriteString("|")
			}
			cell := row*view.Size + col
			b.WriteString(cellText(view.Board[cell], slices.Contains(view.Highlighted, cell)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	for _, move := range view.Moves {
		marker := "  "
		if move.IsCurrent {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%d. %s\n", marker, move.Move, move.Label)
	}
	fmt.Fprintf(&b, "[order] %s\n", view.OrderToggle)

	return b.String()
}

func cellText(marker entity.Marker, highlighted bool) string {
	value := string(marker)
	if marker.IsEmpty() {
		value = " "
	}

	if highlighted {
		return "[" + value + "]"
	}

	return " " + value + " "
}

type yamlMove struct {
	Move    int    `yaml:"move"`
	Label   string `yaml:"label"`
	Current bool   `yaml:"current,omitempty"`
}

type yamlDocument struct {
	Session     string     `yaml:"session,omitempty"`
	Status      string     `yaml:"status"`
	Rows        []string   `yaml:"rows"`
	Highlighted []int      `yaml:"highlighted,flow,omitempty"`
	Moves       []yamlMove `yaml:"moves"`
	Order       string     `yaml:"order"`
}

func yamlView(view tictactoe.View) yamlDocument {
	doc := yamlDocument{
		Session:     view.SessionID,
		Status:      view.Status,
		Highlighted: view.Highlighted,
		Order:       "ascending",
	}

	if view.Descending {
		doc.Order = "descending"
	}

	for row := range view.Size {
		cells := make([]string, view.Size)
		for col := range view.Size {
			cells[col] = string(view.Board[row*view.Size+col])
			if cells[col] == "" {
				cells[col] = "."
			}
		}
		doc.Rows = append(doc.Rows, strings.Join(cells, ""))
	}

	for _, move := range view.Moves {
		doc.Moves = append(doc.Moves, yamlMove{Move: move.Move, Label: move.Label, Current: move.IsCurrent})
	}

	return doc
}
