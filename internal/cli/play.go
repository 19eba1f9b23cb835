package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/config"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/renderer/terminal"
)

type playOptions struct {
	size   int
	format string
}

// newPlayCommand runs a local game on stdin/stdout.
func newPlayCommand(opts *Options) *cobra.Command {
	playOpts := &playOptions{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a local game in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			size := playOpts.size
			if size == 0 {
				conf, err := loadPlayConfig(opts.ConfigPath, cmd.Flags().Changed("config"))
				if err != nil {
					return err
				}
				size = conf.BoardSize
			}

			session, err := entity.NewSession("local", size)
			if err != nil {
				return fmt.Errorf("failed to start game: %w", err)
			}

			player := terminal.NewPlayer(logger, cmd.OutOrStdout(), playOpts.format, session)

			return player.Play(cmd.Context(), cmd.InOrStdin())
		},
	}

	cmd.Flags().IntVarP(&playOpts.size, "size", "n", 0, "Board size (defaults to board-size from the config)")
	cmd.Flags().StringVarP(&playOpts.format, "format", "f", terminal.FormatText, "Output format (text, json, yaml)")

	return cmd
}

// loadPlayConfig reads the config file when it exists; the default path may be absent.
func loadPlayConfig(path string, explicit bool) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !explicit {
		return config.LoadEnv()
	}

	return config.Load(path)
}
