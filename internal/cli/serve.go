package cli

import (
	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/tictactoe-timetravel/internal"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/config"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/logging"
)

// newServeCommand runs the WebSocket and REST servers backed by Redis.
func newServeCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the WebSocket and HTTP servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}

			level, format := conf.LogLevel, conf.LogFormat
			if cmd.Flags().Changed("log-level") {
				level = opts.LogLevel
			}
			if cmd.Flags().Changed("log-format") {
				format = opts.LogFormat
			}

			logger := logging.New(cmd.OutOrStdout(), level, format)

			return app.RunApp(cmd.Context(), logger, conf)
		},
	}
}
