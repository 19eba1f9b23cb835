// Package cli defines the tictactoe command tree.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/logging"
)

const defaultConfigPath = "config.yml"

// Options stores global flags shared between commands.
type Options struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// Execute builds the root command and runs it with args.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	rootCmd := newRootCommand(&Options{})
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tictactoe",
		Short:         "Tic-tac-toe with move history and time travel",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.New(cmd.ErrOrStderr(), opts.LogLevel, opts.LogFormat)
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "level", opts.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", defaultConfigPath, "Path to config.yml")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", logging.FormatText, "Log format (json, text)")

	cmd.AddCommand(
		newServeCommand(opts),
		newPlayCommand(opts),
	)

	return cmd
}

type loggerKey struct{}

// LoggerFromContext extracts the command logger or falls back to a default one.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return logging.New(os.Stderr, "info", logging.FormatText)
}
