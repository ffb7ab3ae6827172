// Package command contains the CLI command constructors.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dom/creek-dictionary/internal/config"
	"github.com/dom/creek-dictionary/internal/logging"
)

// RootCommand instantiates the root command, with all sub-commands bound.
func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "creek-dictionary [command] [flags]",
		Short:        "Creek/English dictionary API server",
		Version:      version(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := logging.New(os.Stderr, cfg.LogLevel).With(slog.String("env", cfg.Environment))
			logger.DebugContext(cmd.Context(), "configuration loaded",
				slog.String("addr", cfg.HTTP.Addr()),
				slog.Int("max_open_conns", cfg.Database.MaxOpenConns),
				slog.Any("public_paths", cfg.Auth.PublicPaths),
			)
			slog.SetDefault(logger)
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}

	cmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		userCommand(),
	)

	return cmd
}
