package command

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dom/creek-dictionary/internal/repository/postgres"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or inspect schema migrations",
		Long:      "Runs the embedded schema migrations against DATABASE_URL. Defaults to up.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			cfg, logger, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}

			pool, err := openPool(cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := pool.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			return postgres.Migrate(cmd.Context(), pool.DB(), logger, action)
		},
	}
}
