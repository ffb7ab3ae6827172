package command

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dom/creek-dictionary/internal/auth"
	"github.com/dom/creek-dictionary/internal/service"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User commands",
	}
	cmd.AddCommand(
		userCreateCommand(),
	)
	return cmd
}

func userCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create EMAIL",
		Short: "Create user",
		Long: "Creates a login for the provided email. The password may be provided\n" +
			"via stdin or through the interactive prompt.",
		Args: cobra.ExactArgs(1),
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

			passwd, err := readPassword("password: ")
			if err != nil {
				return err
			}

			tokens := auth.NewTokenCodec([]byte(cfg.Auth.Secret))
			users := service.NewAuthService(pool, tokens, cfg.Auth.TokenTTL, logger)
			user, err := users.CreateUser(cmd.Context(), args[0], passwd)
			if err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "created user",
				slog.Int("id", user.ID),
				slog.String("email", user.Email),
			)
			return nil
		},
	}
}
