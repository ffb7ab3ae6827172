package command

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dom/creek-dictionary/internal/api"
	"github.com/dom/creek-dictionary/internal/api/middleware"
	"github.com/dom/creek-dictionary/internal/auth"
	"github.com/dom/creek-dictionary/internal/config"
	"github.com/dom/creek-dictionary/internal/logging"
	"github.com/dom/creek-dictionary/internal/repository/postgres"
	"github.com/dom/creek-dictionary/internal/service"
)

func serveCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the dictionary HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
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

			if migrate {
				if err := postgres.Migrate(cmd.Context(), pool.DB(), logger, "up"); err != nil {
					return err
				}
			}

			tokens := auth.NewTokenCodec([]byte(cfg.Auth.Secret))
			services := service.NewServices(pool, tokens, cfg, logger)
			gate := middleware.NewGate(tokens, cfg.Auth.PublicPaths, logger)

			srv := &http.Server{
				Handler:      api.NewRouter(services, gate, cfg, logger),
				ReadTimeout:  cfg.HTTP.ReadTimeout,
				WriteTimeout: cfg.HTTP.WriteTimeout,
				IdleTimeout:  cfg.HTTP.IdleTimeout,
				ErrorLog:     logging.StdLogger(logger, slog.LevelError),
			}

			grp, ctx := errgroup.WithContext(cmd.Context())
			if err := serveHTTP(ctx, grp, cfg.HTTP, logger, srv); err != nil {
				return err
			}
			return grp.Wait()
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")

	return cmd
}

// serveHTTP runs srv until ctx is cancelled, then drains in-flight requests
// for at most cfg.ShutdownTimeout.
func serveHTTP(
	ctx context.Context,
	grp *errgroup.Group,
	cfg config.HTTPServer,
	logger *slog.Logger,
	srv *http.Server,
) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", cfg.Addr())
	if err != nil {
		return err
	}

	logger.InfoContext(ctx,
		"starting HTTP server...",
		slog.String("address", listener.Addr().String()),
	)

	grp.Go(func() error {
		err := srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	grp.Go(func() error {
		<-ctx.Done()
		logger.InfoContext(ctx, "shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return nil
}
