package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"golang.org/x/term"

	"github.com/dom/creek-dictionary/internal/config"
	"github.com/dom/creek-dictionary/internal/repository/postgres"
)

type configKey struct{}

// readPassword reads a secret from stdin, echo disabled when stdin is a
// terminal. Piped input is read up to the first newline.
func readPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	if _, err := os.Stderr.WriteString(label); err != nil {
		return "", err
	}

	passwd, err := term.ReadPassword(fd)
	_, _ = os.Stderr.WriteString("\n")
	return string(passwd), err
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown-dev"
	}
	ver := "unknown"
	dirty := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			ver = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if dirty {
		ver += "-dev"
	}
	return ver
}

func loadConfig(ctx context.Context) (*config.Config, *slog.Logger, error) {
	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok {
		return nil, nil, errors.New("configuration resolution failed")
	}
	return cfg, slog.Default(), nil
}

// openPool connects to the store and builds the process-wide pool.
func openPool(cfg *config.Config, logger *slog.Logger) (*postgres.Pool, error) {
	db, err := postgres.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pool, err := postgres.NewPool(db, postgres.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		AcquireTimeout:  cfg.Database.AcquireTimeout,
		QueryTimeout:    cfg.Database.QueryTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return pool, nil
}
