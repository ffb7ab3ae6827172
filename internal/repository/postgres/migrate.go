package postgres

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/dom/creek-dictionary/internal/logging"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrate runs a goose command ("up", "down" or "status") against the
// embedded migrations.
func Migrate(ctx context.Context, db *gorm.DB, log *slog.Logger, command string) error {
	const op = "postgres.Migrate"

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	goose.SetLogger(logging.StdLogger(log.With(slog.String("component", "goose")), slog.LevelInfo))
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%s: failed to set migration dialect: %w", op, err)
	}

	switch command {
	case "up":
		err = goose.UpContext(ctx, sqlDB, migrationsDir)
	case "down":
		err = goose.DownContext(ctx, sqlDB, migrationsDir)
	case "status":
		err = goose.StatusContext(ctx, sqlDB, migrationsDir)
	default:
		return fmt.Errorf("%s: unknown migration command %q", op, command)
	}
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, command, err)
	}
	return nil
}
