package postgres

import (
	"log/slog"
	"time"

	"github.com/dom/creek-dictionary/internal/logging"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection opens the process-wide gorm handle. Schema changes are owned
// by the goose migrations, not AutoMigrate.
func NewConnection(databaseURL string, log *slog.Logger) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(databaseURL), gormConfig(log))
}

func gormConfig(log *slog.Logger) *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(logging.StdLogger(log.With(slog.String("component", "gorm")), slog.LevelWarn), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}
}
