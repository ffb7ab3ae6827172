package service

import (
	"log/slog"
	"time"

	"github.com/dom/creek-dictionary/internal/config"
	"github.com/dom/creek-dictionary/internal/repository"
)

// TokenMinter signs credentials for authenticated subjects.
type TokenMinter interface {
	Mint(subject string, ttl time.Duration) (string, error)
}

type Services struct {
	Auth    *AuthService
	Entries *EntryService
}

func NewServices(pool repository.Pool, tokens TokenMinter, cfg *config.Config, log *slog.Logger) *Services {
	return &Services{
		Auth:    NewAuthService(pool, tokens, cfg.Auth.TokenTTL, log),
		Entries: NewEntryService(pool, log),
	}
}
