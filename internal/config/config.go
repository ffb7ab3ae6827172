// Package config loads the service configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const profileRelease = "release"

type Config struct {
	Environment string `env:"ENVIRONMENT" env-default:"development"`
	Profile     string `env:"PROFILE"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`

	HTTP     HTTPServer
	Database Database
	Auth     Auth
	CORS     CORS
}

type HTTPServer struct {
	Host            string        `env:"HOST" env-default:"0.0.0.0"`
	Port            string        `env:"PORT" env-default:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

type Database struct {
	// URL wins when set; otherwise PROFILE selects between ProdURL and DevURL.
	URL     string `env:"DATABASE_URL"`
	DevURL  string `env:"DEV_DATABASE_URL"`
	ProdURL string `env:"PROD_DATABASE_URL"`

	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
	AcquireTimeout  time.Duration `env:"DB_ACQUIRE_TIMEOUT" env-default:"5s"`
	QueryTimeout    time.Duration `env:"DB_QUERY_TIMEOUT" env-default:"10s"`
}

type Auth struct {
	// Secret signs every credential. It is never logged.
	Secret      string        `env:"SECRET,JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" env-default:"720h"`
	PublicPaths []string      `env:"AUTH_PUBLIC_PATHS" env-default:"/api/login,/health" env-separator:","`
}

type CORS struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000" env-separator:","`
	MaxAge         int      `env:"CORS_MAX_AGE" env-default:"3600"`
}

// Load reads .env (if present) and the process environment. A missing
// database URL or signing secret is an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.resolve(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) resolve() error {
	if c.Database.URL == "" {
		if c.Profile == profileRelease {
			c.Database.URL = c.Database.ProdURL
		} else {
			c.Database.URL = c.Database.DevURL
		}
	}

	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL environment variable is required"))
	}
	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("SECRET environment variable is required"))
	}
	if c.Database.MaxOpenConns < 1 {
		errs = append(errs, fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.Database.MaxOpenConns))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address, e.g. "0.0.0.0:8080".
func (s HTTPServer) Addr() string {
	return s.Host + ":" + s.Port
}
