package testutil

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/creek-dictionary/internal/api"
	"github.com/dom/creek-dictionary/internal/api/middleware"
	"github.com/dom/creek-dictionary/internal/auth"
	"github.com/dom/creek-dictionary/internal/config"
	"github.com/dom/creek-dictionary/internal/repository"
	repoPostgres "github.com/dom/creek-dictionary/internal/repository/postgres"
	"github.com/dom/creek-dictionary/internal/service"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestSecret signs every credential minted by test servers.
const TestSecret = "test-jwt-secret-key-for-testing-only"

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB starts a PostgreSQL container and applies the embedded migrations
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_creek_dictionary"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	testDB := &TestDB{Container: container}
	t.Cleanup(func() {
		testDB.Cleanup()
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(ctx, db, DiscardLogger(), "up"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB.DB = db
	testDB.DSN = dsn

	return testDB
}

// Pool wraps the container database in a connection pool of the given size
func (tdb *TestDB) Pool(t *testing.T, size int) *repoPostgres.Pool {
	t.Helper()

	pool, err := repoPostgres.NewPool(tdb.DB, repoPostgres.PoolConfig{
		MaxOpenConns:   size,
		MaxIdleConns:   size,
		AcquireTimeout: 2 * time.Second,
		QueryTimeout:   5 * time.Second,
	}, DiscardLogger())
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	return pool
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		_ = tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	if err := tdb.DB.Exec("TRUNCATE TABLE entries, users RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		LogLevel:    "error",
		HTTP: config.HTTPServer{
			Host: "127.0.0.1",
			Port: "0",
		},
		Database: config.Database{
			MaxOpenConns:   4,
			MaxIdleConns:   4,
			AcquireTimeout: 2 * time.Second,
			QueryTimeout:   5 * time.Second,
		},
		Auth: config.Auth{
			Secret:      TestSecret,
			TokenTTL:    time.Hour,
			PublicPaths: []string{"/api/login", "/health"},
		},
		CORS: config.CORS{
			AllowedOrigins: []string{"http://localhost:3000"},
			MaxAge:         3600,
		},
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	Pool     repository.Pool
	Services *service.Services
	Tokens   *auth.TokenCodec
	Config   *config.Config
}

// NewTestServer serves the full router over a PostgreSQL container
func NewTestServer(t *testing.T) (*TestServer, *TestDB) {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()
	return newServer(t, testDB.Pool(t, cfg.Database.MaxOpenConns), cfg), testDB
}

// NewMemoryServer serves the full router over an in-memory pool
func NewMemoryServer(t *testing.T) (*TestServer, *MemoryPool) {
	t.Helper()

	pool := NewMemoryPool()
	return newServer(t, pool, TestConfig()), pool
}

func newServer(t *testing.T, pool repository.Pool, cfg *config.Config) *TestServer {
	t.Helper()

	log := DiscardLogger()
	tokens := auth.NewTokenCodec([]byte(cfg.Auth.Secret))
	services := service.NewServices(pool, tokens, cfg, log)
	gate := middleware.NewGate(tokens, cfg.Auth.PublicPaths, log)

	server := httptest.NewServer(api.NewRouter(services, gate, cfg, log))
	t.Cleanup(server.Close)

	return &TestServer{
		Server:   server,
		Pool:     pool,
		Services: services,
		Tokens:   tokens,
		Config:   cfg,
	}
}

// URL returns the absolute URL for a path on the test server
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}
