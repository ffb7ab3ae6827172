package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dom/creek-dictionary/internal/repository"
	"gorm.io/gorm"
)

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// AcquireTimeout bounds how long Acquire waits for a free connection.
	AcquireTimeout time.Duration
	// QueryTimeout bounds every single store round-trip.
	QueryTimeout time.Duration
}

// Pool is the bounded set of store connections shared by every request. It
// is safe for concurrent use.
type Pool struct {
	db    *gorm.DB
	sqlDB *sql.DB
	cfg   PoolConfig
	log   *slog.Logger
}

func NewPool(db *gorm.DB, cfg PoolConfig, log *slog.Logger) (*Pool, error) {
	const op = "postgres.NewPool"

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.MaxIdleConns > cfg.MaxOpenConns {
		cfg.MaxIdleConns = cfg.MaxOpenConns
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return &Pool{
		db:    db,
		sqlDB: sqlDB,
		cfg:   cfg,
		log:   log.With(slog.String("component", "pool")),
	}, nil
}

// Acquire leases one connection for the lifetime of a request. It fails with
// domain.ErrPoolExhausted when no connection frees up within AcquireTimeout
// and with domain.ErrStoreUnavailable when a new connection cannot be opened.
func (p *Pool) Acquire(ctx context.Context) (repository.Conn, error) {
	const op = "postgres.Pool.Acquire"

	waitCtx := ctx
	if p.cfg.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, p.cfg.AcquireTimeout)
		defer cancel()
	}

	sqlConn, err := p.sqlDB.Conn(waitCtx)
	if err != nil {
		err = acquireError(ctx, err)
		p.log.WarnContext(ctx, "failed to acquire connection",
			slog.String("op", op),
			slog.Any("error", err),
			slog.Int("in_use", p.sqlDB.Stats().InUse),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Same pinning gorm.DB.Connection does: every statement built from tx
	// inherits the leased connection.
	tx := p.db.WithContext(ctx)
	tx.Statement.ConnPool = sqlConn

	return &Conn{
		conn:         sqlConn,
		db:           tx,
		queryTimeout: p.cfg.QueryTimeout,
	}, nil
}

func (p *Pool) Stats() sql.DBStats {
	return p.sqlDB.Stats()
}

func (p *Pool) DB() *gorm.DB {
	return p.db
}

func (p *Pool) Close() error {
	return p.sqlDB.Close()
}

// Conn is a single leased connection.
type Conn struct {
	conn         *sql.Conn
	db           *gorm.DB
	queryTimeout time.Duration
	once         sync.Once
}

func (c *Conn) Users() repository.UserRepository {
	return NewUserRepository(c.db, c.queryTimeout)
}

func (c *Conn) Entries() repository.EntryRepository {
	return NewEntryRepository(c.db, c.queryTimeout)
}

func (c *Conn) Release() {
	c.once.Do(func() {
		_ = c.conn.Close()
	})
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
