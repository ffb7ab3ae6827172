package repository

import (
	"context"

	"github.com/dom/creek-dictionary/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type EntryRepository interface {
	List(ctx context.Context) ([]*domain.Entry, error)
	GetByID(ctx context.Context, id int) (*domain.Entry, error)
	Create(ctx context.Context, entry *domain.Entry) error
	Update(ctx context.Context, entry *domain.Entry) error
	Delete(ctx context.Context, id int) error
}

// Conn is a leased store connection. Repositories obtained from it run on that
// connection only. Release returns it to the pool and is safe to call more
// than once; callers defer it right after a successful Acquire.
type Conn interface {
	Users() UserRepository
	Entries() EntryRepository
	Release()
}

// Pool hands out leased connections. Acquire blocks until a connection is
// free, ctx is done, or the pool's wait bound elapses.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
}
