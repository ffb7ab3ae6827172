package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/dom/creek-dictionary/internal/auth"
	"github.com/dom/creek-dictionary/internal/domain"
	"github.com/dom/creek-dictionary/internal/repository"
)

// MemoryPool is an in-memory repository.Pool. It counts leases so tests can
// check that every Acquire is paired with a Release.
type MemoryPool struct {
	mu          sync.Mutex
	users       map[string]*domain.User
	entries     map[int]*domain.Entry
	nextUserID  int
	nextEntryID int
	acquired    int
	outstanding int
	acquireErr  error
}

func NewMemoryPool() *MemoryPool {
	return &MemoryPool{
		users:   make(map[string]*domain.User),
		entries: make(map[int]*domain.Entry),
	}
}

// FailAcquire makes every following Acquire return err. Pass nil to recover.
func (p *MemoryPool) FailAcquire(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acquireErr = err
}

func (p *MemoryPool) Acquire(ctx context.Context) (repository.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.acquireErr != nil {
		return nil, fmt.Errorf("testutil.MemoryPool.Acquire: %w", p.acquireErr)
	}
	p.acquired++
	p.outstanding++
	return &memoryConn{pool: p}, nil
}

// Acquired returns how many leases were handed out in total.
func (p *MemoryPool) Acquired() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired
}

// Outstanding returns how many leases have not been released yet.
func (p *MemoryPool) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outstanding
}

// AddUser stores a user with a bcrypt hash of password.
func (p *MemoryPool) AddUser(t *testing.T, email, password string) *domain.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{Email: email, PasswordHash: hash}
	if err := (memoryUsers{pool: p}).Create(context.Background(), user); err != nil {
		t.Fatalf("failed to add user: %v", err)
	}
	return user
}

// AddEntry stores a copy of entry and returns it with its assigned id.
func (p *MemoryPool) AddEntry(t *testing.T, entry domain.Entry) *domain.Entry {
	t.Helper()

	if err := (memoryEntries{pool: p}).Create(context.Background(), &entry); err != nil {
		t.Fatalf("failed to add entry: %v", err)
	}
	return &entry
}

// Entry returns the stored entry with id, if any.
func (p *MemoryPool) Entry(id int) (*domain.Entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[id]
	if !ok {
		return nil, false
	}
	c := *entry
	return &c, true
}

type memoryConn struct {
	pool *MemoryPool
	once sync.Once
}

func (c *memoryConn) Users() repository.UserRepository {
	return memoryUsers{pool: c.pool}
}

func (c *memoryConn) Entries() repository.EntryRepository {
	return memoryEntries{pool: c.pool}
}

func (c *memoryConn) Release() {
	c.once.Do(func() {
		c.pool.mu.Lock()
		c.pool.outstanding--
		c.pool.mu.Unlock()
	})
}

type memoryUsers struct {
	pool *MemoryPool
}

func (r memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.pool.mu.Lock()
	defer r.pool.mu.Unlock()

	if _, ok := r.pool.users[user.Email]; ok {
		return domain.ErrAlreadyExists
	}
	r.pool.nextUserID++
	user.ID = r.pool.nextUserID
	c := *user
	r.pool.users[user.Email] = &c
	return nil
}

func (r memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.pool.mu.Lock()
	defer r.pool.mu.Unlock()

	user, ok := r.pool.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *user
	return &c, nil
}

type memoryEntries struct {
	pool *MemoryPool
}

func (r memoryEntries) List(_ context.Context) ([]*domain.Entry, error) {
	r.pool.mu.Lock()
	defer r.pool.mu.Unlock()

	entries := make([]*domain.Entry, 0, len(r.pool.entries))
	for _, entry := range r.pool.entries {
		c := *entry
		entries = append(entries, &c)
	}
	slices.SortFunc(entries, func(a, b *domain.Entry) int { return a.ID - b.ID })
	return entries, nil
}

func (r memoryEntries) GetByID(_ context.Context, id int) (*domain.Entry, error) {
	r.pool.mu.Lock()
	defer r.pool.mu.Unlock()

	entry, ok := r.pool.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *entry
	return &c, nil
}

func (r memoryEntries) Create(_ context.Context, entry *domain.Entry) error {
	r.pool.mu.Lock()
	defer r.pool.mu.Unlock()

	r.pool.nextEntryID++
	entry.ID = r.pool.nextEntryID
	c := *entry
	r.pool.entries[entry.ID] = &c
	return nil
}

func (r memoryEntries) Update(_ context.Context, entry *domain.Entry) error {
	r.pool.mu.Lock()
	defer r.pool.mu.Unlock()

	if _, ok := r.pool.entries[entry.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *entry
	r.pool.entries[entry.ID] = &c
	return nil
}

func (r memoryEntries) Delete(_ context.Context, id int) error {
	r.pool.mu.Lock()
	defer r.pool.mu.Unlock()

	if _, ok := r.pool.entries[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.pool.entries, id)
	return nil
}
