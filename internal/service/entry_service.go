package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dom/creek-dictionary/internal/domain"
	"github.com/dom/creek-dictionary/internal/repository"
)

type EntryService struct {
	pool repository.Pool
	log  *slog.Logger
}

func NewEntryService(pool repository.Pool, log *slog.Logger) *EntryService {
	return &EntryService{
		pool: pool,
		log:  log,
	}
}

type EntryInput struct {
	Creek   string
	English string
	Tags    *string
}

// normalize trims every field and turns blank tags into no tags.
func (in EntryInput) normalize() (EntryInput, error) {
	in.Creek = strings.TrimSpace(in.Creek)
	in.English = strings.TrimSpace(in.English)
	if in.Creek == "" {
		return in, fmt.Errorf("%w: creek is required", domain.ErrInvalidInput)
	}
	if in.English == "" {
		return in, fmt.Errorf("%w: english is required", domain.ErrInvalidInput)
	}
	if in.Tags != nil {
		tags := strings.TrimSpace(*in.Tags)
		if tags == "" {
			in.Tags = nil
		} else {
			in.Tags = &tags
		}
	}
	return in, nil
}

func (s *EntryService) List(ctx context.Context) ([]*domain.Entry, error) {
	const op = "service.EntryService.List"

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer conn.Release()

	entries, err := conn.Entries().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

func (s *EntryService) Get(ctx context.Context, id int) (*domain.Entry, error) {
	const op = "service.EntryService.Get"

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer conn.Release()

	entry, err := conn.Entries().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entry, nil
}

func (s *EntryService) Create(ctx context.Context, input EntryInput) (*domain.Entry, error) {
	const op = "service.EntryService.Create"

	input, err := input.normalize()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer conn.Release()

	entry := &domain.Entry{
		Creek:   input.Creek,
		English: input.English,
		Tags:    input.Tags,
	}
	if err := conn.Entries().Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.DebugContext(ctx, "entry created", slog.String("op", op), slog.Int("entry_id", entry.ID))

	return entry, nil
}

// Update replaces the entry's fields wholesale; omitted tags are cleared.
func (s *EntryService) Update(ctx context.Context, id int, input EntryInput) (*domain.Entry, error) {
	const op = "service.EntryService.Update"

	input, err := input.normalize()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer conn.Release()

	entry := &domain.Entry{
		ID:      id,
		Creek:   input.Creek,
		English: input.English,
		Tags:    input.Tags,
	}
	if err := conn.Entries().Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entry, nil
}

func (s *EntryService) Delete(ctx context.Context, id int) error {
	const op = "service.EntryService.Delete"

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer conn.Release()

	if err := conn.Entries().Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.DebugContext(ctx, "entry deleted", slog.String("op", op), slog.Int("entry_id", id))

	return nil
}
