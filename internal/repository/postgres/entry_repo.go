package postgres

import (
	"context"
	"time"

	"github.com/dom/creek-dictionary/internal/domain"
	"gorm.io/gorm"
)

type entryRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewEntryRepository(db *gorm.DB, timeout time.Duration) *entryRepository {
	return &entryRepository{db: db, timeout: timeout}
}

func (r *entryRepository) List(ctx context.Context) ([]*domain.Entry, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	entries := []*domain.Entry{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&entries).Error
	if err != nil {
		return nil, translate("postgres.entryRepository.List", err)
	}
	return entries, nil
}

func (r *entryRepository) GetByID(ctx context.Context, id int) (*domain.Entry, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var entry domain.Entry
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&entry).Error
	if err != nil {
		return nil, translate("postgres.entryRepository.GetByID", err)
	}
	return &entry, nil
}

func (r *entryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return translate("postgres.entryRepository.Create", r.db.WithContext(ctx).Create(entry).Error)
}

// Update overwrites every column of the entry with the given id, clearing
// tags when entry.Tags is nil.
func (r *entryRepository) Update(ctx context.Context, entry *domain.Entry) error {
	const op = "postgres.entryRepository.Update"

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result := r.db.WithContext(ctx).
		Model(&domain.Entry{}).
		Where("id = ?", entry.ID).
		Updates(map[string]any{
			"creek":   entry.Creek,
			"english": entry.English,
			"tags":    entry.Tags,
		})
	if result.Error != nil {
		return translate(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return translate(op, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *entryRepository) Delete(ctx context.Context, id int) error {
	const op = "postgres.entryRepository.Delete"

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Entry{})
	if result.Error != nil {
		return translate(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return translate(op, gorm.ErrRecordNotFound)
	}
	return nil
}
