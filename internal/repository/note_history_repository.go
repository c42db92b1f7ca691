package repository

import (
	"context"

	"stickynotes-server/internal/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// NoteHistoryRepository is append-only: entries are never updated or removed.
type NoteHistoryRepository interface {
	Append(ctx context.Context, entry *domain.NoteHistory) error
	ListByNote(ctx context.Context, noteID string) ([]*domain.NoteHistory, error)
}

type noteHistoryRepository struct {
	db *gorm.DB
}

func NewNoteHistoryRepository(db *gorm.DB) NoteHistoryRepository {
	return &noteHistoryRepository{db: db}
}

func (r *noteHistoryRepository) Append(ctx context.Context, entry *domain.NoteHistory) error {
	if err := conn(ctx, r.db).Create(entry).Error; err != nil {
		return errors.Wrap(err, "appending history entry")
	}
	return nil
}

func (r *noteHistoryRepository) ListByNote(ctx context.Context, noteID string) ([]*domain.NoteHistory, error) {
	var entries []*domain.NoteHistory
	err := conn(ctx, r.db).
		Where("note_id = ?", noteID).
		Order("timestamp DESC").
		Find(&entries).Error
	if err != nil {
		return nil, errors.Wrap(err, "listing history for note")
	}
	return entries, nil
}
