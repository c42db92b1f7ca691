package repository

import (
	"context"

	"stickynotes-server/internal/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	FindByID(ctx context.Context, id string) (*domain.Note, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, id string) error
	AddShare(ctx context.Context, note *domain.Note, user *domain.User) error
}

type noteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	// Associations are managed explicitly (AddShare), never upserted here.
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(note).Error; err != nil {
		return errors.Wrap(err, "creating note")
	}
	return nil
}

func (r *noteRepository) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	var note domain.Note
	err := conn(ctx, r.db).
		Preload("Owner").
		Preload("SharedWith").
		First(&note, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNoteNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "finding note by id")
	}
	return &note, nil
}

// ListForUser returns every note the user owns or has shared access to.
func (r *noteRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Note, error) {
	var notes []*domain.Note
	err := conn(ctx, r.db).
		Distinct("notes.*").
		Joins("LEFT JOIN note_shares ON note_shares.note_id = notes.id").
		Where("notes.owner_id = ? OR note_shares.user_id = ?", userID, userID).
		Preload("Owner").
		Preload("SharedWith").
		Find(&notes).Error
	if err != nil {
		return nil, errors.Wrap(err, "listing notes for user")
	}
	return notes, nil
}

func (r *noteRepository) Update(ctx context.Context, note *domain.Note) error {
	err := conn(ctx, r.db).
		Model(note).
		Select("Title", "Content", "UpdatedAt").
		Updates(note).Error
	if err != nil {
		return errors.Wrap(err, "updating note")
	}
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	db := conn(ctx, r.db)
	note := domain.Note{ID: id}

	// Clear join rows first so a future re-use of the id starts clean.
	if err := db.Model(&note).Association("SharedWith").Clear(); err != nil {
		return errors.Wrap(err, "clearing note shares")
	}
	if err := db.Delete(&note).Error; err != nil {
		return errors.Wrap(err, "deleting note")
	}
	return nil
}

func (r *noteRepository) AddShare(ctx context.Context, note *domain.Note, user *domain.User) error {
	err := conn(ctx, r.db).Model(note).Association("SharedWith").Append(user)
	if err != nil {
		return errors.Wrap(err, "adding note share")
	}
	return nil
}
