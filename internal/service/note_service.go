package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stickynotes-server/internal/domain"
	"stickynotes-server/internal/repository"

	"github.com/google/uuid"
)

type NoteService struct {
	notes   repository.NoteRepository
	users   repository.UserRepository
	history repository.NoteHistoryRepository
	tx      repository.TxManager
	events  NoteEventSink
}

func NewNoteService(
	notes repository.NoteRepository,
	users repository.UserRepository,
	history repository.NoteHistoryRepository,
	tx repository.TxManager,
	events NoteEventSink,
) *NoteService {
	return &NoteService{
		notes:   notes,
		users:   users,
		history: history,
		tx:      tx,
		events:  events,
	}
}

func newHistoryEntry(noteID string, change domain.ChangeType, oldContent, newContent *string) *domain.NoteHistory {
	return &domain.NoteHistory{
		ID:         uuid.New().String(),
		NoteID:     noteID,
		ChangeType: change,
		OldContent: oldContent,
		NewContent: newContent,
		Timestamp:  time.Now(),
	}
}

// List returns every note the user owns or has shared access to.
func (s *NoteService) List(ctx context.Context, userID string) ([]*domain.NoteResponse, error) {
	notes, err := s.notes.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.NoteResponse, 0, len(notes))
	for _, n := range notes {
		responses = append(responses, n.ToResponse())
	}
	return responses, nil
}

// Create persists a note owned by userID and records a CREATED history entry
// in the same transaction.
func (s *NoteService) Create(ctx context.Context, userID string, req *domain.CreateNoteRequest) (*domain.NoteResponse, error) {
	var created *domain.Note

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		owner, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return err
		}

		now := time.Now()
		note := &domain.Note{
			ID:        uuid.New().String(),
			OwnerID:   owner.ID,
			Title:     req.Title,
			Content:   req.Content,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := s.notes.Create(ctx, note); err != nil {
			return err
		}

		content := note.Content
		if err := s.history.Append(ctx, newHistoryEntry(note.ID, domain.ChangeCreated, nil, &content)); err != nil {
			return err
		}

		note.Owner = *owner
		created = note
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := created.ToResponse()
	if s.events != nil {
		s.events.NoteCreated(resp, noteRecipients(created))
	}

	return resp, nil
}

// Get returns one note; the caller must be the owner or in the shared set.
func (s *NoteService) Get(ctx context.Context, userID, noteID string) (*domain.NoteResponse, error) {
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	if !note.CanRead(userID) {
		return nil, domain.ErrUnauthorized
	}

	return note.ToResponse(), nil
}

// Update overwrites title and content. Owner and shared users may update.
// A content change appends exactly one UPDATED history entry; an update that
// leaves content identical appends none. There is no version check: two
// concurrent authorized updates resolve last-write-wins.
func (s *NoteService) Update(ctx context.Context, userID, noteID string, req *domain.UpdateNoteRequest) (*domain.NoteResponse, error) {
	var updated *domain.Note

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		note, err := s.notes.FindByID(ctx, noteID)
		if err != nil {
			return err
		}

		if !note.CanRead(userID) {
			return domain.ErrUnauthorized
		}

		if note.Content != req.Content {
			oldContent := note.Content
			newContent := req.Content
			entry := newHistoryEntry(note.ID, domain.ChangeUpdated, &oldContent, &newContent)
			if err := s.history.Append(ctx, entry); err != nil {
				return err
			}
		}

		note.Title = req.Title
		note.Content = req.Content
		note.UpdatedAt = time.Now()

		if err := s.notes.Update(ctx, note); err != nil {
			return err
		}

		updated = note
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := updated.ToResponse()
	if s.events != nil {
		s.events.NoteUpdated(resp, noteRecipients(updated))
	}

	return resp, nil
}

// Delete removes a note. Only the owner may delete; shared users cannot.
// A DELETED history entry is appended in the same transaction and the
// history itself survives the deletion.
func (s *NoteService) Delete(ctx context.Context, userID, noteID string) error {
	var deleted *domain.Note

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		note, err := s.notes.FindByID(ctx, noteID)
		if err != nil {
			return err
		}

		if !note.IsOwner(userID) {
			return domain.ErrUnauthorized
		}

		content := note.Content
		if err := s.history.Append(ctx, newHistoryEntry(note.ID, domain.ChangeDeleted, &content, nil)); err != nil {
			return err
		}

		if err := s.notes.Delete(ctx, note.ID); err != nil {
			return err
		}

		deleted = note
		return nil
	})
	if err != nil {
		return err
	}

	if s.events != nil {
		s.events.NoteDeleted(deleted.ID, noteRecipients(deleted))
	}

	return nil
}

// Share grants username read/update access to the note. Only the owner can
// share, the target must exist, and sharing with yourself is rejected.
// Sharing with a user already in the set is a no-op.
func (s *NoteService) Share(ctx context.Context, userID, noteID, username string) (*domain.NoteResponse, error) {
	var shared *domain.Note

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		note, err := s.notes.FindByID(ctx, noteID)
		if err != nil {
			return err
		}

		if !note.IsOwner(userID) {
			return domain.ErrUnauthorized
		}

		target, err := s.users.FindByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("resolving share target %q: %w", username, err)
		}

		if target.ID == userID {
			return domain.ErrSelfShare
		}

		if !note.IsSharedWith(target.ID) {
			if err := s.notes.AddShare(ctx, note, target); err != nil {
				return err
			}
			note.SharedWith = append(note.SharedWith, *target)
		}

		shared = note
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := shared.ToResponse()
	if s.events != nil {
		s.events.NoteShared(resp, noteRecipients(shared))
	}

	return resp, nil
}

// History returns all history entries for a note, newest first. While the
// note exists the caller needs owner-or-shared access; once the note is
// deleted its log remains readable, since the access list died with it.
func (s *NoteService) History(ctx context.Context, userID, noteID string) ([]*domain.NoteHistory, error) {
	note, err := s.notes.FindByID(ctx, noteID)
	switch {
	case err == nil:
		if !note.CanRead(userID) {
			return nil, domain.ErrUnauthorized
		}
	case errors.Is(err, domain.ErrNoteNotFound):
		// deleted note, history outlives it
	default:
		return nil, err
	}

	return s.history.ListByNote(ctx, noteID)
}

// ShareCandidates returns every user except the caller, for populating a
// share picker.
func (s *NoteService) ShareCandidates(ctx context.Context, userID string) ([]*domain.UserResponse, error) {
	users, err := s.users.ListOthers(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}
	return responses, nil
}
