package service

import (
	"context"
	"errors"
	"testing"

	"stickynotes-server/internal/domain"
)

type mockNoteRepo struct {
	notes map[string]*domain.Note
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{
		notes: make(map[string]*domain.Note),
	}
}

func (m *mockNoteRepo) Create(ctx context.Context, note *domain.Note) error {
	m.notes[note.ID] = note
	return nil
}

// FindByID returns a detached copy, the way a real row scan would.
func (m *mockNoteRepo) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	n, exists := m.notes[id]
	if !exists {
		return nil, domain.ErrNoteNotFound
	}
	detached := *n
	detached.SharedWith = append([]domain.User(nil), n.SharedWith...)
	return &detached, nil
}

func (m *mockNoteRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Note, error) {
	var notes []*domain.Note
	for _, n := range m.notes {
		if n.OwnerID == userID || n.IsSharedWith(userID) {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

func (m *mockNoteRepo) Update(ctx context.Context, note *domain.Note) error {
	if _, exists := m.notes[note.ID]; !exists {
		return domain.ErrNoteNotFound
	}
	m.notes[note.ID] = note
	return nil
}

func (m *mockNoteRepo) Delete(ctx context.Context, id string) error {
	if _, exists := m.notes[id]; !exists {
		return domain.ErrNoteNotFound
	}
	delete(m.notes, id)
	return nil
}

// AddShare touches only the stored row, mirroring a join-table insert.
func (m *mockNoteRepo) AddShare(ctx context.Context, note *domain.Note, user *domain.User) error {
	stored, exists := m.notes[note.ID]
	if !exists {
		return domain.ErrNoteNotFound
	}
	stored.SharedWith = append(stored.SharedWith, *user)
	return nil
}

type mockHistoryRepo struct {
	entries []*domain.NoteHistory
}

func (m *mockHistoryRepo) Append(ctx context.Context, entry *domain.NoteHistory) error {
	m.entries = append(m.entries, entry)
	return nil
}

// Entries are appended in chronological order, so newest-first is the
// reverse of append order.
func (m *mockHistoryRepo) ListByNote(ctx context.Context, noteID string) ([]*domain.NoteHistory, error) {
	var entries []*domain.NoteHistory
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].NoteID == noteID {
			entries = append(entries, m.entries[i])
		}
	}
	return entries, nil
}

func (m *mockHistoryRepo) forNote(noteID string) []*domain.NoteHistory {
	entries, _ := m.ListByNote(context.Background(), noteID)
	return entries
}

type mockTxManager struct{}

func (m *mockTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordedEvent struct {
	eventType  string
	recipients []string
}

type mockEventSink struct {
	events []recordedEvent
}

func (m *mockEventSink) NoteCreated(note *domain.NoteResponse, recipients []string) {
	m.events = append(m.events, recordedEvent{"created", recipients})
}

func (m *mockEventSink) NoteUpdated(note *domain.NoteResponse, recipients []string) {
	m.events = append(m.events, recordedEvent{"updated", recipients})
}

func (m *mockEventSink) NoteDeleted(noteID string, recipients []string) {
	m.events = append(m.events, recordedEvent{"deleted", recipients})
}

func (m *mockEventSink) NoteShared(note *domain.NoteResponse, recipients []string) {
	m.events = append(m.events, recordedEvent{"shared", recipients})
}

func newTestNoteService() (*NoteService, *mockNoteRepo, *mockUserRepository, *mockHistoryRepo, *mockEventSink) {
	notes := newMockNoteRepo()
	users := newMockUserRepository()
	history := &mockHistoryRepo{}
	sink := &mockEventSink{}

	users.Create(context.Background(), &domain.User{ID: "alice", Username: "alice", Email: "alice@example.com"})
	users.Create(context.Background(), &domain.User{ID: "bob", Username: "bob", Email: "bob@example.com"})
	users.Create(context.Background(), &domain.User{ID: "carol", Username: "carol", Email: "carol@example.com"})

	svc := NewNoteService(notes, users, history, &mockTxManager{}, sink)
	return svc, notes, users, history, sink
}

func TestNoteService_Create(t *testing.T) {
	svc, _, _, history, sink := newTestNoteService()
	ctx := context.Background()

	note, err := svc.Create(ctx, "alice", &domain.CreateNoteRequest{Title: "Shopping", Content: "milk,eggs"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if note.ID == "" {
		t.Error("expected note ID to be generated")
	}
	if note.Owner != "alice" {
		t.Errorf("expected owner alice, got %s", note.Owner)
	}

	entries := history.forNote(note.ID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	if entries[0].ChangeType != domain.ChangeCreated {
		t.Errorf("expected CREATED entry, got %s", entries[0].ChangeType)
	}
	if entries[0].OldContent != nil {
		t.Error("expected CREATED entry to have no old content")
	}
	if entries[0].NewContent == nil || *entries[0].NewContent != "milk,eggs" {
		t.Error("expected CREATED entry new content to equal note content")
	}

	if len(sink.events) != 1 || sink.events[0].eventType != "created" {
		t.Errorf("expected one created event, got %v", sink.events)
	}
}

func TestNoteService_List(t *testing.T) {
	svc, _, _, _, _ := newTestNoteService()
	ctx := context.Background()

	svc.Create(ctx, "alice", &domain.CreateNoteRequest{Title: "a1", Content: "c1"})
	shared, _ := svc.Create(ctx, "alice", &domain.CreateNoteRequest{Title: "a2", Content: "c2"})
	svc.Create(ctx, "bob", &domain.CreateNoteRequest{Title: "b1", Content: "c3"})

	if _, err := svc.Share(ctx, "alice", shared.ID, "bob"); err != nil {
		t.Fatalf("share failed: %v", err)
	}

	aliceNotes, err := svc.List(ctx, "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(aliceNotes) != 2 {
		t.Errorf("expected 2 notes for alice, got %d", len(aliceNotes))
	}

	bobNotes, err := svc.List(ctx, "bob")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(bobNotes) != 2 {
		t.Errorf("expected 2 notes for bob (1 owned, 1 shared), got %d", len(bobNotes))
	}
}

func TestNoteService_Update(t *testing.T) {
	svc, _, _, history, _ := newTestNoteService()
	ctx := context.Background()

	note, _ := svc.Create(ctx, "alice", &domain.CreateNoteRequest{Title: "Shopping", Content: "milk"})

	updated, err := svc.Update(ctx, "alice", note.ID, &domain.UpdateNoteRequest{Title: "Groceries", Content: "milk,eggs"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Title != "Groceries" || updated.Content != "milk,eggs" {
		t.Errorf("expected title and content overwritten, got %q/%q", updated.Title, updated.Content)
	}

	entries := history.forNote(note.ID)
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	if entries[0].ChangeType != domain.ChangeUpdated {
		t.Errorf("expected newest entry UPDATED, got %s", entries[0].ChangeType)
	}
	if entries[0].OldContent == nil || *entries[0].OldContent != "milk" {
		t.Error("expected UPDATED old content to be previous content")
	}
	if entries[0].NewContent == nil || *entries[0].NewContent != "milk,eggs" {
		t.Error("expected UPDATED new content to be new content")
	}
}

func TestNoteService_Update_IdenticalContentSkipsHistory(t *testing.T) {
	svc, _, _, history, _ := newTestNoteService()
	ctx := context.Background()

	note, _ := svc.Create(ctx, "alice", &domain.CreateNoteRequest{Title: "Shopping", Content: "milk"})

	updated, err := svc.Update(ctx, "alice", note.ID, &domain.UpdateNoteRequest{Title: "Renamed", Content: "milk"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Title != "Renamed" {
		t.Errorf("expected title overwritten, got %q", updated.Title)
	}

	if entries := history.forNote(note.ID); len(entries) != 1 {
		t.Errorf("expected only the CREATED entry, got %d entries", len(entries))
	}
}

func TestNoteService_Update_Authorization(t *testing.T) {
	svc, _, _, _, _ := newTestNoteService()
	ctx := context.Background()

	note, _ := svc.Create(ctx, "alice", &domain.CreateNoteRequest{Title: "n", Content: "c"})
	svc.Share(ctx, "alice", note.ID, "bob")

	if _, err := svc.Update(ctx, "bob", note.ID, &domain.UpdateNoteRequest{Title: "n", Content: "c2"}); err != nil {
		t.Errorf("expected shared user to update, got %v", err)
	}

	_, err := svc.Update(ctx, "carol", note.ID, &domain.UpdateNoteRequest{Title: "n", Content: "c3"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for stranger, got %v", err)
	}

	_, err = svc.Update(ctx, "alice", "missing-id", &domain.UpdateNoteRequest{Title: "n", Content: "c"})
	if !errors.Is(err, domain.ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestNoteService_Delete(t *testing.T) {
	svc, _, _, history, _ := newTestNoteService()
	ctx := context.Background()

	note, _ := svc.Create(ctx, "alice", &domain.CreateNoteRequest{Title: "n", Content: "final"})
	svc.Share(ctx, "alice", note.ID, "bob")

	err := svc.Delete(ctx, "bob", note.ID)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected shared user delete to fail, got %v", err)
	}

	if err := svc.Delete(ctx, "alice", note.ID); err != nil {
		t.Fatalf("expected owner delete to succeed, got %v", err)
	}

	entries := history.forNote(note.ID)
	if len(entries) != 2 {
		t.Fatalf("expected CREATED and DELETED entries, got %d", len(entries))
	}
	if entries[0].ChangeType != domain.ChangeDeleted {
		t.Errorf("expected newest entry DELETED, got %s", entries[0].ChangeType)
	}
	if entries[0].OldContent == nil || *entries[0].OldContent != "final" {
		t.Error("expected DELETED old content to be final content")
	}
	if entries[0].NewContent != nil {
		t.Error("expected DELETED entry to have no new content")
	}

	notes, _ := svc.List(ctx, "alice")
	if len(notes) != 0 {
		t.Errorf("expected deleted note gone from list, got %d notes", len(notes))
	}

	err = svc.Delete(ctx, "alice", note.ID)
	if !errors.Is(err, domain.ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound on second delete, got %v", err)
	}
}

func TestNoteService_Share(t *testing.T) {
	svc, notes, _, _, sink := newTestNoteService()
	ctx := context.Background()

	note, _ := svc.Create(ctx, "alice", &domain.CreateNoteRequest{Title: "n", Content: "c"})

	if _, err := svc.Share(ctx, "alice", note.ID, "alice"); !errors.Is(err, domain.ErrSelfShare) {
		t.Errorf("expected ErrSelfShare, got %v", err)
	}

	if _, err := svc.Share(ctx, "alice", note.ID, "nobody"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	if _, err := svc.Share(ctx, "bob", note.ID, "carol"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for non-owner share, got %v", err)
	}

	shared, err := svc.Share(ctx, "alice", note.ID, "bob")
	if err != nil {
		t.Fatalf("expected share to succeed, got %v", err)
	}
	if len(shared.SharedWith) != 1 || shared.SharedWith[0].Username != "bob" {
		t.Errorf("expected bob in shared set, got %v", shared.SharedWith)
	}

	// Shared users cannot re-share.
	if _, err := svc.Share(ctx, "bob", note.ID, "carol"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for shared-user share, got %v", err)
	}

	// Sharing twice with the same user keeps the set a set.
	svc.Share(ctx, "alice", note.ID, "bob")
	if stored := notes.notes[note.ID]; len(stored.SharedWith) != 1 {
		t.Errorf("expected 1 share after duplicate share, got %d", len(stored.SharedWith))
	}

	last := sink.events[len(sink.events)-1]
	if last.eventType != "shared" {
		t.Errorf("expected shared event, got %s", last.eventType)
	}
	if len(last.recipients) != 2 {
		t.Errorf("expected owner and target as recipients, got %v", last.recipients)
	}
}

func TestNoteService_History(t *testing.T) {
	svc, _, _, _, _ := newTestNoteService()
	ctx := context.Background()

	note, _ := svc.Create(ctx, "alice", &domain.CreateNoteRequest{Title: "n", Content: "v1"})
	svc.Update(ctx, "alice", note.ID, &domain.UpdateNoteRequest{Title: "n", Content: "v2"})

	if _, err := svc.History(ctx, "carol", note.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for stranger, got %v", err)
	}

	svc.Share(ctx, "alice", note.ID, "bob")
	entries, err := svc.History(ctx, "bob", note.ID)
	if err != nil {
		t.Fatalf("expected shared user to read history, got %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ChangeType != domain.ChangeUpdated || entries[1].ChangeType != domain.ChangeCreated {
		t.Error("expected history ordered newest first")
	}
}

// Mirrors the full lifecycle: create, share, shared-user edit, denied delete,
// owner delete, and a history log that outlives the note.
func TestNoteService_Lifecycle(t *testing.T) {
	svc, _, _, _, _ := newTestNoteService()
	ctx := context.Background()

	note, err := svc.Create(ctx, "alice", &domain.CreateNoteRequest{Title: "Shopping", Content: "milk,eggs"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Share(ctx, "alice", note.ID, "bob"); err != nil {
		t.Fatalf("share: %v", err)
	}

	if _, err := svc.Update(ctx, "bob", note.ID, &domain.UpdateNoteRequest{Title: "Shopping", Content: "milk,eggs,bread"}); err != nil {
		t.Fatalf("shared update: %v", err)
	}

	if err := svc.Delete(ctx, "bob", note.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected bob delete to fail, got %v", err)
	}

	if err := svc.Delete(ctx, "alice", note.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	for _, userID := range []string{"alice", "bob"} {
		notes, _ := svc.List(ctx, userID)
		if len(notes) != 0 {
			t.Errorf("expected no notes listed for %s after delete", userID)
		}
	}

	entries, err := svc.History(ctx, "alice", note.ID)
	if err != nil {
		t.Fatalf("history after delete: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 history entries after delete, got %d", len(entries))
	}

	wantTypes := []domain.ChangeType{domain.ChangeDeleted, domain.ChangeUpdated, domain.ChangeCreated}
	for i, want := range wantTypes {
		if entries[i].ChangeType != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, entries[i].ChangeType)
		}
	}
	if entries[1].OldContent == nil || *entries[1].OldContent != "milk,eggs" {
		t.Error("expected UPDATED old content milk,eggs")
	}
	if entries[1].NewContent == nil || *entries[1].NewContent != "milk,eggs,bread" {
		t.Error("expected UPDATED new content milk,eggs,bread")
	}
}

func TestNoteService_ShareCandidates(t *testing.T) {
	svc, _, _, _, _ := newTestNoteService()

	users, err := svc.ShareCandidates(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(users) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(users))
	}
	for _, u := range users {
		if u.ID == "alice" {
			t.Error("expected caller excluded from candidates")
		}
	}
}
