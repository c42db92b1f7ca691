package service

import "stickynotes-server/internal/domain"

// NoteEventSink receives live note change notifications. Recipients are the
// user IDs with access to the note at the time of the change.
type NoteEventSink interface {
	NoteCreated(note *domain.NoteResponse, recipients []string)
	NoteUpdated(note *domain.NoteResponse, recipients []string)
	NoteDeleted(noteID string, recipients []string)
	NoteShared(note *domain.NoteResponse, recipients []string)
}

func noteRecipients(note *domain.Note) []string {
	ids := make([]string, 0, len(note.SharedWith)+1)
	ids = append(ids, note.OwnerID)
	for _, u := range note.SharedWith {
		ids = append(ids, u.ID)
	}
	return ids
}
