package domain

import "time"

type ChangeType string

const (
	ChangeCreated ChangeType = "CREATED"
	ChangeUpdated ChangeType = "UPDATED"
	ChangeDeleted ChangeType = "DELETED"
)

// NoteHistory is one immutable content transition of a note. Entries are
// append-only and deliberately carry no foreign key to notes, so the log
// survives note deletion.
type NoteHistory struct {
	ID         string     `gorm:"primaryKey" json:"id"`
	NoteID     string     `gorm:"index" json:"note_id"`
	ChangeType ChangeType `json:"change_type"`
	OldContent *string    `json:"old_content"` // nil for CREATED
	NewContent *string    `json:"new_content"` // nil for DELETED
	Timestamp  time.Time  `gorm:"index" json:"timestamp"`
}
