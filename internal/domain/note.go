package domain

import "time"

type Note struct {
	ID        string `gorm:"primaryKey" json:"id"`
	OwnerID   string `gorm:"index" json:"owner_id"`
	Owner     User   `gorm:"foreignKey:OwnerID" json:"-"`
	Title     string `json:"title"`
	Content   string `json:"content"`

	// Users the note is shared with, never including the owner.
	SharedWith []User `gorm:"many2many:note_shares" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOwner reports whether userID owns the note.
func (n *Note) IsOwner(userID string) bool {
	return n.OwnerID == userID
}

// IsSharedWith reports whether the note has been shared with userID.
func (n *Note) IsSharedWith(userID string) bool {
	for _, u := range n.SharedWith {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// CanRead reports whether userID may read or update the note.
func (n *Note) CanRead(userID string) bool {
	return n.IsOwner(userID) || n.IsSharedWith(userID)
}

type CreateNoteRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content"`
}

type UpdateNoteRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content"`
}

type NoteResponse struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id"`
	Owner      string          `json:"owner"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	SharedWith []*UserResponse `json:"shared_with"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (n *Note) ToResponse() *NoteResponse {
	shared := make([]*UserResponse, 0, len(n.SharedWith))
	for i := range n.SharedWith {
		shared = append(shared, n.SharedWith[i].ToResponse())
	}

	return &NoteResponse{
		ID:         n.ID,
		OwnerID:    n.OwnerID,
		Owner:      n.Owner.Username,
		Title:      n.Title,
		Content:    n.Content,
		SharedWith: shared,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}
