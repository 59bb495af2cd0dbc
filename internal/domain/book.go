package domain

import "time"

// Book is a named container of chapters, owned by one user.
type Book struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// NoteCount is derived: notes across all chapters of the book.
	NoteCount int `json:"note_count"`
}
