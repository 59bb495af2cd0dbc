package domain

import "time"

// DefaultTagColor is applied when a tag is created without a color.
const DefaultTagColor = "bg-blue-500"

// Tag is a named, colored label owned by one user. Tags are standalone:
// nothing links them to notes.
type Tag struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}
