package domain

import "time"

// chapterDateLayout renders as e.g. "03/14/26".
const chapterDateLayout = "01/02/06"

// Chapter is a named container of notes inside a book.
type Chapter struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"book_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayDate is the creation date pre-formatted for list views.
func (c *Chapter) DisplayDate() string {
	return FormatChapterDate(c.CreatedAt)
}

// FormatChapterDate formats t as MM/DD/YY, or "" for the zero time.
func FormatChapterDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(chapterDateLayout)
}
