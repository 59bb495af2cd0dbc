package domain

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// noteDateLayout renders as e.g. "Mar 14, 2026".
const noteDateLayout = "Jan 02, 2006"

// Note is a piece of free text inside a chapter.
type Note struct {
	ID        int64     `json:"id"`
	ChapterID int64     `json:"chapter_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayDate is the creation date pre-formatted for list views.
func (n *Note) DisplayDate() string {
	return FormatNoteDate(n.CreatedAt)
}

// FormatNoteDate formats t as "Jan 02, 2006", or "" for the zero time.
func FormatNoteDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(noteDateLayout)
}

// NoteSearchResult is a note together with the chapter and book it lives in.
type NoteSearchResult struct {
	Note
	ChapterName string `json:"chapter_name"`
	BookID      int64  `json:"book_id"`
	BookName    string `json:"book_name"`
}

// NormalizeText puts note content and search queries into NFC so that
// visually identical text compares equal in substring search.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

// NormalizeQuery prepares a search query. A blank query normalizes to "";
// otherwise surrounding whitespace is kept and takes part in matching.
func NormalizeQuery(q string) string {
	if strings.TrimSpace(q) == "" {
		return ""
	}
	return NormalizeText(q)
}
