package sqlstore

import (
	"context"
	"database/sql"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	"github.com/notekeeper/notekeeper-server/internal/store"
)

const noteColumns = `id, chapter_id, content, created_at, updated_at`

func scanNote(row scanner, extra ...any) (*domain.Note, error) {
	var (
		n                    domain.Note
		createdAt, updatedAt string
	)
	dest := append([]any{&n.ID, &n.ChapterID, &n.Content, &createdAt, &updatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateNote inserts a note and fills in ID and timestamps.
func (t *txn) CreateNote(ctx context.Context, note *domain.Note) error {
	now := t.timestamp()
	note.CreatedAt, note.UpdatedAt = now, now

	newID, err := t.insert(ctx, `
		INSERT INTO notes (chapter_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		note.ChapterID, note.Content, formatTime(now), formatTime(now),
	)
	if err != nil {
		return err
	}
	note.ID = newID
	return nil
}

// GetNote retrieves a note by ID.
func (t *txn) GetNote(ctx context.Context, id int64) (*domain.Note, error) {
	n, err := scanNote(t.queryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	return n, err
}

// ListNotesByChapter returns a chapter's notes, newest first.
func (t *txn) ListNotesByChapter(ctx context.Context, chapterID int64) ([]*domain.Note, error) {
	rows, err := t.query(ctx, `SELECT `+noteColumns+` FROM notes
		WHERE chapter_id = ? ORDER BY created_at DESC, id DESC`, chapterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []*domain.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// UpdateNote writes the note's content and refreshes updated_at.
func (t *txn) UpdateNote(ctx context.Context, note *domain.Note) error {
	now := t.timestamp()
	if err := t.updateOne(ctx, `UPDATE notes SET content = ?, updated_at = ? WHERE id = ?`,
		note.Content, formatTime(now), note.ID); err != nil {
		return err
	}
	note.UpdatedAt = now
	return nil
}

// NoteOwner resolves note -> chapter -> book -> user.
func (t *txn) NoteOwner(ctx context.Context, noteID int64) (int64, error) {
	return t.owner(ctx, `
		SELECT b.user_id FROM notes n
		JOIN chapters c ON c.id = n.chapter_id
		JOIN books b ON b.id = c.book_id
		WHERE n.id = ?`, noteID)
}

// DeleteNoteRow deletes a single note.
func (t *txn) DeleteNoteRow(ctx context.Context, noteID int64) error {
	return t.deleteOne(ctx, `DELETE FROM notes WHERE id = ?`, noteID)
}

// DeleteNotesByChapter deletes every note in a chapter.
func (t *txn) DeleteNotesByChapter(ctx context.Context, chapterID int64) (int64, error) {
	return t.deleteRows(ctx, `DELETE FROM notes WHERE chapter_id = ?`, chapterID)
}

// DeleteNotesByBook deletes every note in every chapter of a book.
func (t *txn) DeleteNotesByBook(ctx context.Context, bookID int64) (int64, error) {
	return t.deleteRows(ctx, `
		DELETE FROM notes
		WHERE chapter_id IN (SELECT id FROM chapters WHERE book_id = ?)`, bookID)
}

// SearchNotes returns the user's notes whose content contains query,
// case-insensitively, newest first. LIKE metacharacters in query match
// literally. On SQLite case folding covers ASCII only.
func (t *txn) SearchNotes(ctx context.Context, userID int64, query string, limit int) ([]*domain.NoteSearchResult, error) {
	results := []*domain.NoteSearchResult{}
	if query == "" {
		return results, nil
	}
	if limit <= 0 || limit > store.SearchLimit {
		limit = store.SearchLimit
	}

	rows, err := t.query(ctx, `
		SELECT n.id, n.chapter_id, n.content, n.created_at, n.updated_at,
			c.name, b.id, b.name
		FROM notes n
		JOIN chapters c ON c.id = n.chapter_id
		JOIN books b ON b.id = c.book_id
		WHERE b.user_id = ? AND n.content `+t.d.likeOp+` ? ESCAPE '\'
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT ?`,
		userID, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.NoteSearchResult
		n, err := scanNote(rows, &r.ChapterName, &r.BookID, &r.BookName)
		if err != nil {
			return nil, err
		}
		r.Note = *n
		results = append(results, &r)
	}
	return results, rows.Err()
}
