package sqlstore

import (
	"context"
	"database/sql"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	"github.com/notekeeper/notekeeper-server/internal/store"
)

const chapterColumns = `id, book_id, name, created_at, updated_at`

func scanChapter(row scanner) (*domain.Chapter, error) {
	var (
		c                    domain.Chapter
		createdAt, updatedAt string
	)
	if err := row.Scan(&c.ID, &c.BookID, &c.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateChapter inserts a chapter and fills in ID and timestamps.
func (t *txn) CreateChapter(ctx context.Context, chapter *domain.Chapter) error {
	now := t.timestamp()
	chapter.CreatedAt, chapter.UpdatedAt = now, now

	newID, err := t.insert(ctx, `
		INSERT INTO chapters (book_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		chapter.BookID, chapter.Name, formatTime(now), formatTime(now),
	)
	if err != nil {
		return err
	}
	chapter.ID = newID
	return nil
}

// GetChapter retrieves a chapter by ID.
func (t *txn) GetChapter(ctx context.Context, id int64) (*domain.Chapter, error) {
	c, err := scanChapter(t.queryRow(ctx, `SELECT `+chapterColumns+` FROM chapters WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	return c, err
}

// ListChaptersByBook returns a book's chapters, oldest first.
func (t *txn) ListChaptersByBook(ctx context.Context, bookID int64) ([]*domain.Chapter, error) {
	rows, err := t.query(ctx, `SELECT `+chapterColumns+` FROM chapters
		WHERE book_id = ? ORDER BY created_at ASC, id ASC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chapters := []*domain.Chapter{}
	for rows.Next() {
		c, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, c)
	}
	return chapters, rows.Err()
}

// UpdateChapter writes the chapter's name and refreshes updated_at.
func (t *txn) UpdateChapter(ctx context.Context, chapter *domain.Chapter) error {
	now := t.timestamp()
	if err := t.updateOne(ctx, `UPDATE chapters SET name = ?, updated_at = ? WHERE id = ?`,
		chapter.Name, formatTime(now), chapter.ID); err != nil {
		return err
	}
	chapter.UpdatedAt = now
	return nil
}

// ChapterOwner resolves chapter -> book -> user.
func (t *txn) ChapterOwner(ctx context.Context, chapterID int64) (int64, error) {
	return t.owner(ctx, `
		SELECT b.user_id FROM chapters c
		JOIN books b ON b.id = c.book_id
		WHERE c.id = ?`, chapterID)
}

// DeleteChaptersByBook deletes every chapter of a book. Notes must already be gone.
func (t *txn) DeleteChaptersByBook(ctx context.Context, bookID int64) (int64, error) {
	return t.deleteRows(ctx, `DELETE FROM chapters WHERE book_id = ?`, bookID)
}

// DeleteChapterRow deletes only the chapter row.
func (t *txn) DeleteChapterRow(ctx context.Context, chapterID int64) error {
	return t.deleteOne(ctx, `DELETE FROM chapters WHERE id = ?`, chapterID)
}
