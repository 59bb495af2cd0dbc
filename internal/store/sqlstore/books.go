package sqlstore

import (
	"context"
	"database/sql"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	"github.com/notekeeper/notekeeper-server/internal/store"
)

// bookSelect selects books with their derived note count.
// Must match the scan order in scanBook.
const bookSelect = `
	SELECT b.id, b.user_id, b.name, b.created_at, b.updated_at,
		(SELECT COUNT(*) FROM notes n JOIN chapters c ON c.id = n.chapter_id
		 WHERE c.book_id = b.id) AS note_count
	FROM books b`

func scanBook(row scanner) (*domain.Book, error) {
	var (
		b                    domain.Book
		createdAt, updatedAt string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &createdAt, &updatedAt, &b.NoteCount); err != nil {
		return nil, err
	}

	var err error
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBook inserts a book and fills in ID and timestamps.
func (t *txn) CreateBook(ctx context.Context, book *domain.Book) error {
	now := t.timestamp()
	book.CreatedAt, book.UpdatedAt = now, now
	book.NoteCount = 0

	newID, err := t.insert(ctx, `
		INSERT INTO books (user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		book.UserID, book.Name, formatTime(now), formatTime(now),
	)
	if err != nil {
		return err
	}
	book.ID = newID
	return nil
}

// GetBook retrieves a book by ID.
func (t *txn) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	b, err := scanBook(t.queryRow(ctx, bookSelect+` WHERE b.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	return b, err
}

// ListBooksByUser returns a user's books, oldest first.
func (t *txn) ListBooksByUser(ctx context.Context, userID int64) ([]*domain.Book, error) {
	rows, err := t.query(ctx, bookSelect+` WHERE b.user_id = ? ORDER BY b.created_at ASC, b.id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// UpdateBook writes the book's name and refreshes updated_at.
func (t *txn) UpdateBook(ctx context.Context, book *domain.Book) error {
	now := t.timestamp()
	if err := t.updateOne(ctx, `UPDATE books SET name = ?, updated_at = ? WHERE id = ?`,
		book.Name, formatTime(now), book.ID); err != nil {
		return err
	}
	book.UpdatedAt = now
	return nil
}

// BookOwner returns the user id owning a book.
func (t *txn) BookOwner(ctx context.Context, bookID int64) (int64, error) {
	return t.owner(ctx, `SELECT user_id FROM books WHERE id = ?`, bookID)
}

// ListBookIDsByUser returns the ids of every book a user owns.
func (t *txn) ListBookIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := t.query(ctx, `SELECT id FROM books WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteBookRow deletes only the book row.
func (t *txn) DeleteBookRow(ctx context.Context, bookID int64) error {
	return t.deleteOne(ctx, `DELETE FROM books WHERE id = ?`, bookID)
}
