// Package store defines the persistence interface for the NoteKeeper server.
package store

import (
	"context"
	"time"

	"github.com/notekeeper/notekeeper-server/internal/domain"
)

// SearchLimit caps the number of rows a note search returns.
const SearchLimit = 50

// Store owns the database handle. All reads and writes go through a
// transaction obtained from InTx, which is the scoped per-request resource:
// it is committed when fn returns nil and rolled back on every other exit,
// including panics.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
	Dialect() string
	Close() error
}

// Tx is the set of operations available inside one transaction.
// Lookups return ErrNotFound when the row does not exist.
type Tx interface {
	domain.CascadeDeleter

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	ListBooksByUser(ctx context.Context, userID int64) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	BookOwner(ctx context.Context, bookID int64) (int64, error)

	// Chapters
	CreateChapter(ctx context.Context, chapter *domain.Chapter) error
	GetChapter(ctx context.Context, id int64) (*domain.Chapter, error)
	ListChaptersByBook(ctx context.Context, bookID int64) ([]*domain.Chapter, error)
	UpdateChapter(ctx context.Context, chapter *domain.Chapter) error
	ChapterOwner(ctx context.Context, chapterID int64) (int64, error)

	// Notes
	CreateNote(ctx context.Context, note *domain.Note) error
	GetNote(ctx context.Context, id int64) (*domain.Note, error)
	ListNotesByChapter(ctx context.Context, chapterID int64) ([]*domain.Note, error)
	UpdateNote(ctx context.Context, note *domain.Note) error
	DeleteNoteRow(ctx context.Context, noteID int64) error
	NoteOwner(ctx context.Context, noteID int64) (int64, error)
	SearchNotes(ctx context.Context, userID int64, query string, limit int) ([]*domain.NoteSearchResult, error)

	// Tags
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTag(ctx context.Context, id int64) (*domain.Tag, error)
	ListTagsByUser(ctx context.Context, userID int64) ([]*domain.Tag, error)
	UpdateTag(ctx context.Context, tag *domain.Tag) error
	DeleteTagRow(ctx context.Context, tagID int64) error
	TagOwner(ctx context.Context, tagID int64) (int64, error)

	// Password reset tokens
	CreateResetToken(ctx context.Context, token *domain.PasswordResetToken) error
	GetResetTokenByHash(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error)
	// MarkResetTokenUsed flips used from false to true and reports whether
	// this call did the flip.
	MarkResetTokenUsed(ctx context.Context, tokenID int64) (bool, error)
	DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}
