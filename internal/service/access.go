package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	domainerrors "github.com/notekeeper/notekeeper-server/internal/errors"
	"github.com/notekeeper/notekeeper-server/internal/store"
)

// Entity names used in not-found messages.
const (
	entityBook    = "Book"
	entityChapter = "Chapter"
	entityNote    = "Note"
	entityTag     = "Tag"
)

// AccessMediator resolves hierarchy entities on behalf of a caller. It walks
// the ownership chain up to the owning user and refuses anything the caller
// does not own. A missing entity and someone else's entity produce the same
// NotFound error, so ids cannot be probed.
type AccessMediator struct{}

// NewAccessMediator creates an access mediator.
func NewAccessMediator() *AccessMediator {
	return &AccessMediator{}
}

type ownerFunc func(ctx context.Context, id int64) (int64, error)

func notFound(entity string) error {
	return domainerrors.NotFound(entity + " not found")
}

// authorize succeeds only if the entity exists and its root owner is callerID.
func (m *AccessMediator) authorize(ctx context.Context, owner ownerFunc, entity string, callerID, id int64) error {
	if id <= 0 || callerID <= 0 {
		return notFound(entity)
	}

	ownerID, err := owner(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(entity)
	}
	if err != nil {
		return fmt.Errorf("resolve %s owner: %w", entity, err)
	}
	if ownerID != callerID {
		return notFound(entity)
	}
	return nil
}

// fetched maps a lookup that raced with a delete to NotFound.
func fetched[T any](v T, err error, entity string) (T, error) {
	if errors.Is(err, store.ErrNotFound) {
		var zero T
		return zero, notFound(entity)
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("load %s: %w", entity, err)
	}
	return v, nil
}

// Book returns the caller's book.
func (m *AccessMediator) Book(ctx context.Context, tx store.Tx, callerID, bookID int64) (*domain.Book, error) {
	if err := m.authorize(ctx, tx.BookOwner, entityBook, callerID, bookID); err != nil {
		return nil, err
	}
	b, err := tx.GetBook(ctx, bookID)
	return fetched(b, err, entityBook)
}

// Chapter returns the caller's chapter.
func (m *AccessMediator) Chapter(ctx context.Context, tx store.Tx, callerID, chapterID int64) (*domain.Chapter, error) {
	if err := m.authorize(ctx, tx.ChapterOwner, entityChapter, callerID, chapterID); err != nil {
		return nil, err
	}
	c, err := tx.GetChapter(ctx, chapterID)
	return fetched(c, err, entityChapter)
}

// Note returns the caller's note.
func (m *AccessMediator) Note(ctx context.Context, tx store.Tx, callerID, noteID int64) (*domain.Note, error) {
	if err := m.authorize(ctx, tx.NoteOwner, entityNote, callerID, noteID); err != nil {
		return nil, err
	}
	n, err := tx.GetNote(ctx, noteID)
	return fetched(n, err, entityNote)
}

// Tag returns the caller's tag.
func (m *AccessMediator) Tag(ctx context.Context, tx store.Tx, callerID, tagID int64) (*domain.Tag, error) {
	if err := m.authorize(ctx, tx.TagOwner, entityTag, callerID, tagID); err != nil {
		return nil, err
	}
	t, err := tx.GetTag(ctx, tagID)
	return fetched(t, err, entityTag)
}

// CheckBook verifies ownership of a book without loading it.
func (m *AccessMediator) CheckBook(ctx context.Context, tx store.Tx, callerID, bookID int64) error {
	return m.authorize(ctx, tx.BookOwner, entityBook, callerID, bookID)
}

// CheckChapter verifies ownership of a chapter without loading it.
func (m *AccessMediator) CheckChapter(ctx context.Context, tx store.Tx, callerID, chapterID int64) error {
	return m.authorize(ctx, tx.ChapterOwner, entityChapter, callerID, chapterID)
}
