package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	"github.com/notekeeper/notekeeper-server/internal/metrics"
	"github.com/notekeeper/notekeeper-server/internal/store"
	"github.com/notekeeper/notekeeper-server/internal/validation"
)

// BookService manages a user's books.
type BookService struct {
	store     store.Store
	access    *AccessMediator
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewBookService creates a book service.
func NewBookService(st store.Store, access *AccessMediator, v *validation.Validator, m *metrics.Metrics, logger *slog.Logger) *BookService {
	return &BookService{store: st, access: access, validator: v, metrics: m, logger: logger}
}

// CreateBookRequest creates a book.
type CreateBookRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

// UpdateBookRequest is a partial update; nil fields are left unchanged.
type UpdateBookRequest struct {
	Name *string `json:"name,omitempty" validate:"omitnil,notblank,max=255"`
}

// List returns the caller's books, oldest first.
func (s *BookService) List(ctx context.Context, userID int64) ([]*domain.Book, error) {
	var books []*domain.Book
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		books, err = tx.ListBooksByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Create adds a book owned by the caller.
func (s *BookService) Create(ctx context.Context, userID int64, req CreateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book := &domain.Book{UserID: userID, Name: req.Name}
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		return tx.CreateBook(ctx, book)
	})
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Debug("book created", "user_id", userID, "book_id", book.ID)
	return book, nil
}

// Get returns one of the caller's books.
func (s *BookService) Get(ctx context.Context, userID, bookID int64) (*domain.Book, error) {
	var book *domain.Book
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		book, err = s.access.Book(ctx, tx, userID, bookID)
		return err
	})
	return book, err
}

// Update applies a partial update to one of the caller's books.
func (s *BookService) Update(ctx context.Context, userID, bookID int64, req UpdateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var book *domain.Book
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		book, err = s.access.Book(ctx, tx, userID, bookID)
		if err != nil {
			return err
		}
		if req.Name != nil {
			book.Name = *req.Name
		}
		return tx.UpdateBook(ctx, book)
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// Delete removes one of the caller's books with its chapters and notes.
func (s *BookService) Delete(ctx context.Context, userID, bookID int64) error {
	var res domain.CascadeResult
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		if err := s.access.CheckBook(ctx, tx, userID, bookID); err != nil {
			return err
		}
		var err error
		res, err = domain.CascadeDeleteBook(ctx, tx, bookID)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.CascadeDeleted(res.Books, res.Chapters, res.Notes, 0, 0)
	s.logger.Info("book deleted",
		"user_id", userID,
		"book_id", bookID,
		"chapters", res.Chapters,
		"notes", res.Notes,
	)
	return nil
}
