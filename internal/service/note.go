package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	"github.com/notekeeper/notekeeper-server/internal/store"
	"github.com/notekeeper/notekeeper-server/internal/validation"
)

// NoteService manages notes inside the caller's chapters.
type NoteService struct {
	store     store.Store
	access    *AccessMediator
	validator *validation.Validator
	logger    *slog.Logger
}

// NewNoteService creates a note service.
func NewNoteService(st store.Store, access *AccessMediator, v *validation.Validator, logger *slog.Logger) *NoteService {
	return &NoteService{store: st, access: access, validator: v, logger: logger}
}

// CreateNoteRequest creates a note.
type CreateNoteRequest struct {
	Content string `json:"content" validate:"required,notblank"`
}

// UpdateNoteRequest is a partial update.
type UpdateNoteRequest struct {
	Content *string `json:"content,omitempty" validate:"omitnil,notblank"`
}

// ListByChapter returns the notes of one of the caller's chapters, newest first.
func (s *NoteService) ListByChapter(ctx context.Context, userID, chapterID int64) ([]*domain.Note, error) {
	var notes []*domain.Note
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		if err := s.access.CheckChapter(ctx, tx, userID, chapterID); err != nil {
			return err
		}
		var err error
		notes, err = tx.ListNotesByChapter(ctx, chapterID)
		return err
	})
	return notes, err
}

// Create adds a note to one of the caller's chapters. Content is stored NFC-normalized.
func (s *NoteService) Create(ctx context.Context, userID, chapterID int64, req CreateNoteRequest) (*domain.Note, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	note := &domain.Note{ChapterID: chapterID, Content: domain.NormalizeText(req.Content)}
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		if err := s.access.CheckChapter(ctx, tx, userID, chapterID); err != nil {
			return err
		}
		return tx.CreateNote(ctx, note)
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// Get returns one of the caller's notes.
func (s *NoteService) Get(ctx context.Context, userID, noteID int64) (*domain.Note, error) {
	var note *domain.Note
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		note, err = s.access.Note(ctx, tx, userID, noteID)
		return err
	})
	return note, err
}

// Update applies a partial update to one of the caller's notes.
func (s *NoteService) Update(ctx context.Context, userID, noteID int64, req UpdateNoteRequest) (*domain.Note, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var note *domain.Note
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		note, err = s.access.Note(ctx, tx, userID, noteID)
		if err != nil {
			return err
		}
		if req.Content != nil {
			note.Content = domain.NormalizeText(*req.Content)
		}
		return tx.UpdateNote(ctx, note)
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// Delete removes one of the caller's notes.
func (s *NoteService) Delete(ctx context.Context, userID, noteID int64) error {
	return s.store.InTx(ctx, func(tx store.Tx) error {
		if _, err := s.access.Note(ctx, tx, userID, noteID); err != nil {
			return err
		}
		return tx.DeleteNoteRow(ctx, noteID)
	})
}

// Search returns the caller's notes containing query, newest first.
// A blank query returns an empty result without touching the store.
func (s *NoteService) Search(ctx context.Context, userID int64, query string) ([]*domain.NoteSearchResult, error) {
	q := domain.NormalizeQuery(query)
	if q == "" {
		return []*domain.NoteSearchResult{}, nil
	}

	var results []*domain.NoteSearchResult
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		results, err = tx.SearchNotes(ctx, userID, q, store.SearchLimit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	return results, nil
}
