package service

import (
	"context"
	"log/slog"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	"github.com/notekeeper/notekeeper-server/internal/metrics"
	"github.com/notekeeper/notekeeper-server/internal/store"
	"github.com/notekeeper/notekeeper-server/internal/validation"
)

// ChapterService manages chapters inside the caller's books.
type ChapterService struct {
	store     store.Store
	access    *AccessMediator
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewChapterService creates a chapter service.
func NewChapterService(st store.Store, access *AccessMediator, v *validation.Validator, m *metrics.Metrics, logger *slog.Logger) *ChapterService {
	return &ChapterService{store: st, access: access, validator: v, metrics: m, logger: logger}
}

// CreateChapterRequest creates a chapter.
type CreateChapterRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

// UpdateChapterRequest is a partial update.
type UpdateChapterRequest struct {
	Name *string `json:"name,omitempty" validate:"omitnil,notblank,max=255"`
}

// ListByBook returns the chapters of one of the caller's books.
func (s *ChapterService) ListByBook(ctx context.Context, userID, bookID int64) ([]*domain.Chapter, error) {
	var chapters []*domain.Chapter
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		if err := s.access.CheckBook(ctx, tx, userID, bookID); err != nil {
			return err
		}
		var err error
		chapters, err = tx.ListChaptersByBook(ctx, bookID)
		return err
	})
	return chapters, err
}

// Create adds a chapter to one of the caller's books.
func (s *ChapterService) Create(ctx context.Context, userID, bookID int64, req CreateChapterRequest) (*domain.Chapter, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	chapter := &domain.Chapter{BookID: bookID, Name: req.Name}
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		if err := s.access.CheckBook(ctx, tx, userID, bookID); err != nil {
			return err
		}
		return tx.CreateChapter(ctx, chapter)
	})
	if err != nil {
		return nil, err
	}
	return chapter, nil
}

// Get returns one of the caller's chapters.
func (s *ChapterService) Get(ctx context.Context, userID, chapterID int64) (*domain.Chapter, error) {
	var chapter *domain.Chapter
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		chapter, err = s.access.Chapter(ctx, tx, userID, chapterID)
		return err
	})
	return chapter, err
}

// Update applies a partial update to one of the caller's chapters.
func (s *ChapterService) Update(ctx context.Context, userID, chapterID int64, req UpdateChapterRequest) (*domain.Chapter, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var chapter *domain.Chapter
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		chapter, err = s.access.Chapter(ctx, tx, userID, chapterID)
		if err != nil {
			return err
		}
		if req.Name != nil {
			chapter.Name = *req.Name
		}
		return tx.UpdateChapter(ctx, chapter)
	})
	if err != nil {
		return nil, err
	}
	return chapter, nil
}

// Delete removes one of the caller's chapters with its notes.
func (s *ChapterService) Delete(ctx context.Context, userID, chapterID int64) error {
	var res domain.CascadeResult
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		if err := s.access.CheckChapter(ctx, tx, userID, chapterID); err != nil {
			return err
		}
		var err error
		res, err = domain.CascadeDeleteChapter(ctx, tx, chapterID)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.CascadeDeleted(0, res.Chapters, res.Notes, 0, 0)
	s.logger.Info("chapter deleted", "user_id", userID, "chapter_id", chapterID, "notes", res.Notes)
	return nil
}
