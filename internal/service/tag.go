package service

import (
	"context"
	"log/slog"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	"github.com/notekeeper/notekeeper-server/internal/store"
	"github.com/notekeeper/notekeeper-server/internal/validation"
)

// TagService manages a user's tags. Tags are standalone labels.
type TagService struct {
	store     store.Store
	access    *AccessMediator
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTagService creates a tag service.
func NewTagService(st store.Store, access *AccessMediator, v *validation.Validator, logger *slog.Logger) *TagService {
	return &TagService{store: st, access: access, validator: v, logger: logger}
}

// CreateTagRequest creates a tag. An empty color gets the default.
type CreateTagRequest struct {
	Name  string `json:"name" validate:"required,notblank,max=100"`
	Color string `json:"color,omitempty" validate:"omitempty,notblank,max=50"`
}

// UpdateTagRequest is a partial update.
type UpdateTagRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitnil,notblank,max=100"`
	Color *string `json:"color,omitempty" validate:"omitnil,notblank,max=50"`
}

// List returns the caller's tags ordered by name.
func (s *TagService) List(ctx context.Context, userID int64) ([]*domain.Tag, error) {
	var tags []*domain.Tag
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		tags, err = tx.ListTagsByUser(ctx, userID)
		return err
	})
	return tags, err
}

// Create adds a tag owned by the caller.
func (s *TagService) Create(ctx context.Context, userID int64, req CreateTagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tag := &domain.Tag{UserID: userID, Name: req.Name, Color: req.Color}
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		return tx.CreateTag(ctx, tag)
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// Update applies a partial update to one of the caller's tags.
func (s *TagService) Update(ctx context.Context, userID, tagID int64, req UpdateTagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var tag *domain.Tag
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		tag, err = s.access.Tag(ctx, tx, userID, tagID)
		if err != nil {
			return err
		}
		if req.Name != nil {
			tag.Name = *req.Name
		}
		if req.Color != nil {
			tag.Color = *req.Color
		}
		return tx.UpdateTag(ctx, tag)
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete removes one of the caller's tags.
func (s *TagService) Delete(ctx context.Context, userID, tagID int64) error {
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		if _, err := s.access.Tag(ctx, tx, userID, tagID); err != nil {
			return err
		}
		return tx.DeleteTagRow(ctx, tagID)
	})
	if err == nil {
		s.logger.Debug("tag deleted", "user_id", userID, "tag_id", tagID)
	}
	return err
}
