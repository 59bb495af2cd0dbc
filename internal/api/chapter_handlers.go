package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	"github.com/notekeeper/notekeeper-server/internal/service"
)

func (s *Server) registerChapterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listChapters",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/books/{id}/chapters",
		Summary:     "List chapters",
		Description: "Returns the chapters of a book, oldest first",
		Tags:        tagsChapters,
		Security:    bearerSecurity,
	}, s.handleListChapters)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createChapter",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/books/{id}/chapters",
		Summary:       "Create chapter",
		Tags:          tagsChapters,
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "getChapter",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/chapters/{id}",
		Summary:     "Get chapter",
		Tags:        tagsChapters,
		Security:    bearerSecurity,
	}, s.handleGetChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateChapter",
		Method:      http.MethodPut,
		Path:        apiPrefix + "/chapters/{id}",
		Summary:     "Update chapter",
		Description: "Partial update; omitted fields are left unchanged",
		Tags:        tagsChapters,
		Security:    bearerSecurity,
	}, s.handleUpdateChapter)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteChapter",
		Method:        http.MethodDelete,
		Path:          apiPrefix + "/chapters/{id}",
		Summary:       "Delete chapter",
		Description:   "Deletes the chapter and its notes",
		Tags:          tagsChapters,
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteChapter)
}

// === DTOs ===

// ChapterResponse contains chapter data in API responses.
type ChapterResponse struct {
	ID        int64     `json:"id" doc:"Chapter ID"`
	Name      string    `json:"name" doc:"Chapter name"`
	BookID    int64     `json:"book_id" doc:"Owning book"`
	Date      string    `json:"date" doc:"Creation date as MM/DD/YY"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ChapterOutput wraps the chapter response for Huma.
type ChapterOutput struct {
	Body ChapterResponse
}

// ListChaptersOutput is a bare JSON array of chapters.
type ListChaptersOutput struct {
	Body []ChapterResponse
}

// ChapterRequest is the request body for creating a chapter.
type ChapterRequest struct {
	Name string `json:"name" minLength:"1" maxLength:"255" doc:"Chapter name"`
}

// CreateChapterInput wraps the create chapter request for Huma.
type CreateChapterInput struct {
	Authorization string `header:"Authorization"`
	BookID        int64  `path:"id" doc:"Book ID"`
	Body          ChapterRequest
}

// ChapterIDInput addresses one chapter.
type ChapterIDInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Chapter ID"`
}

// UpdateChapterRequest is the request body for updating a chapter.
type UpdateChapterRequest struct {
	Name *string `json:"name,omitempty" minLength:"1" maxLength:"255" doc:"Chapter name"`
}

// UpdateChapterInput wraps the update chapter request for Huma.
type UpdateChapterInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Chapter ID"`
	Body          UpdateChapterRequest
}

func newChapterResponse(c *domain.Chapter) ChapterResponse {
	return ChapterResponse{
		ID:        c.ID,
		Name:      c.Name,
		BookID:    c.BookID,
		Date:      c.DisplayDate(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// === Handlers ===

func (s *Server) handleListChapters(ctx context.Context, input *BookIDInput) (*ListChaptersOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	chapters, err := s.services.Chapter.ListByBook(ctx, user.ID, input.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]ChapterResponse, len(chapters))
	for i, c := range chapters {
		resp[i] = newChapterResponse(c)
	}

	return &ListChaptersOutput{Body: resp}, nil
}

func (s *Server) handleCreateChapter(ctx context.Context, input *CreateChapterInput) (*ChapterOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	chapter, err := s.services.Chapter.Create(ctx, user.ID, input.BookID, service.CreateChapterRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}

	return &ChapterOutput{Body: newChapterResponse(chapter)}, nil
}

func (s *Server) handleGetChapter(ctx context.Context, input *ChapterIDInput) (*ChapterOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	chapter, err := s.services.Chapter.Get(ctx, user.ID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ChapterOutput{Body: newChapterResponse(chapter)}, nil
}

func (s *Server) handleUpdateChapter(ctx context.Context, input *UpdateChapterInput) (*ChapterOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	chapter, err := s.services.Chapter.Update(ctx, user.ID, input.ID, service.UpdateChapterRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}

	return &ChapterOutput{Body: newChapterResponse(chapter)}, nil
}

func (s *Server) handleDeleteChapter(ctx context.Context, input *ChapterIDInput) (*struct{}, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Chapter.Delete(ctx, user.ID, input.ID); err != nil {
		return nil, err
	}

	return nil, nil
}
